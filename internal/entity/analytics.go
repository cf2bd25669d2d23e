package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxProgressEntries bounds the rolling daily history kept per record.
const MaxProgressEntries = 10

// DayDate is a calendar day with no time component. Comparing two values
// with == (or Equal) never depends on timezone or string formatting.
type DayDate struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time) DayDate {
	return DayDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d DayDate) Equal(other DayDate) bool {
	return d == other
}

func (d DayDate) IsZero() bool {
	return d == DayDate{}
}

// String renders the stable wire form, e.g. "2026-08-23".
func (d DayDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d DayDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DayDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("DayDate: invalid date %q: %w", s, err)
	}
	*d = DayOf(t)
	return nil
}

// DailyEntry holds one calendar day's cumulative averages. WPM and
// Accuracy are the mean of all Count tests merged into the day.
type DailyEntry struct {
	Date     DayDate `json:"date"`
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
	Count    int     `json:"count"`
}

// ProgressList is the rolling daily history, oldest first. It is stored
// as a single jsonb column on the analytics record.
type ProgressList []DailyEntry

// Scan implements sql.Scanner for ProgressList.
func (p *ProgressList) Scan(src any) error {
	if src == nil {
		*p = ProgressList{}
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			*p = ProgressList{}
			return nil
		}
		return json.Unmarshal(data, p)
	case string:
		if data == "" {
			*p = ProgressList{}
			return nil
		}
		return json.Unmarshal([]byte(data), p)
	default:
		return fmt.Errorf("ProgressList: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer for ProgressList.
func (p ProgressList) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// AnalyticsRecord is the per-user aggregate typing-performance document,
// 1:1 with User. It is created empty at registration, mutated only by
// submissions or an explicit reset, and removed when the user is removed.
type AnalyticsRecord struct {
	ID            uint         `gorm:"primaryKey" json:"-"`
	UserID        uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User          User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WPM           float64      `gorm:"default:0" json:"wpm"`
	Accuracy      float64      `gorm:"default:0" json:"accuracy"`
	TestTimings   float64      `gorm:"default:0" json:"test_timings"`
	TotalPar      int          `gorm:"default:0" json:"total_par"`
	MaxStreak     int          `gorm:"default:0" json:"max_streak"`
	LastTestTaken *time.Time   `json:"last_test_taken,omitempty"`
	Progress      ProgressList `gorm:"type:jsonb;default:'[]'" json:"progress"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"-"`
}

// NewAnalyticsRecord is the empty record attached to a fresh user.
func NewAnalyticsRecord(userID uuid.UUID) *AnalyticsRecord {
	return &AnalyticsRecord{
		UserID:   userID,
		Progress: ProgressList{},
	}
}
