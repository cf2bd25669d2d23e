package service

import (
	"testing"

	"anoa.com/typingarena/internal/entity"
	"github.com/google/uuid"
)

func record(username string, wpm, accuracy float64) entity.AnalyticsRecord {
	return entity.AnalyticsRecord{
		UserID:   uuid.New(),
		User:     entity.User{Username: username},
		WPM:      wpm,
		Accuracy: accuracy,
	}
}

func TestRank_PreservesInputOrder(t *testing.T) {
	// Pre-sorted by (wpm desc, accuracy desc); the weighted score would
	// reorder these if it were used as a sort key — it must not be.
	records := []entity.AnalyticsRecord{
		record("a", 95, 90),
		record("b", 95, 98),
		record("c", 80, 99),
	}

	entries := Rank(records, DefaultLimit)

	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if entries[i].Username != want {
			t.Errorf("position %d = %q, want %q", i, entries[i].Username, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("rank at %d = %d, want %d", i, entries[i].Rank, i+1)
		}
	}
	if entries[0].WeightedScore != 93.5 {
		t.Errorf("entry 1 score = %v, want 93.5 (95*0.7+90*0.3)", entries[0].WeightedScore)
	}
}

func TestRank_RoundsDisplayValues(t *testing.T) {
	entries := Rank([]entity.AnalyticsRecord{record("a", 83.333, 91.666)}, DefaultLimit)

	e := entries[0]
	if e.WPM != 83.33 {
		t.Errorf("wpm = %v, want 83.33", e.WPM)
	}
	if e.Accuracy != 91.67 {
		t.Errorf("accuracy = %v, want 91.67", e.Accuracy)
	}
	// 83.333*0.7 + 91.666*0.3 = 58.3331 + 27.4998 = 85.8329 → 85.83
	if e.WeightedScore != 85.83 {
		t.Errorf("score = %v, want 85.83", e.WeightedScore)
	}
}

func TestRank_TruncatesToLimit(t *testing.T) {
	var records []entity.AnalyticsRecord
	for i := 0; i < 15; i++ {
		records = append(records, record("u", 100-float64(i), 95))
	}

	entries := Rank(records, DefaultLimit)

	if len(entries) != DefaultLimit {
		t.Errorf("len = %d, want %d", len(entries), DefaultLimit)
	}
}

func TestRank_Empty(t *testing.T) {
	entries := Rank(nil, DefaultLimit)
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}
}
