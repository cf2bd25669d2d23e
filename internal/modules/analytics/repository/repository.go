package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/typingarena/internal/entity"
	"anoa.com/typingarena/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordPatch is the field set written by one submission. The update is a
// single statement keyed by user_id; total_par is incremented in SQL so the
// lifetime count survives racing submissions.
type RecordPatch struct {
	WPM           float64
	Accuracy      float64
	TestTimings   float64
	MaxStreak     int
	LastTestTaken interface{}
	Progress      entity.ProgressList
}

type AnalyticsRepository interface {
	Create(ctx context.Context, record *entity.AnalyticsRecord) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.AnalyticsRecord, error)
	ApplySubmission(ctx context.Context, userID uuid.UUID, patch RecordPatch) error
	Reset(ctx context.Context, userID uuid.UUID) error
	FindTopN(ctx context.Context, n int) ([]entity.AnalyticsRecord, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Create(ctx context.Context, record *entity.AnalyticsRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrConflict
		}
		return storeErr(err)
	}
	return nil
}

func (r *analyticsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.AnalyticsRecord, error) {
	var record entity.AnalyticsRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, storeErr(err)
	}

	return &record, nil
}

func (r *analyticsRepository) ApplySubmission(ctx context.Context, userID uuid.UUID, patch RecordPatch) error {
	result := r.db.WithContext(ctx).
		Model(&entity.AnalyticsRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"wpm":             patch.WPM,
			"accuracy":        patch.Accuracy,
			"test_timings":    patch.TestTimings,
			"max_streak":      patch.MaxStreak,
			"last_test_taken": patch.LastTestTaken,
			"progress":        patch.Progress,
			"total_par":       gorm.Expr("total_par + 1"),
		})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *analyticsRepository) Reset(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entity.AnalyticsRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"wpm":             0,
			"accuracy":        0,
			"test_timings":    0,
			"max_streak":      0,
			"total_par":       0,
			"last_test_taken": nil,
			"progress":        entity.ProgressList{},
		})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *analyticsRepository) FindTopN(ctx context.Context, n int) ([]entity.AnalyticsRecord, error) {
	var records []entity.AnalyticsRecord
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("wpm DESC, accuracy DESC").
		Limit(n).
		Find(&records).Error; err != nil {
		return nil, storeErr(err)
	}
	return records, nil
}

func (r *analyticsRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.AnalyticsRecord{}).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
}
