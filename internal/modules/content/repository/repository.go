package repository

import (
	"context"
	"fmt"

	"anoa.com/typingarena/internal/entity"
	"anoa.com/typingarena/pkg/apperror"
	"gorm.io/gorm"
)

type ContentRepository interface {
	FindRandomByDifficulty(ctx context.Context, difficulty string, n int) ([]entity.Passage, error)
	CreateBatch(ctx context.Context, passages []entity.Passage) error
	Count(ctx context.Context) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) FindRandomByDifficulty(ctx context.Context, difficulty string, n int) ([]entity.Passage, error) {
	var passages []entity.Passage
	if err := r.db.WithContext(ctx).
		Where("difficulty = ?", difficulty).
		Order("RANDOM()").
		Limit(n).
		Find(&passages).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}
	return passages, nil
}

func (r *contentRepository) CreateBatch(ctx context.Context, passages []entity.Passage) error {
	if err := r.db.WithContext(ctx).Create(&passages).Error; err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *contentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Passage{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}
	return count, nil
}
