package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"anoa.com/typingarena/internal/entity"
	"anoa.com/typingarena/internal/modules/content/repository"
	"anoa.com/typingarena/internal/queue"
	"anoa.com/typingarena/pkg/apperror"
	"anoa.com/typingarena/pkg/cache"
)

const (
	poolSize = 20
	poolTTL  = time.Hour
)

type ContentService interface {
	// GetPassages serves passages from the preloaded pool, falling back to
	// the store on a cold pool (and queueing a refill).
	GetPassages(ctx context.Context, difficulty string, count int) ([]entity.Passage, error)
	// PreloadPool refills the cached pool for one difficulty. Runs as the
	// preload_content job handler.
	PreloadPool(ctx context.Context, difficulty string) error
}

type contentService struct {
	repo  repository.ContentRepository
	cache cache.Cache
	jobs  queue.Enqueuer
}

func NewContentService(repo repository.ContentRepository, c cache.Cache, jobs queue.Enqueuer) ContentService {
	return &contentService{
		repo:  repo,
		cache: c,
		jobs:  jobs,
	}
}

func (s *contentService) GetPassages(ctx context.Context, difficulty string, count int) ([]entity.Passage, error) {
	if !validDifficulty(difficulty) {
		return nil, apperror.ErrInvalidInput
	}
	if count <= 0 || count > poolSize {
		count = 1
	}

	b, ok, err := s.cache.Get(ctx, poolKey(difficulty))
	if err == nil && ok {
		var pool []entity.Passage
		if err := json.Unmarshal(b, &pool); err == nil && len(pool) >= count {
			return pool[:count], nil
		}
	}

	// Cold or unusable pool: serve from the store and refill in the
	// background.
	if err := s.jobs.Enqueue(ctx, queue.TypePreloadContent, queue.PriorityNormal, queue.PreloadPayload{Difficulty: difficulty}); err != nil {
		log.Printf("content: failed to enqueue preload for %s: %v", difficulty, err)
	}

	return s.repo.FindRandomByDifficulty(ctx, difficulty, count)
}

func (s *contentService) PreloadPool(ctx context.Context, difficulty string) error {
	if !validDifficulty(difficulty) {
		return apperror.ErrInvalidInput
	}

	passages, err := s.repo.FindRandomByDifficulty(ctx, difficulty, poolSize)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		return nil
	}

	b, err := json.Marshal(passages)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, poolKey(difficulty), b, poolTTL)
}

func poolKey(difficulty string) string {
	return fmt.Sprintf("content:pool:%s", difficulty)
}

func validDifficulty(difficulty string) bool {
	switch difficulty {
	case entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard:
		return true
	}
	return false
}
