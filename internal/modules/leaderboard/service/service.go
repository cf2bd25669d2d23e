package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"anoa.com/typingarena/internal/entity"
	analyticsRepo "anoa.com/typingarena/internal/modules/analytics/repository"
	"anoa.com/typingarena/internal/modules/leaderboard/dto"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultLimit is how many records one snapshot ranks.
	DefaultLimit = 10

	wpmWeight      = 0.7
	accuracyWeight = 0.3

	// UpdatesChannel carries the fresh snapshot to websocket subscribers
	// after every publish.
	UpdatesChannel = "leaderboard_updates"
)

type LeaderboardService interface {
	// Get serves the cached snapshot; it never recomputes.
	Get(ctx context.Context) ([]dto.LeaderboardEntry, error)
	// Refresh regenerates the snapshot from the top analytics records and
	// publishes it. Idempotent, safe to run concurrently with reads.
	Refresh(ctx context.Context) error
	StartRefreshWorker(ctx context.Context, interval time.Duration)
}

type leaderboardService struct {
	analyticsRepo analyticsRepo.AnalyticsRepository
	publisher     *Publisher
	redisClient   *redis.Client
}

func NewLeaderboardService(repo analyticsRepo.AnalyticsRepository, publisher *Publisher, redisClient *redis.Client) LeaderboardService {
	return &leaderboardService{
		analyticsRepo: repo,
		publisher:     publisher,
		redisClient:   redisClient,
	}
}

// Rank turns top analytics records into ranked entries. The input arrives
// already ordered (wpm desc, accuracy desc) from the store query and that
// order is preserved — the weighted score is display-only, never a sort key.
func Rank(records []entity.AnalyticsRecord, limit int) []dto.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}

	entries := make([]dto.LeaderboardEntry, 0, len(records))
	for i, record := range records {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        record.UserID,
			Username:      record.User.Username,
			WPM:           round2(record.WPM),
			Accuracy:      round2(record.Accuracy),
			WeightedScore: round2(record.WPM*wpmWeight + record.Accuracy*accuracyWeight),
		})
	}
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *leaderboardService) Get(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	return s.publisher.Fetch(ctx)
}

func (s *leaderboardService) Refresh(ctx context.Context) error {
	records, err := s.analyticsRepo.FindTopN(ctx, DefaultLimit)
	if err != nil {
		return err
	}

	entries := Rank(records, DefaultLimit)
	if err := s.publisher.Publish(ctx, entries); err != nil {
		return err
	}

	s.notifySubscribers(ctx, entries)
	return nil
}

// notifySubscribers fans the fresh snapshot out over pub/sub for the
// websocket feed. Best effort: a publish failure never fails the refresh.
func (s *leaderboardService) notifySubscribers(ctx context.Context, entries []dto.LeaderboardEntry) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		log.Printf("leaderboard: failed to marshal update payload: %v", err)
		return
	}
	if err := s.redisClient.Publish(ctx, UpdatesChannel, payload).Err(); err != nil {
		log.Printf("leaderboard: failed to publish update: %v", err)
	}
}

func (s *leaderboardService) StartRefreshWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Printf("leaderboard: scheduled refresh failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
