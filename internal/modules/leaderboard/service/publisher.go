package service

import (
	"context"
	"encoding/json"
	"log"

	"anoa.com/typingarena/internal/modules/leaderboard/dto"
	"anoa.com/typingarena/pkg/cache"
)

// SnapshotKey is the single well-known cache key holding the last ranked
// snapshot. No TTL: it lives until the next publish replaces it.
const SnapshotKey = "leaderboard:snapshot"

// Publisher persists ranked snapshots in the cache so leaderboard reads
// never recompute.
type Publisher struct {
	cache cache.Cache
}

func NewPublisher(c cache.Cache) *Publisher {
	return &Publisher{cache: c}
}

func (p *Publisher) Publish(ctx context.Context, entries []dto.LeaderboardEntry) error {
	if entries == nil {
		entries = []dto.LeaderboardEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, SnapshotKey, b, 0)
}

// Fetch returns the last published snapshot. A missing or unreadable value
// degrades to an empty list — the leaderboard is a derived convenience, so
// this path fails open. Infrastructure failures still surface.
func (p *Publisher) Fetch(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	b, ok, err := p.cache.Get(ctx, SnapshotKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []dto.LeaderboardEntry{}, nil
	}

	var entries []dto.LeaderboardEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		log.Printf("leaderboard: discarding corrupt snapshot: %v", err)
		return []dto.LeaderboardEntry{}, nil
	}
	return entries, nil
}
