package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/typingarena/internal/modules/leaderboard/dto"
	"anoa.com/typingarena/pkg/apperror"
	"github.com/google/uuid"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, apperror.ErrCacheUnavailable
}
func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return apperror.ErrCacheUnavailable
}
func (failingCache) Del(ctx context.Context, keys ...string) error {
	return apperror.ErrCacheUnavailable
}

func TestPublisher_FetchBeforeAnyPublish(t *testing.T) {
	p := NewPublisher(newMemoryCache())

	entries, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestPublisher_PublishThenFetch(t *testing.T) {
	p := NewPublisher(newMemoryCache())
	published := []dto.LeaderboardEntry{
		{Rank: 1, UserID: uuid.New(), Username: "ada", WPM: 95, Accuracy: 98, WeightedScore: 95.9},
		{Rank: 2, UserID: uuid.New(), Username: "bob", WPM: 90, Accuracy: 99, WeightedScore: 92.7},
	}

	if err := p.Publish(context.Background(), published); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i := range published {
		if got[i] != published[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], published[i])
		}
	}
}

func TestPublisher_FetchIsIdempotent(t *testing.T) {
	p := NewPublisher(newMemoryCache())
	if err := p.Publish(context.Background(), []dto.LeaderboardEntry{{Rank: 1, Username: "ada", WPM: 95}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	first, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("len mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs between fetches: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPublisher_CorruptSnapshotFailsOpen(t *testing.T) {
	c := newMemoryCache()
	c.data[SnapshotKey] = []byte("{not json")
	p := NewPublisher(c)

	entries, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestPublisher_InfraFailureSurfaces(t *testing.T) {
	p := NewPublisher(failingCache{})

	if _, err := p.Fetch(context.Background()); !errors.Is(err, apperror.ErrCacheUnavailable) {
		t.Errorf("Fetch err = %v, want ErrCacheUnavailable", err)
	}
	if err := p.Publish(context.Background(), nil); !errors.Is(err, apperror.ErrCacheUnavailable) {
		t.Errorf("Publish err = %v, want ErrCacheUnavailable", err)
	}
}
