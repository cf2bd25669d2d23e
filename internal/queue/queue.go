package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/typingarena/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// Job types dispatched by the worker.
const (
	TypeSendEmail      = "send_email"
	TypePreloadContent = "preload_content"
)

// Priorities. Higher pops first; within one priority jobs stay FIFO.
const (
	PriorityLow = iota
	PriorityNormal
	PriorityHigh
)

const jobsKey = "queue:jobs"

// priorityStride must dwarf any realistic enqueue-time spread so that a
// higher-priority job always scores below (pops before) a lower-priority
// one. One stride is ~104 days in nanoseconds; the queue drains in seconds.
const priorityStride = float64(1 << 53)

type Job struct {
	Type       string          `json:"type"`
	Priority   int             `json:"priority"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type PreloadPayload struct {
	Difficulty string `json:"difficulty"`
}

// Handler processes one dequeued job of its registered type.
type Handler func(ctx context.Context, job Job) error

// Enqueuer is the producer-side interface services depend on.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, priority int, payload any) error
}

// Queue is a priority job queue over a Redis sorted set.
type Queue struct {
	client   *redis.Client
	handlers map[string]Handler
	interval time.Duration
}

func New(client *redis.Client, pollInterval time.Duration) *Queue {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Queue{
		client:   client,
		handlers: make(map[string]Handler),
		interval: pollInterval,
	}
}

func (q *Queue) Register(jobType string, handler Handler) {
	q.handlers[jobType] = handler
}

func (q *Queue) Enqueue(ctx context.Context, jobType string, priority int, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	job := Job{
		Type:       jobType,
		Priority:   priority,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
	member, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = q.client.ZAdd(ctx, jobsKey, redis.Z{
		Score:  Score(job.Priority, job.EnqueuedAt),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrCacheUnavailable, err)
	}
	return nil
}

// Score orders the sorted set: lower pops first, so the priority pushes the
// score down by whole strides and enqueue time breaks ties FIFO.
func Score(priority int, enqueuedAt time.Time) float64 {
	return float64(enqueuedAt.UnixNano()) - float64(priority)*priorityStride
}

func (q *Queue) dequeue(ctx context.Context) (*Job, error) {
	vals, err := q.client.ZPopMin(ctx, jobsKey, 1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(vals[0].Member.(string)), &job); err != nil {
		log.Printf("queue: dropping undecodable job: %v", err)
		return nil, nil
	}
	return &job, nil
}

// StartWorker polls the queue and dispatches jobs to their handlers until
// the context is cancelled. The queue drains fully on each tick.
func (q *Queue) StartWorker(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			q.drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	for {
		job, err := q.dequeue(ctx)
		if err != nil {
			log.Printf("queue: dequeue failed: %v", err)
			return
		}
		if job == nil {
			return
		}

		handler, ok := q.handlers[job.Type]
		if !ok {
			log.Printf("queue: no handler for job type %q", job.Type)
			continue
		}
		if err := handler(ctx, *job); err != nil {
			log.Printf("queue: %s job failed: %v", job.Type, err)
		}
	}
}
