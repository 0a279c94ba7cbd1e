package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStatusChange = "jobs:status_change"
	QueueEmail        = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StatusChangePayload is emitted after every committed state transition.
type StatusChangePayload struct {
	Entity    string    `json:"entity"` // "demand" | "production_order"
	EntityID  string    `json:"entity_id"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP. All enqueue paths are fire-and-forget: the state transition
// has already committed by the time a notification is attempted, so enqueue
// failures are logged and swallowed, never surfaced to the caller.
type Dispatcher struct {
	rdb *redis.Client

	// inflight keeps at-most-one notification in flight per entity id:
	// a second concurrent attempt for the same entity is skipped, not queued.
	inflight sync.Map
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// NotifyStatusChange pushes a status-change event for the entity. Safe to call
// with a nil dispatcher or nil redis client (unit test mode): it becomes a no-op.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, payload StatusChangePayload) {
	if d == nil || d.rdb == nil {
		return
	}

	key := payload.Entity + ":" + payload.EntityID
	if _, loaded := d.inflight.LoadOrStore(key, struct{}{}); loaded {
		log.Debug().Str("key", key).Msg("status notification already in flight, skipping")
		return
	}
	defer d.inflight.Delete(key)

	if err := d.enqueue(ctx, QueueStatusChange, "status_change", payload); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to enqueue status notification")
	}
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailPayload) {
	if d == nil || d.rdb == nil {
		return
	}
	if err := d.enqueue(ctx, QueueEmail, "email", payload); err != nil {
		log.Error().Err(err).Msg("failed to enqueue email job")
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers wires concrete processors into the pool.
type Handlers struct {
	StatusChange *StatusChangeWorker
	Email        *EmailWorker
}

// StartPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueStatusChange, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "status_change":
		if handlers.StatusChange != nil {
			handlers.StatusChange.Process(ctx, job.Payload)
		}
	case "email":
		if handlers.Email != nil {
			handlers.Email.Process(ctx, job.Payload)
		}
	default:
		log.Warn().Str("type", job.Type).Msg("unknown job type, dropping")
	}
}
