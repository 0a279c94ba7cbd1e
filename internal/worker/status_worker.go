package worker

// status_worker.go
// Processes status-change jobs from QueueStatusChange. No delivery guarantee
// is required: the transition has committed before the job was ever enqueued.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// StatusChangeWorker records status transitions and forwards them to the
// production desk inbox when one is configured.
type StatusChangeWorker struct {
	dispatcher  *Dispatcher
	notifyEmail string
}

func NewStatusChangeWorker(dispatcher *Dispatcher, notifyEmail string) *StatusChangeWorker {
	return &StatusChangeWorker{dispatcher: dispatcher, notifyEmail: notifyEmail}
}

func (w *StatusChangeWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload StatusChangePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("status_worker: invalid payload")
		return
	}

	log.Info().
		Str("entity", payload.Entity).
		Str("entity_id", payload.EntityID).
		Str("new_status", payload.NewStatus).
		Str("changed_by", payload.ChangedBy).
		Msg("status changed")

	if w.notifyEmail == "" {
		return
	}
	w.dispatcher.EnqueueEmail(ctx, EmailPayload{
		To:      w.notifyEmail,
		Subject: fmt.Sprintf("[GesN] %s %s → %s", payload.Entity, payload.EntityID, payload.NewStatus),
		Body: fmt.Sprintf("%s %s moved to %s by %s at %s",
			payload.Entity, payload.EntityID, payload.NewStatus,
			payload.ChangedBy, payload.ChangedAt.Format("2006-01-02 15:04:05")),
	})
}
