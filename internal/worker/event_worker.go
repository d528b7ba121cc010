// Package worker processes the member change feed outside the API process.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dues/internal/amqp"
	"dues/internal/services"
	"dues/internal/storage"
)

// Clock supplies the reference instant for due checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// EventWorker reads the stored collection for each member event and logs the
// member's due status after the change.
type EventWorker struct {
	store storage.Snapshotter
	clock Clock
}

func NewEventWorker(store storage.Snapshotter, clock Clock) *EventWorker {
	if clock == nil {
		clock = systemClock{}
	}
	return &EventWorker{store: store, clock: clock}
}

// HandleMemberEvent returns an error only when the store cannot be read, so
// the delivery is requeued. Events for members missing from the snapshot are
// logged and acknowledged.
func (w *EventWorker) HandleMemberEvent(ctx context.Context, msg *amqp.MemberEventMessage) error {
	members, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}

	for _, m := range members {
		if m.ID != msg.MemberID {
			continue
		}
		ref := w.clock.Now()
		slog.InfoContext(ctx, "Member event",
			"kind", msg.Kind,
			"member_id", m.ID,
			"record_id", msg.RecordID,
			"active", m.IsActive,
			"payment_due", m.IsActive && services.IsPaymentDue(m, ref),
			"next_due_date", services.NextDueDate(m).String(),
			"lag_ms", ref.Sub(msg.Timestamp).Milliseconds())
		return nil
	}

	slog.WarnContext(ctx, "Member event for unknown member",
		"kind", msg.Kind,
		"member_id", msg.MemberID)
	return nil
}
