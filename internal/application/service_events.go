package application

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/ports"
)

const (
	eventTypeAccountRegistered      = "account.registered"
	eventTypeAccountLoggedIn        = "account.logged_in"
	eventTypeAccountPasswordChanged = "account.password_changed"
	eventTypeAccountEmailVerified   = "account.email_verified"
	eventTypeBrandChanged           = "brand.changed"
	eventTypeProductSaleRecorded    = "product.sale_recorded"
)

// enqueueEvent appends an outbox row after the primary write has committed.
// A failed enqueue is logged and never fails the request.
func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey string, payload map[string]any) {
	if s.outbox == nil {
		return
	}
	now := s.nowFn()
	payload["occurred_at"] = now
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logWarn(ctx, "enqueue_event", "failed to encode event payload", "event_type", eventType, "error", err)
		return
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   now,
	}); err != nil {
		s.logWarn(ctx, "enqueue_event", "failed to enqueue outbox event", "event_type", eventType, "error", err)
	}
}
