package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/ports"
)

type OutboxWorkerConfig struct {
	Interval   time.Duration
	BatchSize  int
	ClaimTTL   time.Duration
	MaxRetries int
}

// OutboxWorker relays stored domain events to the publisher. Rows that keep
// failing are dead-lettered after MaxRetries attempts.
type OutboxWorker struct {
	logger    *slog.Logger
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	cfg       OutboxWorkerConfig
	now       func() time.Time
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, cfg OutboxWorkerConfig) *OutboxWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &OutboxWorker{
		logger:    logger,
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.processOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "outbox_process_once",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type batchResult struct {
	published    int
	failed       int
	deadLettered int
}

func (w *OutboxWorker) processOnce(ctx context.Context) (batchResult, error) {
	var res batchResult
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnpublished(ctx, w.cfg.BatchSize, claimToken, w.now().Add(w.cfg.ClaimTTL))
	if err != nil {
		return res, err
	}

	for _, rec := range records {
		now := w.now()
		if rec.RetryCount >= w.cfg.MaxRetries {
			res.deadLettered++
			w.mark(ctx, rec, w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, "retry threshold reached before publish", now))
			continue
		}

		if err := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey); err != nil {
			res.failed++
			attempts := rec.RetryCount + 1
			if attempts >= w.cfg.MaxRetries {
				res.deadLettered++
				w.logger.ErrorContext(ctx, "outbox event dead-lettered",
					"module", "events.outbox_worker",
					"layer", "adapter",
					"operation", "publish_event",
					"outcome", "failure",
					"outbox_id", rec.OutboxID,
					"event_type", rec.EventType,
					"retry_count", attempts,
					"error", err,
				)
				w.mark(ctx, rec, w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, err.Error(), now))
				continue
			}
			w.logger.WarnContext(ctx, "outbox publish failed, will retry",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "publish_event",
				"outcome", "failure",
				"outbox_id", rec.OutboxID,
				"event_type", rec.EventType,
				"retry_count", attempts,
				"error", err,
			)
			w.mark(ctx, rec, w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, err.Error(), now))
			continue
		}
		res.published++
		w.mark(ctx, rec, w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now))
	}

	if len(records) > 0 {
		w.logger.InfoContext(ctx, "outbox batch processed",
			"module", "events.outbox_worker",
			"layer", "adapter",
			"operation", "outbox_process_once",
			"outcome", "success",
			"batch_size", len(records),
			"published_count", res.published,
			"failed_count", res.failed,
			"dead_lettered_count", res.deadLettered,
		)
	}
	return res, nil
}

// mark logs a failed state update. The lease lapses on its own, so the row
// is retried by a later batch.
func (w *OutboxWorker) mark(ctx context.Context, rec ports.OutboxRecord, err error) {
	if err == nil {
		return
	}
	w.logger.WarnContext(ctx, "outbox state update failed",
		"module", "events.outbox_worker",
		"layer", "adapter",
		"operation", "mark_outbox",
		"outcome", "failure",
		"outbox_id", rec.OutboxID,
		"error", err,
	)
}
