// Package worker consumes queued activity events and fans them out to live
// event streams and collaborator notifications.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"projecthub.app/server/common/id"
	"projecthub.app/server/common/logger"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/queue"
	"projecthub.app/server/internal/store"
)

// Mirrors service.StoreProvider - defined here to avoid import cycles.
type StoreProvider interface {
	Collaborators() store.CollaboratorStore
	Notifications() store.NotificationStore
	Activity() store.ActivityStore
}

// Mirrors service.TxRunner - defined here to avoid import cycles.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type Config struct {
	MaxAttempts int
}

// Broadcaster is the write side of the live event-stream registry.
type Broadcaster interface {
	Broadcast(projectID int64, event string, payload any)
}

type Worker struct {
	consumer *queue.RedisConsumer
	stores   StoreProvider
	txRunner TxRunner
	registry Broadcaster
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, stores StoreProvider, txRunner TxRunner, registry Broadcaster, cfg Config) *Worker {
	return &Worker{
		consumer:  consumer,
		stores:    stores,
		txRunner:  txRunner,
		registry:  registry,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "fan-out worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "fan-out worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"activity_id", msg.ActivityID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"activity_id", msg.ActivityID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage fans one activity out. Exported so it can be reused by the
// reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.process_activity")
	defer span.End()
	ctx = logger.WithLogFields(span.Context(), logger.LogFields{
		MessageID:  &msg.ID,
		ActivityID: &msg.ActivityID,
		Component:  "worker",
	})

	slog.InfoContext(ctx, "processing activity fan-out",
		"project_id", msg.ProjectID,
		"event_kind", msg.EventKind,
		"attempt", msg.Attempt)

	record, err := w.stores.Activity().GetByID(ctx, msg.ActivityID)
	if err != nil {
		err = fmt.Errorf("loading activity record: %w", err)
		span.RecordError(err)
		return err
	}

	// Notifications first: the transaction either writes one per collaborator
	// or none, so a retry never leaves a partial fan-out behind.
	txErr := w.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		userIDs, err := sp.Collaborators().ListUserIDs(ctx, record.ProjectID)
		if err != nil {
			return fmt.Errorf("listing collaborators: %w", err)
		}
		for _, userID := range userIDs {
			n := &model.Notification{
				ID:     id.New(),
				UserID: userID,
				Kind:   model.NotificationKindActivity,
				Body:   record.Summary,
			}
			if err := sp.Notifications().Create(ctx, n); err != nil {
				return fmt.Errorf("creating notification for user %d: %w", userID, err)
			}
		}
		return nil
	})
	if txErr != nil {
		// Don't ACK, let Redis redeliver.
		txErr = fmt.Errorf("transaction failed: %w", txErr)
		span.RecordError(txErr)
		return txErr
	}

	w.registry.Broadcast(record.ProjectID, "activity", record)

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Log but don't fail - the message will be reclaimed; duplicate
		// notifications are possible but the activity record itself is
		// idempotent.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}

	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"activity_id", msg.ActivityID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"activity_id", msg.ActivityID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
