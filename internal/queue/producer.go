package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type ActivityMessage struct {
	ActivityID int64
	ProjectID  int64
	EventKind  string
	DeliveryID string
	TraceID    *string
	Attempt    int
}

type Producer interface {
	Enqueue(ctx context.Context, msg ActivityMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg ActivityMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":   string(TaskTypeActivityEvent),
		"activity_id": msg.ActivityID,
		"project_id":  msg.ProjectID,
		"event_kind":  msg.EventKind,
		"delivery_id": msg.DeliveryID,
		"attempt":     attempt,
	}

	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd (stream=%s): %w", p.stream, err)
	}

	p.logger.DebugContext(ctx, "enqueued activity event",
		"stream", p.stream,
		"message_id", id,
		"activity_id", msg.ActivityID,
		"event_kind", msg.EventKind)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
