package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"projecthub.app/server/common/id"
	"projecthub.app/server/common/logger"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/queue"
	"projecthub.app/server/internal/store"
)

// ErrProjectNotLinked means no project has linked the repository the event
// came from.
var ErrProjectNotLinked = errors.New("repository is not linked to any project")

// IngestInput is one normalized webhook event ready to persist.
type IngestInput struct {
	DeliveryID     string
	EventKind      model.EventKind
	Action         *string
	RepoOwner      string
	RepoName       string
	ActorUsername  string
	ActorAvatarURL string
	Summary        string
	TargetURL      string
	OccurredAt     time.Time
}

// ActivityIngestService turns verified webhook deliveries into persisted
// activity records and queues them for fan-out.
type ActivityIngestService struct {
	repoLinks store.RepoLinkStore
	activity  store.ActivityStore
	producer  queue.Producer
}

func NewActivityIngestService(repoLinks store.RepoLinkStore, activity store.ActivityStore, producer queue.Producer) *ActivityIngestService {
	return &ActivityIngestService{
		repoLinks: repoLinks,
		activity:  activity,
		producer:  producer,
	}
}

// Ingest persists the event keyed by its delivery ID. Redelivered events
// return the original record with created=false and are not re-queued.
func (s *ActivityIngestService) Ingest(ctx context.Context, in IngestInput) (*model.ActivityRecord, bool, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DeliveryID: &in.DeliveryID,
		EventKind:  logger.Ptr(string(in.EventKind)),
		Component:  "activity_ingest",
	})

	link, err := s.repoLinks.GetByRepo(ctx, in.RepoOwner, in.RepoName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "webhook for unlinked repository",
				slog.String("repo", in.RepoOwner+"/"+in.RepoName))
			return nil, false, ErrProjectNotLinked
		}
		return nil, false, fmt.Errorf("resolving repo link: %w", err)
	}

	record := &model.ActivityRecord{
		ID:              id.New(),
		ProjectID:       link.ProjectID,
		ExternalEventID: in.DeliveryID,
		EventKind:       in.EventKind,
		Action:          in.Action,
		ActorUsername:   in.ActorUsername,
		ActorAvatarURL:  in.ActorAvatarURL,
		Summary:         in.Summary,
		TargetURL:       in.TargetURL,
		OccurredAt:      in.OccurredAt,
	}

	saved, created, err := s.activity.CreateOrGet(ctx, record)
	if err != nil {
		return nil, false, fmt.Errorf("persisting activity: %w", err)
	}
	if !created {
		slog.InfoContext(ctx, "duplicate webhook delivery ignored",
			slog.Int64("activity_id", saved.ID))
		return saved, false, nil
	}

	if err := s.producer.Enqueue(ctx, queue.ActivityMessage{
		ActivityID: saved.ID,
		ProjectID:  saved.ProjectID,
		EventKind:  string(saved.EventKind),
		DeliveryID: in.DeliveryID,
		TraceID:    logger.TraceIDFromContext(ctx),
	}); err != nil {
		// The record is durable; fan-out failing only delays live updates.
		slog.ErrorContext(ctx, "failed to enqueue activity fan-out",
			slog.Int64("activity_id", saved.ID), slog.Any("error", err))
	}

	slog.InfoContext(ctx, "activity recorded",
		slog.Int64("activity_id", saved.ID),
		slog.Int64("project_id", saved.ProjectID))
	return saved, true, nil
}

// History returns the stored activity for a project, newest first.
func (s *ActivityIngestService) History(ctx context.Context, projectID int64, limit, offset int32) ([]model.ActivityRecord, error) {
	return s.activity.ListByProject(ctx, projectID, limit, offset)
}

// GetRecord loads one stored activity record by ID.
func (s *ActivityIngestService) GetRecord(ctx context.Context, id int64) (*model.ActivityRecord, error) {
	return s.activity.GetByID(ctx, id)
}
