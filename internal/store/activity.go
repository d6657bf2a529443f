package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"projecthub.app/server/internal/model"
)

type activityStore struct {
	db DBTX
}

const activityColumns = `id, project_id, external_event_id, event_kind, action,
	actor_username, actor_avatar_url, summary, target_url, occurred_at, created_at`

func (s *activityStore) CreateOrGet(ctx context.Context, rec *model.ActivityRecord) (*model.ActivityRecord, bool, error) {
	// ON CONFLICT DO NOTHING returns no row for a duplicate, so a second
	// query fetches the existing record. The unique index on
	// external_event_id resolves the race between concurrent identical
	// deliveries; the losing insert simply observes the winner's row. A
	// 23505 that slips through the conflict clause (a racing speculative
	// insert) is treated the same as the no-row case.
	row := s.db.QueryRow(ctx, `
		INSERT INTO activity_records
			(id, project_id, external_event_id, event_kind, action,
			 actor_username, actor_avatar_url, summary, target_url, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_event_id) DO NOTHING
		RETURNING `+activityColumns,
		rec.ID, rec.ProjectID, rec.ExternalEventID, rec.EventKind, rec.Action,
		rec.ActorUsername, rec.ActorAvatarURL, rec.Summary, rec.TargetURL, rec.OccurredAt,
	)

	created, err := scanActivity(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrNotFound) && !IsUniqueViolation(err) {
		return nil, false, err
	}

	existing, err := s.GetByExternalEventID(ctx, rec.ExternalEventID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *activityStore) GetByID(ctx context.Context, id int64) (*model.ActivityRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+activityColumns+` FROM activity_records WHERE id = $1`, id)
	return scanActivity(row)
}

func (s *activityStore) GetByExternalEventID(ctx context.Context, externalEventID string) (*model.ActivityRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+activityColumns+` FROM activity_records WHERE external_event_id = $1`,
		externalEventID)
	return scanActivity(row)
}

func (s *activityStore) ListByProject(ctx context.Context, projectID int64, limit, offset int32) ([]model.ActivityRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+activityColumns+` FROM activity_records
		WHERE project_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2 OFFSET $3`, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		rec, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanActivity(row pgx.Row) (*model.ActivityRecord, error) {
	var r model.ActivityRecord
	err := row.Scan(&r.ID, &r.ProjectID, &r.ExternalEventID, &r.EventKind, &r.Action,
		&r.ActorUsername, &r.ActorAvatarURL, &r.Summary, &r.TargetURL, &r.OccurredAt, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
