package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"projecthub.app/server/internal/model"
)

type collaboratorStore struct {
	db DBTX
}

func (s *collaboratorStore) Get(ctx context.Context, projectID, userID int64) (*model.Collaborator, error) {
	row := s.db.QueryRow(ctx, `
		SELECT project_id, user_id, role, added_at
		FROM collaborators
		WHERE project_id = $1 AND user_id = $2`, projectID, userID)

	var c model.Collaborator
	if err := row.Scan(&c.ProjectID, &c.UserID, &c.Role, &c.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *collaboratorStore) Add(ctx context.Context, collab *model.Collaborator) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO collaborators (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO NOTHING
		RETURNING added_at`,
		collab.ProjectID, collab.UserID, collab.Role,
	)
	err := row.Scan(&collab.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// already a collaborator; treat as success
		return nil
	}
	return err
}

func (s *collaboratorStore) Remove(ctx context.Context, projectID, userID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM collaborators WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *collaboratorStore) ListByProject(ctx context.Context, projectID int64) ([]model.Collaborator, error) {
	rows, err := s.db.Query(ctx, `
		SELECT project_id, user_id, role, added_at
		FROM collaborators
		WHERE project_id = $1
		ORDER BY added_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collabs []model.Collaborator
	for rows.Next() {
		var c model.Collaborator
		if err := rows.Scan(&c.ProjectID, &c.UserID, &c.Role, &c.AddedAt); err != nil {
			return nil, err
		}
		collabs = append(collabs, c)
	}
	return collabs, rows.Err()
}

func (s *collaboratorStore) ListUserIDs(ctx context.Context, projectID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id FROM collaborators WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
