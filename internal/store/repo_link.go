package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"projecthub.app/server/internal/model"
)

type repoLinkStore struct {
	db DBTX
}

const repoLinkColumns = `id, project_id, owner, name, access_token, created_at`

func (s *repoLinkStore) GetByProject(ctx context.Context, projectID int64) (*model.RepoLink, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+repoLinkColumns+` FROM repo_links WHERE project_id = $1`, projectID)
	return scanRepoLink(row)
}

func (s *repoLinkStore) GetByRepo(ctx context.Context, owner, name string) (*model.RepoLink, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+repoLinkColumns+` FROM repo_links WHERE owner = $1 AND name = $2`, owner, name)
	return scanRepoLink(row)
}

func (s *repoLinkStore) Upsert(ctx context.Context, link *model.RepoLink) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO repo_links (id, project_id, owner, name, access_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token
		RETURNING `+repoLinkColumns,
		link.ID, link.ProjectID, link.Owner, link.Name, link.AccessToken,
	)
	upserted, err := scanRepoLink(row)
	if err != nil {
		return err
	}
	*link = *upserted
	return nil
}

func (s *repoLinkStore) DeleteByProject(ctx context.Context, projectID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM repo_links WHERE project_id = $1`, projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRepoLink(row pgx.Row) (*model.RepoLink, error) {
	var l model.RepoLink
	err := row.Scan(&l.ID, &l.ProjectID, &l.Owner, &l.Name, &l.AccessToken, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
