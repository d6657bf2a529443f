package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"projecthub.app/server/internal/model"
)

type projectStore struct {
	db DBTX
}

const projectColumns = `id, owner_id, name, slug, description, tags, created_at, updated_at, deleted_at`

func (s *projectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanProject(row)
}

func (s *projectStore) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE slug = $1 AND deleted_at IS NULL`, slug)
	return scanProject(row)
}

func (s *projectStore) Create(ctx context.Context, project *model.Project) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO projects (id, owner_id, name, slug, description, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+projectColumns,
		project.ID, project.OwnerID, project.Name, project.Slug, project.Description, project.Tags,
	)
	created, err := scanProject(row)
	if err != nil {
		return err
	}
	*project = *created
	return nil
}

func (s *projectStore) Update(ctx context.Context, project *model.Project) error {
	row := s.db.QueryRow(ctx, `
		UPDATE projects
		SET name = $2, description = $3, tags = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+projectColumns,
		project.ID, project.Name, project.Description, project.Tags,
	)
	updated, err := scanProject(row)
	if err != nil {
		return err
	}
	*project = *updated
	return nil
}

func (s *projectStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE projects SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *projectStore) ListByOwner(ctx context.Context, ownerID int64) ([]model.Project, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *projectStore) List(ctx context.Context, limit, offset int32) ([]model.Project, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Slug, &p.Description, &p.Tags, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanProjects(rows pgx.Rows) ([]model.Project, error) {
	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}
