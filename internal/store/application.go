package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"projecthub.app/server/internal/model"
)

type applicationStore struct {
	db DBTX
}

const applicationColumns = `id, project_id, applicant_id, message, status, created_at, decided_at`

func (s *applicationStore) GetByID(ctx context.Context, id int64) (*model.Application, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (s *applicationStore) GetPending(ctx context.Context, projectID, applicantID int64) (*model.Application, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE project_id = $1 AND applicant_id = $2 AND status = 'pending'`,
		projectID, applicantID)
	return scanApplication(row)
}

func (s *applicationStore) Create(ctx context.Context, app *model.Application) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO applications (id, project_id, applicant_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+applicationColumns,
		app.ID, app.ProjectID, app.ApplicantID, app.Message, app.Status,
	)
	created, err := scanApplication(row)
	if err != nil {
		return err
	}
	*app = *created
	return nil
}

func (s *applicationStore) UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.Application, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE applications
		SET status = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+applicationColumns,
		id, status,
	)
	return scanApplication(row)
}

func (s *applicationStore) ListByProject(ctx context.Context, projectID int64) ([]model.Application, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE project_id = $1
		ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (s *applicationStore) ListByApplicant(ctx context.Context, applicantID int64) ([]model.Application, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC`, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(&a.ID, &a.ProjectID, &a.ApplicantID, &a.Message, &a.Status, &a.CreatedAt, &a.DecidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func scanApplications(rows pgx.Rows) ([]model.Application, error) {
	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}
