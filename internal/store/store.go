package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal query interface shared by *pgxpool.Pool and pgx.Tx,
// allowing the same store implementations to run inside or outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores provides typed accessors over a shared database handle.
// It can be instantiated with either a connection pool or a transaction.
type Stores struct {
	db DBTX
}

func NewStores(db DBTX) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Users() UserStore {
	return &userStore{db: s.db}
}

func (s *Stores) Sessions() SessionStore {
	return &sessionStore{db: s.db}
}

func (s *Stores) Projects() ProjectStore {
	return &projectStore{db: s.db}
}

func (s *Stores) RepoLinks() RepoLinkStore {
	return &repoLinkStore{db: s.db}
}

func (s *Stores) Applications() ApplicationStore {
	return &applicationStore{db: s.db}
}

func (s *Stores) Collaborators() CollaboratorStore {
	return &collaboratorStore{db: s.db}
}

func (s *Stores) Notifications() NotificationStore {
	return &notificationStore{db: s.db}
}

func (s *Stores) Activity() ActivityStore {
	return &activityStore{db: s.db}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
