package store

import (
	"context"
	"errors"

	"projecthub.app/server/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpsertByWorkOSID(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) error
}

// ProjectStore defines the contract for project data access
type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	GetBySlug(ctx context.Context, slug string) (*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id int64) error // soft delete
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Project, error)
	List(ctx context.Context, limit, offset int32) ([]model.Project, error)
}

// RepoLinkStore defines the contract for project repository links
type RepoLinkStore interface {
	GetByProject(ctx context.Context, projectID int64) (*model.RepoLink, error)
	GetByRepo(ctx context.Context, owner, name string) (*model.RepoLink, error)
	Upsert(ctx context.Context, link *model.RepoLink) error
	DeleteByProject(ctx context.Context, projectID int64) error
}

// ApplicationStore defines the contract for project application data access
type ApplicationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Application, error)
	GetPending(ctx context.Context, projectID, applicantID int64) (*model.Application, error)
	Create(ctx context.Context, app *model.Application) error
	UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.Application, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Application, error)
	ListByApplicant(ctx context.Context, applicantID int64) ([]model.Application, error)
}

// CollaboratorStore defines the contract for collaborator membership
type CollaboratorStore interface {
	Get(ctx context.Context, projectID, userID int64) (*model.Collaborator, error)
	Add(ctx context.Context, collab *model.Collaborator) error
	Remove(ctx context.Context, projectID, userID int64) error
	ListByProject(ctx context.Context, projectID int64) ([]model.Collaborator, error)
	ListUserIDs(ctx context.Context, projectID int64) ([]int64, error)
}

// NotificationStore defines the contract for notification data access
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// ActivityStore defines the contract for persisted activity records
type ActivityStore interface {
	// CreateOrGet inserts the record, or returns the existing one when a
	// record with the same external event ID is already stored. The second
	// return value reports whether a new row was created.
	CreateOrGet(ctx context.Context, rec *model.ActivityRecord) (*model.ActivityRecord, bool, error)
	GetByID(ctx context.Context, id int64) (*model.ActivityRecord, error)
	GetByExternalEventID(ctx context.Context, externalEventID string) (*model.ActivityRecord, error)
	ListByProject(ctx context.Context, projectID int64, limit, offset int32) ([]model.ActivityRecord, error)
}
