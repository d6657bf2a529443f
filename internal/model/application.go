package model

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusDenied    ApplicationStatus = "denied"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

type Application struct {
	CreatedAt   time.Time         `json:"created_at"`
	DecidedAt   *time.Time        `json:"decided_at,omitempty"`
	Message     *string           `json:"message,omitempty"`
	Status      ApplicationStatus `json:"status"`
	ID          int64             `json:"id"`
	ProjectID   int64             `json:"project_id"`
	ApplicantID int64             `json:"applicant_id"`
}

func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

type CollaboratorRole string

const (
	CollaboratorRoleOwner  CollaboratorRole = "owner"
	CollaboratorRoleMember CollaboratorRole = "member"
)

type Collaborator struct {
	AddedAt   time.Time        `json:"added_at"`
	Role      CollaboratorRole `json:"role"`
	ProjectID int64            `json:"project_id"`
	UserID    int64            `json:"user_id"`
}
