package model

import "time"

type NotificationKind string

const (
	NotificationKindApplication  NotificationKind = "application"
	NotificationKindDecision     NotificationKind = "decision"
	NotificationKindCollaborator NotificationKind = "collaborator"
	NotificationKindActivity     NotificationKind = "activity"
)

type Notification struct {
	CreatedAt time.Time        `json:"created_at"`
	Kind      NotificationKind `json:"kind"`
	Body      string           `json:"body"`
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Read      bool             `json:"read"`
}
