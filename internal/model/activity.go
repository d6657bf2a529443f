package model

import "time"

// EventKind is the closed set of webhook event categories that produce
// persisted activity records. Anything else is acknowledged and dropped.
type EventKind string

const (
	EventKindPush        EventKind = "push"
	EventKindIssues      EventKind = "issues"
	EventKindPullRequest EventKind = "pull_request"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventKindPush, EventKindIssues, EventKindPullRequest:
		return true
	}
	return false
}

// ActivityRecord is one durable, deduplicated unit of repository activity.
// Created once by the webhook pipeline, never mutated, deleted only via
// cascading project deletion. ExternalEventID is the idempotency key: the
// unique constraint on it is the source of truth under concurrent
// duplicate deliveries.
type ActivityRecord struct {
	CreatedAt       time.Time `json:"created_at"`
	OccurredAt      time.Time `json:"occurred_at"`
	ExternalEventID string    `json:"external_event_id"`
	EventKind       EventKind `json:"event_kind"`
	Action          *string   `json:"action,omitempty"`
	ActorUsername   string    `json:"actor_username"`
	ActorAvatarURL  string    `json:"actor_avatar_url"`
	Summary         string    `json:"summary"`
	TargetURL       string    `json:"target_url"`
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"project_id"`
}

// RepoActivityKind categorizes entries in the transient aggregated feed.
type RepoActivityKind string

const (
	RepoActivityCommit      RepoActivityKind = "COMMIT"
	RepoActivityIssue       RepoActivityKind = "ISSUE"
	RepoActivityPullRequest RepoActivityKind = "PULL_REQUEST"
	RepoActivityPush        RepoActivityKind = "PUSH"
	RepoActivityComment     RepoActivityKind = "COMMENT"
)

// RepoActivity is the in-memory-only aggregator output, recomputed on
// every request and never persisted.
type RepoActivity struct {
	ID        string           `json:"id"`
	Kind      RepoActivityKind `json:"kind"`
	Actor     RepoActor        `json:"actor"`
	Summary   string           `json:"summary"`
	Timestamp time.Time        `json:"timestamp"`
	URL       *string          `json:"url,omitempty"`
}

type RepoActor struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
