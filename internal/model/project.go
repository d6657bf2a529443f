package model

import "time"

type Project struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
	Description *string    `json:"description,omitempty"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Tags        []string   `json:"tags,omitempty"`
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
}

// RepoLink connects a project to a GitHub repository. At most one link
// exists per project; the access token is the linking user's stored
// credential and is never serialized.
type RepoLink struct {
	CreatedAt   time.Time `json:"created_at"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	AccessToken string    `json:"-"`
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
}

func (l *RepoLink) FullName() string {
	return l.Owner + "/" + l.Name
}
