package dto

import (
	"time"

	"projecthub.app/server/internal/model"
)

type CreateProjectRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=255"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=4096"`
	Tags        []string `json:"tags,omitempty" binding:"omitempty,max=10,dive,min=1,max=64"`
	Slug        *string  `json:"slug,omitempty" binding:"omitempty,min=1,max=255"`
}

type UpdateProjectRequest struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=4096"`
	Tags        []string `json:"tags,omitempty" binding:"omitempty,max=10,dive,min=1,max=64"`
}

type ProjectResponse struct {
	ID          int64     `json:"id,string"`
	OwnerID     int64     `json:"owner_id,string"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToProjectResponse(p *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProjectResponses(projects []model.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = *ToProjectResponse(&projects[i])
	}
	return out
}

type LinkRepoRequest struct {
	Owner       string `json:"owner" binding:"required,min=1,max=255"`
	Name        string `json:"name" binding:"required,min=1,max=255"`
	AccessToken string `json:"access_token" binding:"omitempty,max=512"`
}

type RepoLinkResponse struct {
	ID        int64     `json:"id,string"`
	ProjectID int64     `json:"project_id,string"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func ToRepoLinkResponse(l *model.RepoLink) *RepoLinkResponse {
	return &RepoLinkResponse{
		ID:        l.ID,
		ProjectID: l.ProjectID,
		Owner:     l.Owner,
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
	}
}

type CollaboratorResponse struct {
	ProjectID int64     `json:"project_id,string"`
	UserID    int64     `json:"user_id,string"`
	Role      string    `json:"role"`
	AddedAt   time.Time `json:"added_at"`
}

func ToCollaboratorResponses(collabs []model.Collaborator) []CollaboratorResponse {
	out := make([]CollaboratorResponse, len(collabs))
	for i, c := range collabs {
		out[i] = CollaboratorResponse{
			ProjectID: c.ProjectID,
			UserID:    c.UserID,
			Role:      string(c.Role),
			AddedAt:   c.AddedAt,
		}
	}
	return out
}
