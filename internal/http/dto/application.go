package dto

import (
	"time"

	"projecthub.app/server/internal/model"
)

type ApplyRequest struct {
	Message *string `json:"message,omitempty" binding:"omitempty,max=4096"`
}

type DecideApplicationRequest struct {
	Accept bool `json:"accept"`
}

type ApplicationResponse struct {
	ID          int64      `json:"id,string"`
	ProjectID   int64      `json:"project_id,string"`
	ApplicantID int64      `json:"applicant_id,string"`
	Message     *string    `json:"message,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

func ToApplicationResponse(a *model.Application) *ApplicationResponse {
	return &ApplicationResponse{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		ApplicantID: a.ApplicantID,
		Message:     a.Message,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		DecidedAt:   a.DecidedAt,
	}
}

func ToApplicationResponses(apps []model.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, len(apps))
	for i := range apps {
		out[i] = *ToApplicationResponse(&apps[i])
	}
	return out
}
