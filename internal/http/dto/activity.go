package dto

import (
	"time"

	"projecthub.app/server/internal/model"
)

type ActivityRecordResponse struct {
	ID             int64     `json:"id,string"`
	ProjectID      int64     `json:"project_id,string"`
	EventKind      string    `json:"event_kind"`
	Action         *string   `json:"action,omitempty"`
	ActorUsername  string    `json:"actor_username"`
	ActorAvatarURL string    `json:"actor_avatar_url,omitempty"`
	Summary        string    `json:"summary"`
	TargetURL      string    `json:"target_url,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToActivityRecordResponse(r *model.ActivityRecord) *ActivityRecordResponse {
	return &ActivityRecordResponse{
		ID:             r.ID,
		ProjectID:      r.ProjectID,
		EventKind:      string(r.EventKind),
		Action:         r.Action,
		ActorUsername:  r.ActorUsername,
		ActorAvatarURL: r.ActorAvatarURL,
		Summary:        r.Summary,
		TargetURL:      r.TargetURL,
		OccurredAt:     r.OccurredAt,
		CreatedAt:      r.CreatedAt,
	}
}

func ToActivityRecordResponses(records []model.ActivityRecord) []ActivityRecordResponse {
	out := make([]ActivityRecordResponse, len(records))
	for i := range records {
		out[i] = *ToActivityRecordResponse(&records[i])
	}
	return out
}
