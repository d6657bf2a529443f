package dto

import (
	"time"

	"projecthub.app/server/internal/model"
)

type NotificationResponse struct {
	ID        int64     `json:"id,string"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func ToNotificationResponses(notifs []model.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(notifs))
	for i, n := range notifs {
		out[i] = NotificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	return out
}
