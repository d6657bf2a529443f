package store

import (
	"context"

	"projecthub.app/server/internal/model"
)

type notificationStore struct {
	db DBTX
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, read`,
		n.ID, n.UserID, n.Kind, n.Body,
	)
	return row.Scan(&n.CreatedAt, &n.Read)
}

func (s *notificationStore) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]model.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, kind, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *notificationStore) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read = true
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *notificationStore) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	return count, err
}
