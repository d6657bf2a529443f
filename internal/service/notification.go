package service

import (
	"context"
	"errors"
	"fmt"

	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/store"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	List(ctx context.Context, userID int64, limit, offset int32) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type notificationService struct {
	notifStore store.NotificationStore
}

func NewNotificationService(notifStore store.NotificationStore) NotificationService {
	return &notificationService{notifStore: notifStore}
}

func (s *notificationService) List(ctx context.Context, userID int64, limit, offset int32) ([]model.Notification, error) {
	return s.notifStore.ListByUser(ctx, userID, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID int64) error {
	if err := s.notifStore.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.notifStore.CountUnread(ctx, userID)
}
