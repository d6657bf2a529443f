package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/store"
)

type UpdateUserInput struct {
	Name      *string
	AvatarURL *string
}

type UserService interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error)
}

type userService struct {
	userStore store.UserStore
}

func NewUserService(userStore store.UserStore) UserService {
	return &userService{userStore: userStore}
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.AvatarURL != nil {
		user.AvatarURL = in.AvatarURL
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to update user", "error", err, "user_id", id)
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}
