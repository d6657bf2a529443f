package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/store"
)

var (
	ErrNotCollaborator   = errors.New("user is not a collaborator")
	ErrCannotRemoveOwner = errors.New("the project owner cannot be removed")
)

type CollaboratorService interface {
	List(ctx context.Context, projectID int64) ([]model.Collaborator, error)
	Remove(ctx context.Context, projectID, userID, removerID int64) error
	Leave(ctx context.Context, projectID, userID int64) error
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
}

type collaboratorService struct {
	collabStore  store.CollaboratorStore
	projectStore store.ProjectStore
}

func NewCollaboratorService(collabStore store.CollaboratorStore, projectStore store.ProjectStore) CollaboratorService {
	return &collaboratorService{
		collabStore:  collabStore,
		projectStore: projectStore,
	}
}

func (s *collaboratorService) List(ctx context.Context, projectID int64) ([]model.Collaborator, error) {
	return s.collabStore.ListByProject(ctx, projectID)
}

// Remove kicks a collaborator. Only the project owner may do this and the
// owner's own membership is immovable.
func (s *collaboratorService) Remove(ctx context.Context, projectID, userID, removerID int64) error {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("getting project: %w", err)
	}
	if project.OwnerID != removerID {
		return ErrNotProjectOwner
	}
	if userID == project.OwnerID {
		return ErrCannotRemoveOwner
	}
	return s.remove(ctx, projectID, userID)
}

// Leave lets a member walk away from a project on their own.
func (s *collaboratorService) Leave(ctx context.Context, projectID, userID int64) error {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("getting project: %w", err)
	}
	if userID == project.OwnerID {
		return ErrCannotRemoveOwner
	}
	return s.remove(ctx, projectID, userID)
}

func (s *collaboratorService) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	if _, err := s.collabStore.Get(ctx, projectID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return true, nil
}

func (s *collaboratorService) remove(ctx context.Context, projectID, userID int64) error {
	if _, err := s.collabStore.Get(ctx, projectID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotCollaborator
		}
		return fmt.Errorf("checking membership: %w", err)
	}
	if err := s.collabStore.Remove(ctx, projectID, userID); err != nil {
		return fmt.Errorf("removing collaborator: %w", err)
	}
	slog.InfoContext(ctx, "collaborator removed",
		"project_id", projectID,
		"user_id", userID,
	)
	return nil
}
