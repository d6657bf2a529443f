package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"projecthub.app/server/common"
	"projecthub.app/server/common/id"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/store"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotProjectOwner = errors.New("only the project owner may do this")
)

type CreateProjectInput struct {
	Name        string
	Description *string
	Tags        []string
	Slug        *string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Tags        []string
}

type ProjectService interface {
	Create(ctx context.Context, ownerID int64, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, projectID int64) (*model.Project, error)
	GetBySlug(ctx context.Context, slug string) (*model.Project, error)
	Update(ctx context.Context, projectID, userID int64, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, projectID, userID int64) error
	List(ctx context.Context, limit, offset int32) ([]model.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Project, error)

	LinkRepo(ctx context.Context, projectID, userID int64, owner, name, accessToken string) (*model.RepoLink, error)
	UnlinkRepo(ctx context.Context, projectID, userID int64) error
	GetRepoLink(ctx context.Context, projectID int64) (*model.RepoLink, error)
}

type projectService struct {
	projectStore store.ProjectStore
	repoLinks    store.RepoLinkStore
	collabStore  store.CollaboratorStore
	txRunner     TxRunner
}

func NewProjectService(
	projectStore store.ProjectStore,
	repoLinks store.RepoLinkStore,
	collabStore store.CollaboratorStore,
	txRunner TxRunner,
) ProjectService {
	return &projectService{
		projectStore: projectStore,
		repoLinks:    repoLinks,
		collabStore:  collabStore,
		txRunner:     txRunner,
	}
}

// Create stores the project and enrolls the owner as its first collaborator
// in the same transaction.
func (s *projectService) Create(ctx context.Context, ownerID int64, in CreateProjectInput) (*model.Project, error) {
	slug, err := s.ensureSlug(ctx, in.Name, in.Slug)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:          id.New(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Tags:        in.Tags,
		Slug:        slug,
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		return stores.Collaborators().Add(ctx, &model.Collaborator{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      model.CollaboratorRoleOwner,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "project created",
		"project_id", project.ID,
		"owner_id", ownerID,
		"slug", project.Slug,
	)
	return project, nil
}

func (s *projectService) Get(ctx context.Context, projectID int64) (*model.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return project, nil
}

func (s *projectService) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	project, err := s.projectStore.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project by slug: %w", err)
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, projectID, userID int64, in UpdateProjectInput) (*model.Project, error) {
	project, err := s.requireOwner(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = in.Description
	}
	if in.Tags != nil {
		project.Tags = in.Tags
	}

	if err := s.projectStore.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

// Delete soft-deletes the project. Activity records and memberships stay in
// place for cascade cleanup.
func (s *projectService) Delete(ctx context.Context, projectID, userID int64) error {
	if _, err := s.requireOwner(ctx, projectID, userID); err != nil {
		return err
	}
	if err := s.projectStore.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	slog.InfoContext(ctx, "project deleted", "project_id", projectID, "user_id", userID)
	return nil
}

func (s *projectService) List(ctx context.Context, limit, offset int32) ([]model.Project, error) {
	return s.projectStore.List(ctx, limit, offset)
}

func (s *projectService) ListByOwner(ctx context.Context, ownerID int64) ([]model.Project, error) {
	return s.projectStore.ListByOwner(ctx, ownerID)
}

// LinkRepo replaces the project's repository link. A project has at most one
// linked repository.
func (s *projectService) LinkRepo(ctx context.Context, projectID, userID int64, owner, name, accessToken string) (*model.RepoLink, error) {
	if _, err := s.requireOwner(ctx, projectID, userID); err != nil {
		return nil, err
	}

	link := &model.RepoLink{
		ID:          id.New(),
		ProjectID:   projectID,
		Owner:       owner,
		Name:        name,
		AccessToken: accessToken,
	}
	if err := s.repoLinks.Upsert(ctx, link); err != nil {
		return nil, fmt.Errorf("linking repository: %w", err)
	}

	slog.InfoContext(ctx, "repository linked",
		"project_id", projectID,
		"repo", link.FullName(),
	)
	return link, nil
}

func (s *projectService) UnlinkRepo(ctx context.Context, projectID, userID int64) error {
	if _, err := s.requireOwner(ctx, projectID, userID); err != nil {
		return err
	}
	if err := s.repoLinks.DeleteByProject(ctx, projectID); err != nil {
		return fmt.Errorf("unlinking repository: %w", err)
	}
	return nil
}

func (s *projectService) GetRepoLink(ctx context.Context, projectID int64) (*model.RepoLink, error) {
	link, err := s.repoLinks.GetByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotLinked
		}
		return nil, fmt.Errorf("getting repo link: %w", err)
	}
	return link, nil
}

func (s *projectService) requireOwner(ctx context.Context, projectID, userID int64) (*model.Project, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, ErrNotProjectOwner
	}
	return project, nil
}

func (s *projectService) ensureSlug(ctx context.Context, name string, slug *string) (string, error) {
	input := name
	if slug != nil && *slug != "" {
		input = *slug
	}

	base, err := common.Slugify(input, "project")
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}

	// Fast path
	if _, err := s.projectStore.GetBySlug(ctx, base); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return base, nil
		}
		return "", fmt.Errorf("checking slug availability: %w", err)
	}

	// Add numeric suffix until available
	for i := 1; i <= 20; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		_, err := s.projectStore.GetBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug availability: %w", err)
		}
	}

	return "", fmt.Errorf("unable to find available slug for %q", base)
}
