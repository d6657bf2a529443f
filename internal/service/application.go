package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"projecthub.app/server/common/id"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/store"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("a pending application already exists")
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")
	ErrOwnProject          = errors.New("cannot apply to your own project")
	ErrAlreadyDecided      = errors.New("application has already been decided")
	ErrNotApplicant        = errors.New("only the applicant may withdraw")
)

type ApplicationService interface {
	Apply(ctx context.Context, projectID, applicantID int64, message *string) (*model.Application, error)
	Withdraw(ctx context.Context, applicationID, userID int64) (*model.Application, error)
	Decide(ctx context.Context, applicationID, deciderID int64, accept bool) (*model.Application, error)
	ListByProject(ctx context.Context, projectID, userID int64) ([]model.Application, error)
	ListMine(ctx context.Context, applicantID int64) ([]model.Application, error)
}

type applicationService struct {
	appStore     store.ApplicationStore
	projectStore store.ProjectStore
	collabStore  store.CollaboratorStore
	notifStore   store.NotificationStore
	txRunner     TxRunner
}

func NewApplicationService(
	appStore store.ApplicationStore,
	projectStore store.ProjectStore,
	collabStore store.CollaboratorStore,
	notifStore store.NotificationStore,
	txRunner TxRunner,
) ApplicationService {
	return &applicationService{
		appStore:     appStore,
		projectStore: projectStore,
		collabStore:  collabStore,
		notifStore:   notifStore,
		txRunner:     txRunner,
	}
}

func (s *applicationService) Apply(ctx context.Context, projectID, applicantID int64, message *string) (*model.Application, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if project.OwnerID == applicantID {
		return nil, ErrOwnProject
	}

	if _, err := s.collabStore.Get(ctx, projectID, applicantID); err == nil {
		return nil, ErrAlreadyCollaborator
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking membership: %w", err)
	}

	if _, err := s.appStore.GetPending(ctx, projectID, applicantID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking pending application: %w", err)
	}

	app := &model.Application{
		ID:          id.New(),
		ProjectID:   projectID,
		ApplicantID: applicantID,
		Message:     message,
		Status:      model.ApplicationStatusPending,
	}
	if err := s.appStore.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	if err := s.notifStore.Create(ctx, &model.Notification{
		ID:     id.New(),
		UserID: project.OwnerID,
		Kind:   model.NotificationKindApplication,
		Body:   fmt.Sprintf("New application for %s", project.Name),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to notify project owner",
			"error", err, "project_id", projectID, "application_id", app.ID)
	}

	slog.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"project_id", projectID,
		"applicant_id", applicantID,
	)
	return app, nil
}

func (s *applicationService) Withdraw(ctx context.Context, applicationID, userID int64) (*model.Application, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != userID {
		return nil, ErrNotApplicant
	}
	if !app.IsPending() {
		return nil, ErrAlreadyDecided
	}

	updated, err := s.appStore.UpdateStatus(ctx, applicationID, model.ApplicationStatusWithdrawn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Raced with a decision.
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("withdrawing application: %w", err)
	}
	return updated, nil
}

// Decide accepts or denies a pending application. Acceptance adds the
// applicant as a collaborator and notifies them in one transaction, so a
// half-accepted application can never be observed.
func (s *applicationService) Decide(ctx context.Context, applicationID, deciderID int64, accept bool) (*model.Application, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectStore.GetByID(ctx, app.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if project.OwnerID != deciderID {
		return nil, ErrNotProjectOwner
	}
	if !app.IsPending() {
		return nil, ErrAlreadyDecided
	}

	status := model.ApplicationStatusDenied
	body := fmt.Sprintf("Your application to %s was denied", project.Name)
	if accept {
		status = model.ApplicationStatusAccepted
		body = fmt.Sprintf("Your application to %s was accepted", project.Name)
	}

	var decided *model.Application
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		var txErr error
		decided, txErr = stores.Applications().UpdateStatus(ctx, applicationID, status)
		if txErr != nil {
			if errors.Is(txErr, store.ErrNotFound) {
				return ErrAlreadyDecided
			}
			return fmt.Errorf("updating application status: %w", txErr)
		}

		if accept {
			if txErr := stores.Collaborators().Add(ctx, &model.Collaborator{
				ProjectID: app.ProjectID,
				UserID:    app.ApplicantID,
				Role:      model.CollaboratorRoleMember,
			}); txErr != nil {
				return fmt.Errorf("adding collaborator: %w", txErr)
			}
		}

		return stores.Notifications().Create(ctx, &model.Notification{
			ID:     id.New(),
			UserID: app.ApplicantID,
			Kind:   model.NotificationKindDecision,
			Body:   body,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "application decided",
		"application_id", applicationID,
		"project_id", app.ProjectID,
		"status", decided.Status,
	)
	return decided, nil
}

func (s *applicationService) ListByProject(ctx context.Context, projectID, userID int64) ([]model.Application, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if project.OwnerID != userID {
		return nil, ErrNotProjectOwner
	}
	return s.appStore.ListByProject(ctx, projectID)
}

func (s *applicationService) ListMine(ctx context.Context, applicantID int64) ([]model.Application, error) {
	return s.appStore.ListByApplicant(ctx, applicantID)
}

func (s *applicationService) getApplication(ctx context.Context, id int64) (*model.Application, error) {
	app, err := s.appStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("getting application: %w", err)
	}
	return app, nil
}
