package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/common/id"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/service"
	"projecthub.app/server/internal/store"
)

var _ = Describe("ApplicationService", func() {
	const (
		projectID   = int64(100)
		ownerID     = int64(1)
		applicantID = int64(2)
		appID       = int64(500)
	)

	var (
		ctx      context.Context
		apps     *mockApplicationStore
		projects *mockProjectStore
		collabs  *mockCollaboratorStore
		notifs   *mockNotificationStore
		txApps   *mockApplicationStore
		txNotifs *mockNotificationStore
		txCollab *mockCollaboratorStore
		svc      service.ApplicationService
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		apps = &mockApplicationStore{}
		projects = &mockProjectStore{}
		collabs = &mockCollaboratorStore{}
		notifs = &mockNotificationStore{}
		txApps = &mockApplicationStore{}
		txNotifs = &mockNotificationStore{}
		txCollab = &mockCollaboratorStore{}

		projects.getByIDFn = func(_ context.Context, pid int64) (*model.Project, error) {
			if pid != projectID {
				return nil, store.ErrNotFound
			}
			return &model.Project{ID: projectID, OwnerID: ownerID, Name: "Widgets"}, nil
		}

		txRunner := &mockTxRunner{
			withTxFn: func(ctx context.Context, fn func(stores service.StoreProvider) error) error {
				return fn(&mockStoreProvider{
					applications:  txApps,
					collaborators: txCollab,
					notifications: txNotifs,
				})
			},
		}

		svc = service.NewApplicationService(apps, projects, collabs, notifs, txRunner)
	})

	Describe("Apply", func() {
		It("creates a pending application and notifies the owner", func() {
			app, err := svc.Apply(ctx, projectID, applicantID, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(model.ApplicationStatusPending))
			Expect(app.ApplicantID).To(Equal(applicantID))
			Expect(notifs.created).To(HaveLen(1))
			Expect(notifs.created[0].UserID).To(Equal(ownerID))
			Expect(notifs.created[0].Kind).To(Equal(model.NotificationKindApplication))
		})

		It("rejects applying to your own project", func() {
			_, err := svc.Apply(ctx, projectID, ownerID, nil)
			Expect(err).To(MatchError(service.ErrOwnProject))
		})

		It("rejects existing collaborators", func() {
			collabs.getFn = func(_ context.Context, _, _ int64) (*model.Collaborator, error) {
				return &model.Collaborator{ProjectID: projectID, UserID: applicantID}, nil
			}
			_, err := svc.Apply(ctx, projectID, applicantID, nil)
			Expect(err).To(MatchError(service.ErrAlreadyCollaborator))
		})

		It("rejects a second pending application", func() {
			apps.getPendingFn = func(_ context.Context, _, _ int64) (*model.Application, error) {
				return &model.Application{ID: appID, Status: model.ApplicationStatusPending}, nil
			}
			_, err := svc.Apply(ctx, projectID, applicantID, nil)
			Expect(err).To(MatchError(service.ErrAlreadyApplied))
		})

		It("returns ErrProjectNotFound for unknown projects", func() {
			_, err := svc.Apply(ctx, 999, applicantID, nil)
			Expect(err).To(MatchError(service.ErrProjectNotFound))
		})
	})

	Describe("Decide", func() {
		pending := func() *model.Application {
			return &model.Application{
				ID:          appID,
				ProjectID:   projectID,
				ApplicantID: applicantID,
				Status:      model.ApplicationStatusPending,
			}
		}

		BeforeEach(func() {
			apps.getByIDFn = func(_ context.Context, _ int64) (*model.Application, error) {
				return pending(), nil
			}
			txApps.updateStatusFn = func(_ context.Context, _ int64, status model.ApplicationStatus) (*model.Application, error) {
				app := pending()
				app.Status = status
				return app, nil
			}
		})

		It("accepting adds the applicant as a member and notifies them", func() {
			decided, err := svc.Decide(ctx, appID, ownerID, true)

			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(model.ApplicationStatusAccepted))

			Expect(txCollab.addedCollab).NotTo(BeNil())
			Expect(txCollab.addedCollab.UserID).To(Equal(applicantID))
			Expect(txCollab.addedCollab.Role).To(Equal(model.CollaboratorRoleMember))

			Expect(txNotifs.created).To(HaveLen(1))
			Expect(txNotifs.created[0].UserID).To(Equal(applicantID))
			Expect(txNotifs.created[0].Body).To(Equal("Your application to Widgets was accepted"))
		})

		It("denying notifies without adding a collaborator", func() {
			decided, err := svc.Decide(ctx, appID, ownerID, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(model.ApplicationStatusDenied))
			Expect(txCollab.addedCollab).To(BeNil())
			Expect(txNotifs.created[0].Body).To(Equal("Your application to Widgets was denied"))
		})

		It("only the project owner may decide", func() {
			_, err := svc.Decide(ctx, appID, applicantID, true)
			Expect(err).To(MatchError(service.ErrNotProjectOwner))
		})

		It("rejects deciding twice", func() {
			apps.getByIDFn = func(_ context.Context, _ int64) (*model.Application, error) {
				app := pending()
				app.Status = model.ApplicationStatusAccepted
				return app, nil
			}
			_, err := svc.Decide(ctx, appID, ownerID, true)
			Expect(err).To(MatchError(service.ErrAlreadyDecided))
		})

		It("maps a lost status-update race to ErrAlreadyDecided", func() {
			txApps.updateStatusFn = func(_ context.Context, _ int64, _ model.ApplicationStatus) (*model.Application, error) {
				return nil, store.ErrNotFound
			}
			_, err := svc.Decide(ctx, appID, ownerID, true)
			Expect(err).To(MatchError(service.ErrAlreadyDecided))
		})
	})

	Describe("Withdraw", func() {
		BeforeEach(func() {
			apps.getByIDFn = func(_ context.Context, _ int64) (*model.Application, error) {
				return &model.Application{
					ID:          appID,
					ProjectID:   projectID,
					ApplicantID: applicantID,
					Status:      model.ApplicationStatusPending,
				}, nil
			}
			apps.updateStatusFn = func(_ context.Context, _ int64, status model.ApplicationStatus) (*model.Application, error) {
				return &model.Application{ID: appID, Status: status}, nil
			}
		})

		It("lets the applicant withdraw a pending application", func() {
			app, err := svc.Withdraw(ctx, appID, applicantID)
			Expect(err).NotTo(HaveOccurred())
			Expect(app.Status).To(Equal(model.ApplicationStatusWithdrawn))
		})

		It("rejects withdrawal by anyone else", func() {
			_, err := svc.Withdraw(ctx, appID, ownerID)
			Expect(err).To(MatchError(service.ErrNotApplicant))
		})
	})
})
