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

var _ = Describe("ProjectService", func() {
	const ownerID = int64(1)

	var (
		ctx       context.Context
		projects  *mockProjectStore
		repoLinks *mockRepoLinkStore
		collabs   *mockCollaboratorStore
		txProj    *mockProjectStore
		txCollab  *mockCollaboratorStore
		svc       service.ProjectService
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		projects = &mockProjectStore{}
		repoLinks = &mockRepoLinkStore{}
		collabs = &mockCollaboratorStore{}
		txProj = &mockProjectStore{}
		txCollab = &mockCollaboratorStore{}

		txRunner := &mockTxRunner{
			withTxFn: func(ctx context.Context, fn func(stores service.StoreProvider) error) error {
				return fn(&mockStoreProvider{
					projects:      txProj,
					collaborators: txCollab,
				})
			},
		}

		svc = service.NewProjectService(projects, repoLinks, collabs, txRunner)
	})

	Describe("Create", func() {
		It("slugifies the name and adds the owner as a collaborator", func() {
			project, err := svc.Create(ctx, ownerID, service.CreateProjectInput{
				Name: "My Cool Project",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(project.Slug).To(Equal("my-cool-project"))
			Expect(project.OwnerID).To(Equal(ownerID))

			Expect(txProj.createdProject).To(Equal(project))
			Expect(txCollab.addedCollab).NotTo(BeNil())
			Expect(txCollab.addedCollab.UserID).To(Equal(ownerID))
			Expect(txCollab.addedCollab.Role).To(Equal(model.CollaboratorRoleOwner))
			Expect(txCollab.addedCollab.ProjectID).To(Equal(project.ID))
		})

		It("prefers an explicit slug over the name", func() {
			slug := "shortname"
			project, err := svc.Create(ctx, ownerID, service.CreateProjectInput{
				Name: "A Much Longer Project Name",
				Slug: &slug,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(project.Slug).To(Equal("shortname"))
		})

		It("suffixes the slug when the base is taken", func() {
			taken := map[string]bool{"my-cool-project": true, "my-cool-project-1": true}
			projects.getBySlugFn = func(_ context.Context, slug string) (*model.Project, error) {
				if taken[slug] {
					return &model.Project{Slug: slug}, nil
				}
				return nil, store.ErrNotFound
			}

			project, err := svc.Create(ctx, ownerID, service.CreateProjectInput{
				Name: "My Cool Project",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(project.Slug).To(Equal("my-cool-project-2"))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			projects.getByIDFn = func(_ context.Context, pid int64) (*model.Project, error) {
				return &model.Project{ID: pid, OwnerID: ownerID}, nil
			}
		})

		It("allows the owner", func() {
			Expect(svc.Delete(ctx, 10, ownerID)).To(Succeed())
		})

		It("rejects non-owners", func() {
			Expect(svc.Delete(ctx, 10, int64(99))).To(MatchError(service.ErrNotProjectOwner))
		})
	})

	Describe("LinkRepo", func() {
		BeforeEach(func() {
			projects.getByIDFn = func(_ context.Context, pid int64) (*model.Project, error) {
				return &model.Project{ID: pid, OwnerID: ownerID}, nil
			}
		})

		It("stores the link with the access token", func() {
			link, err := svc.LinkRepo(ctx, 10, ownerID, "acme", "widgets", "gho_token")

			Expect(err).NotTo(HaveOccurred())
			Expect(link.FullName()).To(Equal("acme/widgets"))
			Expect(repoLinks.upsertedLink).NotTo(BeNil())
			Expect(repoLinks.upsertedLink.AccessToken).To(Equal("gho_token"))
		})

		It("is restricted to the owner", func() {
			_, err := svc.LinkRepo(ctx, 10, int64(99), "acme", "widgets", "gho_token")
			Expect(err).To(MatchError(service.ErrNotProjectOwner))
			Expect(repoLinks.upsertedLink).To(BeNil())
		})
	})

	Describe("GetRepoLink", func() {
		It("maps a missing link to ErrProjectNotLinked", func() {
			_, err := svc.GetRepoLink(ctx, 10)
			Expect(err).To(MatchError(service.ErrProjectNotLinked))
		})
	})
})
