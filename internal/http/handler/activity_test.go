package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	gh "github.com/google/go-github/v68/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/internal/http/handler"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/queue"
	"projecthub.app/server/internal/service"
	"projecthub.app/server/internal/service/github"
)

type noopProducer struct{}

func (noopProducer) Enqueue(ctx context.Context, msg queue.ActivityMessage) error { return nil }
func (noopProducer) Close() error                                                 { return nil }

type stubRepoReader struct {
	commits []*gh.RepositoryCommit
	err     error
}

func (s *stubRepoReader) ListCommits(ctx context.Context, owner, repo string, perPage int) ([]*gh.RepositoryCommit, error) {
	return s.commits, s.err
}

func (s *stubRepoReader) ListIssues(ctx context.Context, owner, repo string, perPage int) ([]*gh.Issue, error) {
	return nil, s.err
}

func (s *stubRepoReader) ListPullRequests(ctx context.Context, owner, repo string, perPage int) ([]*gh.PullRequest, error) {
	return nil, s.err
}

func (s *stubRepoReader) ListEvents(ctx context.Context, owner, repo string, perPage int) ([]*gh.Event, error) {
	return nil, s.err
}

var _ = Describe("ActivityHandler", func() {
	const (
		projectID = int64(42)
		ownerID   = int64(1)
		memberID  = int64(2)
		otherID   = int64(3)
	)

	var (
		router   *gin.Engine
		projects *mockProjectService
		collabs  *mockCollaboratorService
		activity *fakeActivityStore
		reader   *stubRepoReader
		user     *model.User
	)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(asUser(user))

		ingest := service.NewActivityIngestService(&fakeRepoLinkStore{}, activity, noopProducer{})
		feed := service.NewActivityFeedService(func(ctx context.Context, token string) github.RepoReader {
			return reader
		})
		h := handler.NewActivityHandler(projects, collabs, ingest, feed)
		r.GET("/projects/:projectID/activity", h.History)
		r.GET("/projects/:projectID/activity/feed", h.Feed)
		return r
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		user = &model.User{ID: memberID}
		projects = &mockProjectService{
			getFn: func(_ context.Context, pid int64) (*model.Project, error) {
				if pid != projectID {
					return nil, service.ErrProjectNotFound
				}
				return &model.Project{ID: projectID, OwnerID: ownerID}, nil
			},
		}
		collabs = &mockCollaboratorService{
			isMemberFn: func(_ context.Context, _, uid int64) (bool, error) {
				return uid == memberID, nil
			},
		}
		activity = &fakeActivityStore{}
		reader = &stubRepoReader{}
		router = newRouter()
	})

	Describe("History", func() {
		It("returns records for a collaborator", func() {
			activity.listByProjectFn = func(_ context.Context, pid int64, limit, offset int32) ([]model.ActivityRecord, error) {
				Expect(pid).To(Equal(projectID))
				return []model.ActivityRecord{{ID: 1, ProjectID: projectID, Summary: "2 commits pushed to main"}}, nil
			}

			w := get("/projects/42/activity")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Activity []map[string]any `json:"activity"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Activity).To(HaveLen(1))
			Expect(resp.Activity[0]["summary"]).To(Equal("2 commits pushed to main"))
		})

		It("returns 404 for non-members", func() {
			user.ID = otherID
			router = newRouter()
			Expect(get("/projects/42/activity").Code).To(Equal(http.StatusNotFound))
		})

		It("returns 404 for missing projects", func() {
			Expect(get("/projects/999/activity").Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a malformed project id", func() {
			Expect(get("/projects/abc/activity").Code).To(Equal(http.StatusBadRequest))
		})

		It("lets the owner through without a membership row", func() {
			user.ID = ownerID
			collabs.isMemberFn = func(_ context.Context, _, _ int64) (bool, error) {
				return false, nil
			}
			router = newRouter()
			Expect(get("/projects/42/activity").Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Feed", func() {
		It("returns 404 when no repository is linked", func() {
			w := get("/projects/42/activity/feed")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		Context("with a linked repository", func() {
			BeforeEach(func() {
				projects.getRepoLinkFn = func(_ context.Context, _ int64) (*model.RepoLink, error) {
					return &model.RepoLink{ProjectID: projectID, Owner: "acme", Name: "widgets", AccessToken: "tok"}, nil
				}
				router = newRouter()
			})

			It("aggregates upstream activity", func() {
				sha := "abc123"
				msg := "fix the thing"
				login := "alice"
				now := time.Now().UTC()
				reader.commits = []*gh.RepositoryCommit{{
					SHA: &sha,
					Commit: &gh.Commit{
						Message: &msg,
						Author:  &gh.CommitAuthor{Name: &login, Date: &gh.Timestamp{Time: now}},
					},
				}}

				w := get("/projects/42/activity/feed")

				Expect(w.Code).To(Equal(http.StatusOK))
				var resp struct {
					Feed []map[string]any `json:"feed"`
				}
				Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
				Expect(resp.Feed).To(HaveLen(1))
				Expect(resp.Feed[0]["id"]).To(Equal("commit-abc123"))
			})

			It("returns 502 when the upstream API fails", func() {
				reader.err = errors.New("rate limited")
				Expect(get("/projects/42/activity/feed").Code).To(Equal(http.StatusBadGateway))
			})

			It("still gates non-members", func() {
				user.ID = otherID
				router = newRouter()
				Expect(get("/projects/42/activity/feed").Code).To(Equal(http.StatusNotFound))
			})
		})
	})
})
