package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/internal/http/handler/webhook"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/service"
)

type fakeIngestor struct {
	ingestFn func(ctx context.Context, in service.IngestInput) (*model.ActivityRecord, bool, error)
	lastIn   *service.IngestInput
}

func (f *fakeIngestor) Ingest(ctx context.Context, in service.IngestInput) (*model.ActivityRecord, bool, error) {
	f.lastIn = &in
	if f.ingestFn != nil {
		return f.ingestFn(ctx, in)
	}
	return &model.ActivityRecord{ID: 1, ProjectID: 42}, true, nil
}

const webhookSecret = "test-secret"

func pushBody() []byte {
	return []byte(`{
		"ref": "refs/heads/main",
		"compare": "https://github.com/acme/widgets/compare/abc...def",
		"commits": [{}, {}, {}],
		"repository": {"name": "widgets", "owner": {"login": "acme"}},
		"sender": {"login": "octocat", "avatar_url": "https://avatars.test/octocat"}
	}`)
}

func postWebhook(router *gin.Engine, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signedHeaders(body []byte, event, delivery string) map[string]string {
	return map[string]string{
		"X-Hub-Signature-256": sign(body, webhookSecret),
		"X-GitHub-Event":      event,
		"X-GitHub-Delivery":   delivery,
	}
}

func responseStatus(w *httptest.ResponseRecorder) string {
	var resp map[string]string
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp["status"]
}

var _ = Describe("GitHubWebhookHandler", func() {
	var (
		router *gin.Engine
		ingest *fakeIngestor
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		ingest = &fakeIngestor{}
		h := webhook.NewGitHubWebhookHandler(ingest, webhookSecret)
		router.POST("/webhooks/github", h.HandleEvent)
	})

	Describe("signature verification", func() {
		It("rejects an unsigned request", func() {
			w := postWebhook(router, pushBody(), map[string]string{
				"X-GitHub-Event":    "push",
				"X-GitHub-Delivery": "d-1",
			})
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(ingest.lastIn).To(BeNil())
		})

		It("rejects a signature made with the wrong secret", func() {
			body := pushBody()
			headers := signedHeaders(body, "push", "d-1")
			headers["X-Hub-Signature-256"] = sign(body, "wrong-secret")
			w := postWebhook(router, body, headers)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a tampered body", func() {
			headers := signedHeaders(pushBody(), "push", "d-1")
			w := postWebhook(router, []byte(`{"ref":"refs/heads/evil"}`), headers)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("header validation", func() {
		It("requires the event header", func() {
			body := pushBody()
			headers := signedHeaders(body, "push", "d-1")
			delete(headers, "X-GitHub-Event")
			w := postWebhook(router, body, headers)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("requires the delivery header", func() {
			body := pushBody()
			headers := signedHeaders(body, "push", "d-1")
			delete(headers, "X-GitHub-Delivery")
			w := postWebhook(router, body, headers)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	It("acknowledges unhandled event kinds without ingesting", func() {
		body := []byte(`{"zen":"Keep it logically awesome."}`)
		w := postWebhook(router, body, signedHeaders(body, "ping", "d-ping"))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(responseStatus(w)).To(Equal("unhandled"))
		Expect(ingest.lastIn).To(BeNil())
	})

	It("rejects a payload missing repository identity", func() {
		body := []byte(`{"ref":"refs/heads/main","repository":{"name":"","owner":{"login":""}}}`)
		w := postWebhook(router, body, signedHeaders(body, "push", "d-2"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a body that is not JSON", func() {
		body := []byte(`not json`)
		w := postWebhook(router, body, signedHeaders(body, "push", "d-3"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Describe("push events", func() {
		It("normalizes and ingests the delivery", func() {
			body := pushBody()
			w := postWebhook(router, body, signedHeaders(body, "push", "d-4"))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(responseStatus(w)).To(Equal("ok"))

			Expect(ingest.lastIn).NotTo(BeNil())
			in := *ingest.lastIn
			Expect(in.DeliveryID).To(Equal("d-4"))
			Expect(in.EventKind).To(Equal(model.EventKindPush))
			Expect(in.RepoOwner).To(Equal("acme"))
			Expect(in.RepoName).To(Equal("widgets"))
			Expect(in.ActorUsername).To(Equal("octocat"))
			Expect(in.Summary).To(Equal("3 commits pushed to main"))
			Expect(in.TargetURL).To(ContainSubstring("/compare/"))
		})

		It("uses the singular noun for one commit", func() {
			body := []byte(`{
				"ref": "refs/heads/main",
				"commits": [{}],
				"repository": {"name": "widgets", "owner": {"login": "acme"}},
				"sender": {"login": "octocat"}
			}`)
			w := postWebhook(router, body, signedHeaders(body, "push", "d-5"))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(ingest.lastIn.Summary).To(Equal("1 commit pushed to main"))
		})
	})

	Describe("issues events", func() {
		It("carries the action and issue reference", func() {
			body := []byte(`{
				"action": "opened",
				"issue": {"number": 7, "title": "Bug", "html_url": "https://github.com/acme/widgets/issues/7"},
				"repository": {"name": "widgets", "owner": {"login": "acme"}},
				"sender": {"login": "octocat"}
			}`)
			w := postWebhook(router, body, signedHeaders(body, "issues", "d-6"))

			Expect(w.Code).To(Equal(http.StatusOK))
			in := *ingest.lastIn
			Expect(in.EventKind).To(Equal(model.EventKindIssues))
			Expect(in.Action).NotTo(BeNil())
			Expect(*in.Action).To(Equal("opened"))
			Expect(in.Summary).To(Equal("Issue #7: Bug"))
			Expect(in.TargetURL).To(HaveSuffix("/issues/7"))
		})
	})

	Describe("pull_request events", func() {
		It("carries the action and PR reference", func() {
			body := []byte(`{
				"action": "closed",
				"number": 12,
				"pull_request": {"title": "Add feature", "html_url": "https://github.com/acme/widgets/pull/12"},
				"repository": {"name": "widgets", "owner": {"login": "acme"}},
				"sender": {"login": "octocat"}
			}`)
			w := postWebhook(router, body, signedHeaders(body, "pull_request", "d-7"))

			Expect(w.Code).To(Equal(http.StatusOK))
			in := *ingest.lastIn
			Expect(in.EventKind).To(Equal(model.EventKindPullRequest))
			Expect(*in.Action).To(Equal("closed"))
			Expect(in.Summary).To(Equal("PR #12: Add feature"))
		})
	})

	Describe("ingest outcomes", func() {
		It("reports duplicate deliveries", func() {
			ingest.ingestFn = func(_ context.Context, _ service.IngestInput) (*model.ActivityRecord, bool, error) {
				return &model.ActivityRecord{ID: 1, ProjectID: 42}, false, nil
			}
			body := pushBody()
			w := postWebhook(router, body, signedHeaders(body, "push", "d-8"))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(responseStatus(w)).To(Equal("duplicate"))
		})

		It("acknowledges events for unlinked repositories", func() {
			ingest.ingestFn = func(_ context.Context, _ service.IngestInput) (*model.ActivityRecord, bool, error) {
				return nil, false, service.ErrProjectNotLinked
			}
			body := pushBody()
			w := postWebhook(router, body, signedHeaders(body, "push", "d-9"))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(responseStatus(w)).To(Equal("ignored"))
		})

		It("returns 500 on other ingest failures", func() {
			ingest.ingestFn = func(_ context.Context, _ service.IngestInput) (*model.ActivityRecord, bool, error) {
				return nil, false, errors.New("database down")
			}
			body := pushBody()
			w := postWebhook(router, body, signedHeaders(body, "push", "d-10"))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
