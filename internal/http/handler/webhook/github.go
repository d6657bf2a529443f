package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"projecthub.app/server/common/logger"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/service"
)

// Ingestor is the slice of the activity ingest service the handler needs.
type Ingestor interface {
	Ingest(ctx context.Context, in service.IngestInput) (*model.ActivityRecord, bool, error)
}

type GitHubWebhookHandler struct {
	ingest        Ingestor
	webhookSecret string
}

func NewGitHubWebhookHandler(ingest Ingestor, webhookSecret string) *GitHubWebhookHandler {
	return &GitHubWebhookHandler{
		ingest:        ingest,
		webhookSecret: webhookSecret,
	}
}

func (h *GitHubWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	// Verify over the untouched bytes before anything else happens.
	if !VerifySignature(body, c.GetHeader("X-Hub-Signature-256"), h.webhookSecret) {
		slog.WarnContext(ctx, "webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	eventName := c.GetHeader("X-GitHub-Event")
	deliveryID := c.GetHeader("X-GitHub-Delivery")
	if eventName == "" || deliveryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event headers"})
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DeliveryID: &deliveryID,
		EventKind:  &eventName,
		Component:  "webhook",
	})

	kind := model.EventKind(eventName)
	if !kind.Valid() {
		slog.InfoContext(ctx, "unhandled webhook event kind")
		c.JSON(http.StatusOK, gin.H{"status": "unhandled"})
		return
	}

	input, err := buildIngestInput(kind, deliveryID, body)
	if err != nil {
		slog.WarnContext(ctx, "invalid webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	record, created, err := h.ingest.Ingest(ctx, input)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotLinked) {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		slog.ErrorContext(ctx, "failed to process webhook event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	slog.InfoContext(ctx, "webhook event recorded",
		"activity_id", record.ID,
		"project_id", record.ProjectID,
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type repository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sender struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type pushPayload struct {
	Ref        string     `json:"ref"`
	CompareURL string     `json:"compare"`
	Commits    []struct{} `json:"commits"`
	Repository repository `json:"repository"`
	Sender     sender     `json:"sender"`
}

type issuesPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"issue"`
	Repository repository `json:"repository"`
	Sender     sender     `json:"sender"`
}

type pullRequestPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
	Repository repository `json:"repository"`
	Sender     sender     `json:"sender"`
}

func buildIngestInput(kind model.EventKind, deliveryID string, body []byte) (service.IngestInput, error) {
	switch kind {
	case model.EventKindPush:
		var p pushPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return service.IngestInput{}, fmt.Errorf("parsing push payload: %w", err)
		}
		if err := validateRepo(p.Repository); err != nil {
			return service.IngestInput{}, err
		}
		branch := strings.TrimPrefix(p.Ref, "refs/heads/")
		noun := "commits"
		if len(p.Commits) == 1 {
			noun = "commit"
		}
		return service.IngestInput{
			DeliveryID:     deliveryID,
			EventKind:      kind,
			RepoOwner:      p.Repository.Owner.Login,
			RepoName:       p.Repository.Name,
			ActorUsername:  p.Sender.Login,
			ActorAvatarURL: p.Sender.AvatarURL,
			Summary:        fmt.Sprintf("%d %s pushed to %s", len(p.Commits), noun, branch),
			TargetURL:      p.CompareURL,
			OccurredAt:     occurredAt(p.Repository),
		}, nil

	case model.EventKindIssues:
		var p issuesPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return service.IngestInput{}, fmt.Errorf("parsing issues payload: %w", err)
		}
		if err := validateRepo(p.Repository); err != nil {
			return service.IngestInput{}, err
		}
		action := p.Action
		return service.IngestInput{
			DeliveryID:     deliveryID,
			EventKind:      kind,
			Action:         &action,
			RepoOwner:      p.Repository.Owner.Login,
			RepoName:       p.Repository.Name,
			ActorUsername:  p.Sender.Login,
			ActorAvatarURL: p.Sender.AvatarURL,
			Summary:        fmt.Sprintf("Issue #%d: %s", p.Issue.Number, p.Issue.Title),
			TargetURL:      p.Issue.HTMLURL,
			OccurredAt:     occurredAt(p.Repository),
		}, nil

	case model.EventKindPullRequest:
		var p pullRequestPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return service.IngestInput{}, fmt.Errorf("parsing pull_request payload: %w", err)
		}
		if err := validateRepo(p.Repository); err != nil {
			return service.IngestInput{}, err
		}
		action := p.Action
		return service.IngestInput{
			DeliveryID:     deliveryID,
			EventKind:      kind,
			Action:         &action,
			RepoOwner:      p.Repository.Owner.Login,
			RepoName:       p.Repository.Name,
			ActorUsername:  p.Sender.Login,
			ActorAvatarURL: p.Sender.AvatarURL,
			Summary:        fmt.Sprintf("PR #%d: %s", p.Number, p.PullRequest.Title),
			TargetURL:      p.PullRequest.HTMLURL,
			OccurredAt:     occurredAt(p.Repository),
		}, nil
	}

	return service.IngestInput{}, fmt.Errorf("unsupported event kind %q", kind)
}

func validateRepo(r repository) error {
	if r.Name == "" || r.Owner.Login == "" {
		return fmt.Errorf("payload missing repository owner or name")
	}
	return nil
}

func occurredAt(r repository) time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return time.Now().UTC()
}
