package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/dto"
	"projecthub.app/server/internal/service"
	"projecthub.app/server/internal/sse"
)

const defaultHistoryLimit = 50

type StreamHandler struct {
	projectService service.ProjectService
	collabService  service.CollaboratorService
	ingestService  *service.ActivityIngestService
	watchService   *service.RepoWatchService
	registry       *sse.Registry
	pollInterval   time.Duration
	historyLimit   int32
}

func NewStreamHandler(
	projectService service.ProjectService,
	collabService service.CollaboratorService,
	ingestService *service.ActivityIngestService,
	watchService *service.RepoWatchService,
	registry *sse.Registry,
	pollInterval time.Duration,
	historyLimit int32,
) *StreamHandler {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &StreamHandler{
		projectService: projectService,
		collabService:  collabService,
		ingestService:  ingestService,
		watchService:   watchService,
		registry:       registry,
		pollInterval:   pollInterval,
		historyLimit:   historyLimit,
	}
}

// Stream registers the client with the fan-out registry and holds the
// connection open until the client goes away. The registry owns all writes
// after the initial frames.
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}
	if !requireProjectMember(c, h.projectService, h.collabService, projectID, user.ID) {
		return
	}

	records, err := h.ingestService.History(ctx, projectID, h.historyLimit, 0)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load activity history", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activity"})
		return
	}

	setSSEHeaders(c.Writer)
	if _, ok := c.Writer.(http.Flusher); !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	connID := h.registry.Add(projectID, user.ID, c.Writer)
	defer h.registry.Remove(projectID, connID)

	if err := h.registry.Send(projectID, connID, "connected", gin.H{
		"project_id": fmt.Sprintf("%d", projectID),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return
	}
	if err := h.registry.Send(projectID, connID, "history", dto.ToActivityRecordResponses(records)); err != nil {
		return
	}

	slog.InfoContext(ctx, "event stream opened",
		"project_id", projectID,
		"connection_id", connID,
		"user_id", user.ID)

	<-ctx.Done()

	slog.InfoContext(ctx, "event stream closed",
		"project_id", projectID,
		"connection_id", connID)
}

// Watch polls the linked repository and emits a change event whenever
// something moved past the watermark. Self-contained per connection; does
// not touch the registry.
func (h *StreamHandler) Watch(c *gin.Context) {
	ctx := c.Request.Context()

	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}
	if !requireProjectMember(c, h.projectService, h.collabService, projectID, user.ID) {
		return
	}

	link, err := h.projectService.GetRepoLink(ctx, projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotLinked) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no repository linked"})
			return
		}
		slog.ErrorContext(ctx, "failed to load repo link", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load repository link"})
		return
	}

	setSSEHeaders(c.Writer)
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	sseWrite(c.Writer, "watching", gin.H{"repo": link.FullName()})
	flusher.Flush()

	watermark := time.Now()
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	// Immediate first pass, then on every tick.
	for {
		changed, kind, next, err := h.watchService.HasChangedSince(ctx, link.Owner, link.Name, link.AccessToken, watermark)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.WarnContext(ctx, "watch poll failed, closing stream",
				"error", err, "repo", link.FullName())
			sseWrite(c.Writer, "error", gin.H{"error": "upstream fetch failed"})
			flusher.Flush()
			return
		}
		if changed {
			watermark = next
			sseWrite(c.Writer, "change", gin.H{
				"kind":      kind,
				"timestamp": next.UTC().Format(time.RFC3339),
			})
			flusher.Flush()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

func sseWrite(w http.ResponseWriter, event string, data any) {
	payload := marshalPayload(data)
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

func marshalPayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		bytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(bytes)
	}
}
