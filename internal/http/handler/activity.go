package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/dto"
	"projecthub.app/server/internal/service"
)

type ActivityHandler struct {
	projectService service.ProjectService
	collabService  service.CollaboratorService
	ingestService  *service.ActivityIngestService
	feedService    *service.ActivityFeedService
}

func NewActivityHandler(
	projectService service.ProjectService,
	collabService service.CollaboratorService,
	ingestService *service.ActivityIngestService,
	feedService *service.ActivityFeedService,
) *ActivityHandler {
	return &ActivityHandler{
		projectService: projectService,
		collabService:  collabService,
		ingestService:  ingestService,
		feedService:    feedService,
	}
}

// History returns the persisted activity records for a project, newest
// first.
func (h *ActivityHandler) History(c *gin.Context) {
	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}
	if !h.requireMember(c, projectID, user.ID) {
		return
	}

	limit, offset := pagination(c)
	records, err := h.ingestService.History(c.Request.Context(), projectID, limit, offset)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to load activity history", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": dto.ToActivityRecordResponses(records)})
}

// Feed aggregates live repository activity from the GitHub API.
func (h *ActivityHandler) Feed(c *gin.Context) {
	ctx := c.Request.Context()

	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}
	if !h.requireMember(c, projectID, user.ID) {
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

	feed, err := h.feedService.Aggregate(ctx, link.Owner, link.Name, link.AccessToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to aggregate activity", "error", err, "repo", link.FullName())
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch repository activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feed": feed})
}

func (h *ActivityHandler) requireMember(c *gin.Context, projectID, userID int64) bool {
	return requireProjectMember(c, h.projectService, h.collabService, projectID, userID)
}

// requireProjectMember answers 404 for both missing projects and
// non-members, so the response does not disclose which one it was.
func requireProjectMember(c *gin.Context, projects service.ProjectService, collabs service.CollaboratorService, projectID, userID int64) bool {
	ctx := c.Request.Context()

	project, err := projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return false
		}
		slog.ErrorContext(ctx, "failed to load project", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return false
	}

	if project.OwnerID == userID {
		return true
	}

	member, err := collabs.IsMember(ctx, projectID, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check membership", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return false
	}
	if !member {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return false
	}
	return true
}
