package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/dto"
	"projecthub.app/server/internal/http/middleware"
	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Create(ctx, user.ID, service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Slug:        req.Slug,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create project", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) GetBySlug(c *gin.Context) {
	project, err := h.projectService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to get project", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	projects, err := h.projectService.List(c.Request.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectResponses(projects)})
}

func (h *ProjectHandler) ListMine(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	projects, err := h.projectService.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list projects", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectResponses(projects)})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Update(ctx, projectID, user.ID, service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		respondProjectError(c, err, "failed to update project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), projectID, user.ID); err != nil {
		respondProjectError(c, err, "failed to delete project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

func (h *ProjectHandler) LinkRepo(c *gin.Context) {
	ctx := c.Request.Context()

	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	var req dto.LinkRepoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.projectService.LinkRepo(ctx, projectID, user.ID, req.Owner, req.Name, req.AccessToken)
	if err != nil {
		respondProjectError(c, err, "failed to link repository")
		return
	}

	c.JSON(http.StatusOK, dto.ToRepoLinkResponse(link))
}

func (h *ProjectHandler) UnlinkRepo(c *gin.Context) {
	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	if err := h.projectService.UnlinkRepo(c.Request.Context(), projectID, user.ID); err != nil {
		respondProjectError(c, err, "failed to unlink repository")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "repository unlinked"})
}

// userAndProjectID pulls the authenticated user and the :projectID param,
// writing the error response itself when either is missing.
func userAndProjectID(c *gin.Context) (user *model.User, projectID int64, ok bool) {
	user, authed := middleware.CurrentUser(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, 0, false
	}

	projectID, err := strconv.ParseInt(c.Param("projectID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return nil, 0, false
	}

	return user, projectID, true
}

func respondProjectError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, service.ErrNotProjectOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the project owner may do this"})
	case errors.Is(err, service.ErrProjectNotLinked):
		c.JSON(http.StatusNotFound, gin.H{"error": "no repository linked"})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func pagination(c *gin.Context) (limit, offset int32) {
	limit = defaultPageSize
	if v, err := strconv.ParseInt(c.DefaultQuery("limit", ""), 10, 32); err == nil && v > 0 {
		if v > maxPageSize {
			v = maxPageSize
		}
		limit = int32(v)
	}
	if v, err := strconv.ParseInt(c.DefaultQuery("offset", ""), 10, 32); err == nil && v >= 0 {
		offset = int32(v)
	}
	return limit, offset
}
