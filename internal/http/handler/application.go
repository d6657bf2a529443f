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

type ApplicationHandler struct {
	appService service.ApplicationService
}

func NewApplicationHandler(appService service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	ctx := c.Request.Context()

	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appService.Apply(ctx, projectID, user.ID, req.Message)
	if err != nil {
		respondApplicationError(c, err, "failed to submit application")
		return
	}

	c.JSON(http.StatusCreated, dto.ToApplicationResponse(app))
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	user, appID, ok := userAndApplicationID(c)
	if !ok {
		return
	}

	app, err := h.appService.Withdraw(c.Request.Context(), appID, user.ID)
	if err != nil {
		respondApplicationError(c, err, "failed to withdraw application")
		return
	}

	c.JSON(http.StatusOK, dto.ToApplicationResponse(app))
}

func (h *ApplicationHandler) Decide(c *gin.Context) {
	ctx := c.Request.Context()

	user, appID, ok := userAndApplicationID(c)
	if !ok {
		return
	}

	var req dto.DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appService.Decide(ctx, appID, user.ID, req.Accept)
	if err != nil {
		respondApplicationError(c, err, "failed to decide application")
		return
	}

	c.JSON(http.StatusOK, dto.ToApplicationResponse(app))
}

func (h *ApplicationHandler) ListByProject(c *gin.Context) {
	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	apps, err := h.appService.ListByProject(c.Request.Context(), projectID, user.ID)
	if err != nil {
		respondApplicationError(c, err, "failed to list applications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": dto.ToApplicationResponses(apps)})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	apps, err := h.appService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list applications", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": dto.ToApplicationResponses(apps)})
}

func userAndApplicationID(c *gin.Context) (user *model.User, appID int64, ok bool) {
	user, authed := middleware.CurrentUser(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, 0, false
	}

	appID, err := strconv.ParseInt(c.Param("applicationID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return nil, 0, false
	}

	return user, appID, true
}

func respondApplicationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, service.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case errors.Is(err, service.ErrNotProjectOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the project owner may do this"})
	case errors.Is(err, service.ErrNotApplicant):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the applicant may withdraw"})
	case errors.Is(err, service.ErrOwnProject):
		c.JSON(http.StatusConflict, gin.H{"error": "cannot apply to your own project"})
	case errors.Is(err, service.ErrAlreadyApplied):
		c.JSON(http.StatusConflict, gin.H{"error": "a pending application already exists"})
	case errors.Is(err, service.ErrAlreadyCollaborator):
		c.JSON(http.StatusConflict, gin.H{"error": "already a collaborator"})
	case errors.Is(err, service.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": "application has already been decided"})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
