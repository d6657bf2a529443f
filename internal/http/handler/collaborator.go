package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/dto"
	"projecthub.app/server/internal/service"
)

type CollaboratorHandler struct {
	collabService service.CollaboratorService
}

func NewCollaboratorHandler(collabService service.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{collabService: collabService}
}

func (h *CollaboratorHandler) List(c *gin.Context) {
	_, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	collabs, err := h.collabService.List(c.Request.Context(), projectID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list collaborators", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list collaborators"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collaborators": dto.ToCollaboratorResponses(collabs)})
}

func (h *CollaboratorHandler) Remove(c *gin.Context) {
	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.collabService.Remove(c.Request.Context(), projectID, targetID, user.ID); err != nil {
		respondCollaboratorError(c, err, "failed to remove collaborator")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "collaborator removed"})
}

func (h *CollaboratorHandler) Leave(c *gin.Context) {
	user, projectID, ok := userAndProjectID(c)
	if !ok {
		return
	}

	if err := h.collabService.Leave(c.Request.Context(), projectID, user.ID); err != nil {
		respondCollaboratorError(c, err, "failed to leave project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left project"})
}

func respondCollaboratorError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, service.ErrNotProjectOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the project owner may do this"})
	case errors.Is(err, service.ErrNotCollaborator):
		c.JSON(http.StatusNotFound, gin.H{"error": "not a collaborator"})
	case errors.Is(err, service.ErrCannotRemoveOwner):
		c.JSON(http.StatusConflict, gin.H{"error": "the project owner cannot be removed"})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
