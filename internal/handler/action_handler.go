package handler

import (
	"errors"
	"net/http"

	"merit/internal/middleware"
	"merit/internal/repository"
	"merit/internal/service"

	"github.com/gin-gonic/gin"
)

type ActionHandler struct {
	submissions *service.SubmissionService
	actionRepo  *repository.ActionRepository
}

func NewActionHandler(submissions *service.SubmissionService, actionRepo *repository.ActionRepository) *ActionHandler {
	return &ActionHandler{submissions: submissions, actionRepo: actionRepo}
}

type SubmitActionRequest struct {
	ActionType        string `json:"action_type" binding:"required"`
	Content           string `json:"content"`
	TargetID          string `json:"target_id"`
	DeviceFingerprint string `json:"device_fingerprint"`
	IdempotencyKey    string `json:"idempotency_key"`
}

// Submit runs one action through the reward pipeline. Rejections come back
// as 200 with rewarded=false and a reason; only input and infrastructure
// failures are HTTP errors.
func (h *ActionHandler) Submit(c *gin.Context) {
	actorID := middleware.ActorID(c)
	var req SubmitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.submissions.Submit(c.Request.Context(), service.SubmitRequest{
		ActorID:           actorID,
		ActionType:        req.ActionType,
		Content:           req.Content,
		TargetID:          req.TargetID,
		DeviceFingerprint: req.DeviceFingerprint,
		ClientIP:          c.ClientIP(),
		IdempotencyKey:    req.IdempotencyKey,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownActionType) || errors.Is(err, service.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed, safe to retry with the same idempotency_key"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns the caller's recent actions (audit view).
func (h *ActionHandler) List(c *gin.Context) {
	actorID := middleware.ActorID(c)
	list, err := h.actionRepo.ListByActor(actorID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load actions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": list})
}

// Get returns one action by its public id, owner-only.
func (h *ActionHandler) Get(c *gin.Context) {
	actorID := middleware.ActorID(c)
	a, err := h.actionRepo.GetByUID(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "action not found"})
		return
	}
	if a.ActorID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, a)
}
