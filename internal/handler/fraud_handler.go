package handler

import (
	"net/http"
	"strconv"
	"time"

	"merit/internal/middleware"
	"merit/internal/repository"

	"github.com/gin-gonic/gin"
)

type FraudHandler struct {
	fraudRepo *repository.FraudRepository
	userRepo  *repository.UserRepository
}

func NewFraudHandler(fraudRepo *repository.FraudRepository, userRepo *repository.UserRepository) *FraudHandler {
	return &FraudHandler{fraudRepo: fraudRepo, userRepo: userRepo}
}

func (h *FraudHandler) ListSignals(c *gin.Context) {
	list, err := h.fraudRepo.ListUnresolved(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load signals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": list})
}

func (h *FraudHandler) ResolveSignal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signal id"})
		return
	}
	adminID := middleware.ActorID(c)
	if err := h.fraudRepo.Resolve(uint(id), adminID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve signal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": id})
}

type SuspendRequest struct {
	Reason string `json:"reason" binding:"required"`
	Days   int    `json:"days"` // 0 = indefinite
}

func (h *FraudHandler) Suspend(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var expiresAt *time.Time
	if req.Days > 0 {
		t := time.Now().AddDate(0, 0, req.Days)
		expiresAt = &t
	}
	if err := h.userRepo.Suspend(uint(id), req.Reason, expiresAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to suspend"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suspended": id})
}

func (h *FraudHandler) Unsuspend(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.userRepo.LiftSuspension(uint(id), time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to lift suspension"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unsuspended": id})
}
