package handler

import (
	"errors"
	"net/http"

	"merit/internal/models"
	"merit/internal/repository"

	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	policyRepo *repository.PolicyRepository
}

func NewPolicyHandler(policyRepo *repository.PolicyRepository) *PolicyHandler {
	return &PolicyHandler{policyRepo: policyRepo}
}

func (h *PolicyHandler) GetActive(c *gin.Context) {
	p, err := h.policyRepo.Active()
	if err != nil {
		if errors.Is(err, repository.ErrNoActivePolicy) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active policy"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "policy error"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PolicyHandler) List(c *gin.Context) {
	list, err := h.policyRepo.List(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "policy error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"policies": list})
}

type CreatePolicyRequest struct {
	Version string             `json:"version" binding:"required"`
	Rules   models.PolicyRules `json:"rules" binding:"required"`
}

// Create inserts a new inactive policy version. Activation is a separate,
// explicit step so a bad ruleset can be reviewed before it goes live.
func (h *PolicyHandler) Create(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.policyRepo.Create(req.Version, req.Rules)
	if err != nil {
		if errors.Is(err, repository.ErrVersionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "policy error"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PolicyHandler) Activate(c *gin.Context) {
	version := c.Param("version")
	if err := h.policyRepo.Activate(version); err != nil {
		if errors.Is(err, repository.ErrPolicyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "policy error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_version": version})
}
