package handler

import (
	"net/http"
	"time"

	"merit/internal/domain"
	"merit/internal/middleware"
	"merit/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletRepo *repository.WalletRepository
	dailyRepo  *repository.DailyRepository
	loc        *time.Location
}

func NewWalletHandler(walletRepo *repository.WalletRepository, dailyRepo *repository.DailyRepository, loc *time.Location) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, dailyRepo: dailyRepo, loc: loc}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.ActorID(c)
	w, err := h.walletRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_coins":   w.BalanceCoins,
		"lifetime_earned": w.LifetimeEarned,
	})
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID := middleware.ActorID(c)
	list, err := h.walletRepo.ListTransactions(userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// GetToday returns the caller's reward-day counters.
func (h *WalletHandler) GetToday(c *gin.Context) {
	userID := middleware.ActorID(c)
	date := domain.RewardDate(time.Now(), h.loc)
	d, err := h.dailyRepo.GetOrCreate(userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tracking error"})
		return
	}
	c.JSON(http.StatusOK, d)
}
