package router

import (
	"time"

	"merit/config"
	"merit/internal/auth"
	"merit/internal/handler"
	"merit/internal/middleware"
	"merit/internal/repository"
	"merit/internal/service"
	"merit/internal/ws"
	"merit/pkg/quality"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, scorer quality.Scorer) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	loc := cfg.Reward.RewardLocation()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	policyRepo := repository.NewPolicyRepository(db, cfg.Reward.PolicyCacheTTL)
	actionRepo := repository.NewActionRepository(db)
	fraudRepo := repository.NewFraudRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	dailyRepo := repository.NewDailyRepository(db)
	walletRepo := repository.NewWalletRepository(db)

	rewardHub := ws.NewRewardHub()
	tokens := auth.NewTokens(&cfg.JWT)

	// Services
	authSvc := service.NewAuthService(tokens, userRepo)
	riskGate := service.NewRiskGate(userRepo, fraudRepo)
	sybilSvc := service.NewSybilService(deviceRepo, fraudRepo)
	submissionSvc := service.NewSubmissionService(
		actionRepo, dailyRepo, walletRepo, policyRepo,
		riskGate, sybilSvc, scorer, rewardHub,
		loc, cfg.Reward.FingerprintSalt, cfg.Reward.QualityTimeout,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	actionHandler := handler.NewActionHandler(submissionSvc, actionRepo)
	walletHandler := handler.NewWalletHandler(walletRepo, dailyRepo, loc)
	policyHandler := handler.NewPolicyHandler(policyRepo)
	fraudHandler := handler.NewFraudHandler(fraudRepo, userRepo)

	authMw := middleware.Authenticated(tokens)
	adminMw := middleware.AdminOnly()
	submitLimiter := middleware.NewInMemoryRateLimiter(30, 60*time.Second)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		actions := api.Group("/actions", authMw)
		{
			actions.POST("", middleware.RateLimitActor(submitLimiter), actionHandler.Submit)
			actions.GET("", actionHandler.List)
			actions.GET("/:uid", actionHandler.Get)
		}

		wallet := api.Group("/wallet", authMw)
		{
			wallet.GET("", walletHandler.GetBalance)
			wallet.GET("/transactions", walletHandler.ListTransactions)
			wallet.GET("/today", walletHandler.GetToday)
		}

		api.GET("/policy", authMw, policyHandler.GetActive)

		admin := api.Group("/admin", authMw, adminMw)
		{
			admin.GET("/policies", policyHandler.List)
			admin.POST("/policies", policyHandler.Create)
			admin.POST("/policies/:version/activate", policyHandler.Activate)
			admin.GET("/fraud/signals", fraudHandler.ListSignals)
			admin.POST("/fraud/signals/:id/resolve", fraudHandler.ResolveSignal)
			admin.POST("/users/:id/suspend", fraudHandler.Suspend)
			admin.POST("/users/:id/unsuspend", fraudHandler.Unsuspend)
		}

		api.GET("/ws/rewards", ws.UpgradeRewardWS(tokens, rewardHub))
	}

	return r
}
