package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"merit/config"
	"merit/internal/database"
	"merit/internal/jobs"
	"merit/internal/repository"
	"merit/internal/router"
	"merit/pkg/quality"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	policyRepo := repository.NewPolicyRepository(db, cfg.Reward.PolicyCacheTTL)
	rules, err := database.LoadPolicyRules(cfg.Reward.PolicyFile)
	if err != nil {
		log.Fatalf("policy seed: %v", err)
	}
	if err := policyRepo.SeedIfEmpty(rules); err != nil {
		log.Fatalf("policy seed: %v", err)
	}

	loc := cfg.Reward.RewardLocation()
	scheduler := jobs.NewScheduler(
		repository.NewUserRepository(db),
		repository.NewDeviceRepository(db),
		repository.NewDailyRepository(db),
		loc,
	)
	scheduler.Start()
	defer scheduler.Stop()

	engine := router.Setup(cfg, db, &quality.StubScorer{})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	log.Info("server stopped")
}
