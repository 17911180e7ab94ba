package main

import (
	"context"
	"time"

	"github.com/companycrush/crush-backend/internal/app"
	"github.com/companycrush/crush-backend/internal/auth"
	"github.com/companycrush/crush-backend/internal/cache"
	"github.com/companycrush/crush-backend/internal/config"
	"github.com/companycrush/crush-backend/internal/db"
	"github.com/companycrush/crush-backend/internal/logger"
	"github.com/companycrush/crush-backend/internal/repository"
	"github.com/companycrush/crush-backend/internal/server"
	"github.com/companycrush/crush-backend/internal/service/account"
	"github.com/companycrush/crush-backend/internal/service/crush"
	"github.com/companycrush/crush-backend/internal/service/match"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Init token service
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Users.TTL)
	if err != nil {
		log.Error("failed to init token service", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, tokens, log)

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx, cfg),
		crush.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// Janitor: accounts are ephemeral, purge expired ones on an interval.
	go runJanitor(repository.NewUserRepository(database), cfg.Users.PurgeInterval)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}

func runJanitor(users *repository.UserRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		purged, err := users.PurgeExpired(ctx)
		cancel()
		if err != nil {
			logger.Warn("expired-user purge failed", "err", err)
			continue
		}
		if purged > 0 {
			logger.Info("purged expired users", "count", purged)
		}
	}
}
