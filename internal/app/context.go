package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/companycrush/crush-backend/internal/auth"
	"github.com/companycrush/crush-backend/internal/cache"
)

// AppContext holds shared dependencies (DB, Redis, Tokens, Logger).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Tokens     *auth.TokenService
	Logger     *slog.Logger
}

// New creates a new AppContext.
func New(db *gorm.DB, rdb *cache.RedisCache, tokens *auth.TokenService, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Tokens:     tokens,
		Logger:     logger,
	}
}
