// Package bootstrap wires runtime dependencies for the cmd entrypoints.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pennypost/internal/cache"
	"pennypost/internal/config"
	"pennypost/internal/database"
	"pennypost/internal/models"
	"pennypost/internal/observability"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	EnableTracing bool
}

// InitRuntime connects to the database and Redis, sets up tracing and
// bootstraps the development admin account. The Redis client may be nil when
// the cache is unreachable; callers degrade gracefully.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, func(), error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	shutdown := func() {}
	if opts.EnableTracing {
		shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:  "pennypost-api",
			Environment:  cfg.Env,
			Enabled:      cfg.TracingEnabled,
			Exporter:     cfg.TracingExporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.SamplerRatio,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tracing initialization failed: %w", err)
		}
		shutdown = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}
	}

	if err := ensureDevAdmin(cfg, db); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, shutdown, nil
}

// ensureDevAdmin creates or updates the development admin account. It only
// runs in the development environment with an explicit password configured.
func ensureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || cfg.DevAdminPassword == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", "pennypost_admin").First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				Username: "pennypost_admin",
				Email:    "admin@pennypost.local",
				Password: string(hashed),
				Pennies:  cfg.StartingPennies,
				IsAdmin:  true,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&admin).Updates(map[string]interface{}{
				"password": string(hashed),
				"is_admin": true,
			}).Error
		}
	})
}
