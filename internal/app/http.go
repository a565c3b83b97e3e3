package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	apphttp "github.com/graduation-masterpiece/demo-repository/internal/http"
	httpH "github.com/graduation-masterpiece/demo-repository/internal/http/handlers"
	httpMW "github.com/graduation-masterpiece/demo-repository/internal/http/middleware"
	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

// Clients receive this in Retry-After when card creation is throttled.
const createRetryAfter = 30 * time.Second

func wireServer(log *logger.Logger, cfg Config, db *gorm.DB, clients Clients, svc Services) *apphttp.Server {
	log.Info("Wiring HTTP server...")

	checks := map[string]httpH.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}

	rc := apphttp.RouterConfig{
		Log:              log,
		ServiceName:      cfg.Otel.ServiceName,
		AllowedOrigins:   cfg.AllowedOrigins,
		TrustedProxies:   cfg.TrustedProxies,
		Metrics:          observability.Current(),
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, cfg.AdminJWTSecret),
		CreateRetryAfter: createRetryAfter,
		HealthHandler:    httpH.NewHealthHandler(checks),
		CardHandler:      httpH.NewCardHandler(log, svc.Cards),
		LikeHandler:      httpH.NewLikeHandler(log, svc.Likes),
		SearchHandler:    httpH.NewSearchHandler(log, svc.Autocomplete),
		FeedbackHandler:  httpH.NewFeedbackHandler(log, svc.Feedback),
	}
	if svc.CreateLimiter != nil {
		rc.CreateLimiter = svc.CreateLimiter
	}
	return apphttp.NewServer(rc)
}

func listenAddress(port string) string {
	return fmt.Sprintf(":%s", port)
}

