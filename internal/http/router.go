package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/graduation-masterpiece/demo-repository/internal/http/handlers"
	httpMW "github.com/graduation-masterpiece/demo-repository/internal/http/middleware"
	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	// Proxies whose X-Forwarded-For is believed. Nil trusts none, so the
	// client identity is the connection's remote address.
	TrustedProxies []string

	AuthMiddleware *httpMW.AuthMiddleware
	// Throttles card creation per client; nil disables throttling.
	CreateLimiter    httpMW.KeyedLimiter
	CreateRetryAfter time.Duration

	HealthHandler   *httpH.HealthHandler
	CardHandler     *httpH.CardHandler
	LikeHandler     *httpH.LikeHandler
	SearchHandler   *httpH.SearchHandler
	FeedbackHandler *httpH.FeedbackHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("Invalid trusted proxy list; trusting none", "proxies", cfg.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api")

	admin := []gin.HandlerFunc{}
	if cfg.AuthMiddleware != nil {
		admin = append(admin, cfg.AuthMiddleware.RequireAdmin())
	}

	// Cards
	if h := cfg.CardHandler; h != nil {
		api.POST("/book", httpMW.Throttle(cfg.CreateLimiter, cfg.CreateRetryAfter), h.Create)
		api.POST("/book/:id/regenerate", httpMW.Throttle(cfg.CreateLimiter, cfg.CreateRetryAfter), h.Regenerate)
		api.GET("/book-cards", h.List)
		api.GET("/book/:id", h.Get)
		api.GET("/my-library", h.Library)
		if len(admin) > 0 {
			api.DELETE("/book/:id", append(admin, h.Delete)...)
			api.PATCH("/book/:id/likes/reset", append(admin, h.ResetLikes)...)
		}
	}

	// Engagement
	if cfg.LikeHandler != nil {
		api.PATCH("/book/:id/like", cfg.LikeHandler.Like)
	}

	// Search
	if cfg.SearchHandler != nil {
		api.GET("/autocomplete", cfg.SearchHandler.Suggest)
		api.POST("/search-history", cfg.SearchHandler.Record)
	}

	// Feedback
	if cfg.FeedbackHandler != nil {
		api.POST("/error-report", cfg.FeedbackHandler.ReportIssue)
		api.POST("/log-utm", cfg.FeedbackHandler.LogVisit)
	}

	return r
}
