package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/chat"
	"resume-analyzer/internal/reports"
	"resume-analyzer/internal/services/health"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

// Rate limit groups.
const (
	GroupAnalyze = "ANALYZE"
	GroupChat    = "CHAT"
)

var availableEndpoints = []string{
	"GET /",
	"GET /health",
	"GET /metrics",
	"POST /api/resume/analyze",
	"GET /api/resume/reports",
	"GET /api/resume/reports/:id",
	"GET /api/resume/dashboard",
	"GET /api/resume/stats",
	"DELETE /api/resume/reports/:id",
	"GET /api/reports",
	"GET /api/reports/:id",
	"DELETE /api/reports/:id",
	"POST /api/chat",
	"GET /api/chat/suggestions",
	"GET /api/chat/history",
}

// Deps are the handlers and services the router exposes.
type Deps struct {
	Config  config.Config
	Reports *reports.Handler
	Chat    *chat.Handler
	Health  *health.Service
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				GroupAnalyze: middleware.PerMinute(deps.Config.AnalyzeRatePerMinute),
				GroupChat:    middleware.PerMinute(deps.Config.ChatRatePerMinute),
			},
			GroupFor: rateLimitGroup,
			Limiter:  deps.Limiter,
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status(c.Request.Context()))
	})
	r.GET("/metrics", metrics.Handler())
	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"success": true,
			"message": "Welcome to AI Resume Analyzer API",
			"endpoints": gin.H{
				"health":          "/health",
				"analyze":         "POST /api/resume/analyze",
				"reports":         "GET /api/resume/reports",
				"dashboard":       "GET /api/resume/dashboard",
				"chat":            "POST /api/chat",
				"chatSuggestions": "GET /api/chat/suggestions",
			},
		})
	})

	api := r.Group("/api")
	if deps.Reports != nil {
		deps.Reports.RegisterRoutes(api)
	}
	if deps.Chat != nil {
		deps.Chat.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "Endpoint not found", gin.H{
			"availableEndpoints": availableEndpoints,
		})
	})

	return r
}

// rateLimitGroup limits the AI-backed endpoints; everything else is unlimited.
func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case c.Request.Method == http.MethodPost && path == "/api/resume/analyze":
		return GroupAnalyze
	case c.Request.Method == http.MethodPost && strings.TrimSuffix(path, "/") == "/api/chat":
		return GroupChat
	}
	return "NONE"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
