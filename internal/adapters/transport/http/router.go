package http

import (
	"time"

	"github.com/Miraines/MindHaven/auth-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type CORSOptions struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter mounts the auth endpoints. The limiter guards only the routes
// that touch credentials; health and metrics stay reachable for probes.
func NewRouter(h *Handler, limiter *ratelimit.PerKey, co CORSOptions, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	if len(co.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: co.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				"X-Requested-With",
			},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: co.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/")
	auth.Use(middleware.NewHTTPRateLimitPerIP(limiter))
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", middleware.RequireSession(h.svc, log), h.Me)

	return router
}
