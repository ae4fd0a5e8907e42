// Package server assembles the HTTP router and runs it with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecocampus/eco-challenge/internal/api/admin"
	"github.com/ecocampus/eco-challenge/internal/api/middleware"
	"github.com/ecocampus/eco-challenge/internal/api/portal"
	"github.com/ecocampus/eco-challenge/internal/auth"
	"github.com/ecocampus/eco-challenge/internal/cache"
	"github.com/ecocampus/eco-challenge/internal/config"
	"github.com/ecocampus/eco-challenge/internal/repository"
	"github.com/ecocampus/eco-challenge/pkg/logger"
)

// Deps holds everything the router needs.
type Deps struct {
	Config        *config.Config
	DB            *repository.DB
	Cache         cache.Cache
	AuthManager   *auth.Manager
	AuthHandler   *portal.AuthHandler
	PortalHandler *portal.Handler
	AdminHandler  *admin.Handler
	Log           *logger.Logger
}

// NewRouter wires middlewares and routes into a gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(d.Log))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	origins := d.Config.Server.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	if d.Config.RateLimit.Enabled {
		r.Use(middleware.RateLimit(d.Config.RateLimit.RPS, d.Config.RateLimit.Burst))
	}

	r.GET("/healthz", healthCheck(d.DB, d.Cache))
	if d.Config.Metrics.Enabled {
		r.GET(d.Config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", d.AuthHandler.Register)
		v1.POST("/auth/login", d.AuthHandler.Login)

		authed := v1.Group("")
		authed.Use(middleware.AuthRequired(d.AuthManager))
		{
			authed.GET("/challenges", d.PortalHandler.ListChallenges)
			authed.GET("/challenges/:id", d.PortalHandler.GetChallenge)
			authed.POST("/challenges/:id/join", d.PortalHandler.JoinChallenge)
			authed.POST("/challenges/:id/proof", d.PortalHandler.SubmitProof)

			authed.GET("/me/challenges", d.PortalHandler.MyChallenges)
			authed.GET("/me/stats", d.PortalHandler.MyStats)
			authed.GET("/me/claims", d.PortalHandler.MyRewardClaims)

			authed.GET("/users/:id", d.PortalHandler.GetUser)
			authed.GET("/leaderboard", d.PortalHandler.GetLeaderboard)
			authed.GET("/departments/rankings", d.PortalHandler.GetDepartmentRankings)

			authed.GET("/rewards", d.PortalHandler.ListRewards)
			authed.POST("/rewards/:id/claim", d.PortalHandler.ClaimReward)
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.AuthRequired(d.AuthManager), middleware.AdminRequired())
		{
			adminGroup.GET("/submissions", d.AdminHandler.ListSubmissions)
			adminGroup.GET("/analytics/overview", d.AdminHandler.AnalyticsOverview)
			adminGroup.POST("/submissions/:id/review", d.AdminHandler.ReviewSubmission)
			adminGroup.POST("/challenges", d.AdminHandler.CreateChallenge)
			adminGroup.PUT("/challenges/:id", d.AdminHandler.UpdateChallenge)
			adminGroup.DELETE("/challenges/:id", d.AdminHandler.ArchiveChallenge)
		}
	}

	return r
}

// Run serves the router until SIGINT/SIGTERM, then drains in-flight requests.
func Run(cfg *config.ServerConfig, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down HTTP server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}

// healthCheck reports database and cache reachability.
func healthCheck(db *repository.DB, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "ok"}
		if err := db.Health(); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Health(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}

// requestLogger emits one structured line per request.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request handled")
	}
}
