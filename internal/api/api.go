package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/essaychat/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	chat_module "github.com/ethanbaker/essaychat/internal/api/modules/chat"
	health_module "github.com/ethanbaker/essaychat/internal/api/modules/health"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the services the API exposes
type Dependencies struct {
	Session    chat_module.Session
	Monitor    health_module.Monitor // Optional
	BackendURL string
}

// NewEngine builds the gin engine with every module registered
func NewEngine(cfg *utils.Config, deps Dependencies) *gin.Engine {
	// Add app level settings/routes
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	// Adding custom modules
	health_module.RegisterRoutes(baseGroup, deps.Monitor, deps.BackendURL)
	chat_module.RegisterRoutes(baseGroup, deps.Session, cfg.Get("API_KEY"))

	return engine
}

// Start serves the API until ctx is cancelled, then shuts down gracefully
func Start(ctx context.Context, cfg *utils.Config, deps Dependencies) error {
	// Initialized configuration settings
	port := cfg.GetWithDefault("API_PORT", "8080")

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           NewEngine(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "api").Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "[API-MAIN]: failed to start server")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Str("component", "api").Msg("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "[API-MAIN]: shutdown")
	}
	return nil
}

// requestLogger logs each request through zerolog instead of gin's default writer
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("component", "api").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
