package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/config"
	"github.com/blinky-companion/sync-agent/internal/server/middlewares"
	"github.com/blinky-companion/sync-agent/pkg/certificates"
)

const (
	ProductionServer string = "prod"
	DevServer        string = "dev"
	apiV1            string = "/api/v1"
)

type Server struct {
	srv *http.Server
}

type Option func(engine *gin.Engine, api *gin.RouterGroup) error

// WithMetrics serves h at /metrics, outside the authenticated API group.
func WithMetrics(h http.Handler) Option {
	return func(engine *gin.Engine, _ *gin.RouterGroup) error {
		engine.GET("/metrics", gin.WrapH(h))
		return nil
	}
}

// WithAuth protects the API group with bearer token authentication.
func WithAuth(secret []byte) Option {
	return func(_ *gin.Engine, api *gin.RouterGroup) error {
		if len(secret) == 0 {
			return errors.New("empty jwt secret")
		}
		api.Use(middlewares.Auth(secret))
		return nil
	}
}

func NewServer(cfg *config.Configuration, registerHandlerFn func(router *gin.RouterGroup), opts ...Option) (*Server, error) {
	gin.SetMode(gin.DebugMode)
	if cfg.Server.ServerMode == ProductionServer {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})

	if cfg.Server.ServerMode == ProductionServer {
		tlsConfig, err := certificates.TLSConfig(time.Now().AddDate(1, 0, 0), cfg.Server.Address, "localhost")
		if err != nil {
			return nil, fmt.Errorf("failed to generate server's certificates: %w", err)
		}
		srv.TLSConfig = tlsConfig
	}

	router := engine.Group(apiV1)
	router.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.S().Desugar(), true),
	)

	for _, opt := range opts {
		if err := opt(engine, router); err != nil {
			return nil, err
		}
	}

	registerHandlerFn(router)

	return &Server{srv: srv}, nil
}

// Start serves HTTPS in production mode, plain HTTP otherwise.
func (r *Server) Start(ctx context.Context) error {
	if r.srv.TLSConfig != nil {
		return r.srv.ListenAndServeTLS("", "")
	}
	return r.srv.ListenAndServe()
}

func (r *Server) Stop(ctx context.Context) {
	if err := r.srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("server shutdown", "error", err)
	}
}
