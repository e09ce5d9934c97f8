package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/cache"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/engine"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/store"
)

// ServerConfig holds the HTTP surface configuration.
type ServerConfig struct {
	Host      string
	Port      int
	AuthToken string // shared secret expected in X-Auth-Token; empty disables auth
}

// Server exposes the analysis engine over HTTP. Everything here is thin
// I/O glue: bars in, signals and outlook out.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	engine     *engine.Engine
	cache      *cache.Service
	repo       *store.Repository // optional, may be nil
	cfg        ServerConfig
	logger     zerolog.Logger
}

// NewServer wires routes and middleware.
func NewServer(cfg ServerConfig, eng *engine.Engine, cacheSvc *cache.Service, repo *store.Repository, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Auth-Token")
	router.Use(cors.New(corsCfg))

	s := &Server{
		router: router,
		engine: eng,
		cache:  cacheSvc,
		repo:   repo,
		cfg:    cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}

	router.Use(s.requestID())
	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	v1.Use(s.requireAuth())
	{
		v1.POST("/analysis/:symbol", s.handleAnalyze)
		v1.GET("/snapshots/:symbol", s.handleSnapshots)
	}
	return s
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("api server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requestID tags each request for log correlation.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requireAuth checks the shared secret header when one is configured.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AuthToken != "" && c.GetHeader("X-Auth-Token") != s.cfg.AuthToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid auth token"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
