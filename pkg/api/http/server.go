package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/resforecast/internal/application/predictor"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Predictor is the inference chain behind POST /predict
type Predictor interface {
	PredictNullable(features []*float64) (predictor.Prediction, error)
}

// Server represents the HTTP API server
type Server struct {
	router       *gin.Engine
	server       *http.Server
	predictor    Predictor
	maxBodyBytes int64
	logger       *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Addr         string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	Predictor    Predictor
	Logger       *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger))
	router.Use(recovery(cfg.Logger))

	s := &Server{
		router:       router,
		predictor:    cfg.Predictor,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	s.router.POST("/predict", s.handlePredict)
}

// Handler returns the routed handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
