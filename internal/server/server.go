package server

import (
	"time"

	"botusage/internal/auth"
	"botusage/internal/config"
	"botusage/internal/handlers"

	_ "botusage/docs" // registers the swagger spec

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the application server
type Server struct {
	echo      *echo.Echo
	db        *sqlx.DB
	config    *config.Config
	logger    zerolog.Logger
	analytics handlers.UsageService
	auth      *auth.Manager
}

// New creates a new server instance
func New(cfg *config.Config, db *sqlx.DB, svc handlers.UsageService, logger zerolog.Logger) *Server {
	return &Server{
		config:    cfg,
		db:        db,
		logger:    logger,
		analytics: svc,
		auth:      auth.NewManager(cfg),
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	s.echo.HideBanner = true

	s.setupRoutes()
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints stay at root level for monitoring
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.db))

	api := s.echo.Group("/api")
	api.GET("/", handlers.RootHandler(s.config.Version))

	if !s.auth.Enabled() {
		s.logger.Warn().Msg("API_TOKENS not set, project routes are unauthenticated")
	}

	projects := api.Group("/projects/:projectId", auth.Middleware(s.auth))
	projects.GET("/usage", handlers.UsageHandler(s.analytics, s.logger))
	projects.GET("/budget", handlers.BudgetHandler(s.analytics, s.logger))
	projects.PUT("/budget", handlers.UpdateBudgetHandler(s.analytics, s.logger))
	projects.POST("/events", handlers.RecordEventHandler(s.analytics, s.logger))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}
