/*
Package server exposes the fitness planner over HTTP. It configures the echo
router, the request logging middleware and the bearer-token guard in front
of plan generation.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-fitness-planner/internal/auth"
	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// PlanGenerator produces a plan for a validated profile.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, prof profile.Profile) (*plan.Plan, error)
}

// SessionGate issues and verifies session tokens.
type SessionGate interface {
	auth.Gate
	Verify(token string) (*auth.Claims, error)
}

// Server defines the dependencies of the HTTP service.
type Server struct {
	planner PlanGenerator
	gate    SessionGate
	dataDir string
	logger  zerolog.Logger

	// Echo is the underlying web framework instance.
	*echo.Echo
}

// New builds a Server with its routes registered.
func New(planner PlanGenerator, gate SessionGate, dataDir string, logger zerolog.Logger) *Server {
	s := &Server{
		planner: planner,
		gate:    gate,
		dataDir: dataDir,
		logger:  logger,
		Echo:    echo.New(),
	}
	s.HideBanner = true
	s.HidePort = true
	s.registerRoutes()
	return s
}

// HTTPServer wraps the router in an http.Server listening on port. The write
// timeout leaves room for a full model call.
func (s *Server) HTTPServer(port string, llmTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      s,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: llmTimeout + 30*time.Second,
	}
}

func (s *Server) registerRoutes() {
	s.Use(middleware.Recover())
	s.Use(s.loggerMiddleware)

	s.GET("/health", s.healthHandler)

	s.POST("/api/auth/login", s.loginHandler)
	s.POST("/api/auth/signup", s.signupHandler)

	protected := s.Group("/api")
	protected.Use(s.requireSession)
	protected.POST("/plans", s.createPlanHandler)
}

// loggerMiddleware tags each request with an ID and logs it once served.
func (s *Server) loggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		logger := s.logger.With().Str("request_id", requestID).Logger()
		c.Set("logger", &logger)

		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		logger.Info().
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("request served")
		return nil
	}
}

func requestLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
