// Package server exposes the upload pipeline and its stored results over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dshills/genesisqa/internal/config"
	"github.com/dshills/genesisqa/internal/metrics"
	"github.com/dshills/genesisqa/internal/pipeline"
	"github.com/dshills/genesisqa/internal/scrub"
	"github.com/dshills/genesisqa/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the HTTP layer reads from and writes to.
type Deps struct {
	Service   *pipeline.Service
	Documents store.DocumentRepository
	TestCases store.TestCaseRepository
	Reports   store.ReportRepository
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Server is the echo application plus its dependencies.
type Server struct {
	echo    *echo.Echo
	cfg     config.ServerConfig
	svc     *pipeline.Service
	docs    store.DocumentRepository
	cases   store.TestCaseRepository
	reports store.ReportRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New wires routes and middleware. A nil Logger discards output.
func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		echo:    echo.New(),
		cfg:     cfg,
		svc:     deps.Service,
		docs:    deps.Documents,
		cases:   deps.TestCases,
		reports: deps.Reports,
		metrics: deps.Metrics,
		logger:  logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes, 10)))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	e.POST("/upload_file", s.uploadFile)
	api := e.Group("/api")
	api.GET("/test_cases", s.listTestCases)
	api.GET("/test_cases/export.csv", s.exportTestCases)
	api.GET("/upload_status", s.uploadStatus)
	api.GET("/compliance_reports", s.listReports)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// handleError renders every unhandled error as {"error": msg}.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		msg = s.errorMessage(err)
		s.logger.Error("request failed",
			zap.Int("status", code),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorBody{Error: msg})
	}
}

func (s *Server) errorMessage(err error) string {
	if s.cfg.RedactErrors {
		return scrub.Error(err)
	}
	return err.Error()
}
