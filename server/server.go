// Package server assembles the echo HTTP server from the profile and its
// collaborators.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/parleyhq/parley/internal/profile"
	"github.com/parleyhq/parley/plugin/llm"
	"github.com/parleyhq/parley/plugin/mailer"
	"github.com/parleyhq/parley/plugin/speech"
	"github.com/parleyhq/parley/plugin/textextract"
	"github.com/parleyhq/parley/plugin/vision"
	apiv1 "github.com/parleyhq/parley/server/router/api/v1"
	"github.com/parleyhq/parley/store"
)

// Server is the HTTP server and its wired services.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

// NewServer wires the full service graph from the validated profile.
func NewServer(p *profile.Profile, st *store.Store) (*Server, error) {
	chatService, err := llm.NewChatService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat service")
	}

	apiService := apiv1.NewAPIV1Service(p, st, chatService)

	if p.TikaServerURL != "" {
		apiService.Extractor = textextract.NewClient(&textextract.Config{
			ServerURL: p.TikaServerURL,
			Timeout:   30 * time.Second,
		})
	}
	apiService.Transcriber = speech.NewClient(&speech.Config{
		APIKey:  p.LLMAPIKey,
		BaseURL: p.LLMBaseURL,
		Model:   p.SpeechModel,
	})
	apiService.Describer = vision.NewClient(&vision.Config{
		APIKey:  p.LLMAPIKey,
		BaseURL: p.LLMBaseURL,
		Model:   p.VisionModel,
	})
	if p.OTPEnabled {
		apiService.Mailer = mailer.NewSMTPMailer(&mailer.Config{
			Host:     p.SMTPHost,
			Port:     p.SMTPPort,
			Username: p.SMTPUsername,
			Password: p.SMTPPassword,
			From:     p.SMTPFrom,
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	apiService.RegisterRoutes(e)

	return &Server{
		Profile:    p,
		Store:      st,
		echoServer: e,
		apiService: apiService,
	}, nil
}

// Start begins serving and blocks until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "addr", addr, "mode", s.Profile.Mode, "version", s.Profile.Version)
	return s.echoServer.Start(addr)
}

// Shutdown flushes live sessions and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.apiService.FlushSessions(ctx)
	if err := s.echoServer.Shutdown(ctx); err != nil {
		return err
	}
	return s.Store.Close()
}
