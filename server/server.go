// Package server assembles the HTTP server: configuration, the OAuth flow,
// the token service, the scenario catalog, the completion provider, and the
// API routes on top of Echo.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/convinceapp/backend/internal/profile"
	"github.com/convinceapp/backend/server/ai"
	"github.com/convinceapp/backend/server/auth"
	"github.com/convinceapp/backend/server/chat"
	apiv1 "github.com/convinceapp/backend/server/router/api/v1"
	"github.com/convinceapp/backend/server/scenario"
)

type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
}

func NewServer(p *profile.Profile) (*Server, error) {
	catalog, err := scenario.Load(p.ScenarioFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load scenario catalog")
	}

	tokens := auth.NewTokenService(p.JWTSecret)
	flow := auth.NewFlow(p, tokens)

	completionProvider := ai.NewProvider(&ai.Config{
		BaseURL:   p.OpenAIBaseURL,
		APIKey:    p.OpenAIAPIKey,
		ChatModel: p.ChatModel,
		Timeout:   p.UpstreamTimeout,
	})
	chatService := chat.NewService(catalog, completionProvider, 0)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiService := apiv1.NewAPIV1Service(p, flow, tokens, catalog, chatService)
	apiService.Register(echoServer)

	return &Server{
		Profile:    p,
		echoServer: echoServer,
	}, nil
}

// Start runs the HTTP listener until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started",
		slog.String("address", address),
		slog.String("mode", s.Profile.Mode),
		slog.String("version", s.Profile.Version),
	)

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests for a bounded period.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
	}
	slog.Info("server stopped")
}
