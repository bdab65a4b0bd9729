// Package v1 exposes the HTTP API consumed by the frontend: the OAuth login
// endpoints, session introspection, the scenario catalog, and the chat turn
// endpoint.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/convinceapp/backend/internal/profile"
	"github.com/convinceapp/backend/server/auth"
	"github.com/convinceapp/backend/server/chat"
	"github.com/convinceapp/backend/server/scenario"
)

type APIV1Service struct {
	Profile *profile.Profile
	Flow    *auth.Flow
	Tokens  *auth.TokenService
	Catalog *scenario.Catalog
	Chat    *chat.Service
}

func NewAPIV1Service(p *profile.Profile, flow *auth.Flow, tokens *auth.TokenService, catalog *scenario.Catalog, chatService *chat.Service) *APIV1Service {
	return &APIV1Service{
		Profile: p,
		Flow:    flow,
		Tokens:  tokens,
		Catalog: catalog,
		Chat:    chatService,
	}
}

// Register mounts all routes on the given Echo instance. Browser calls are
// CORS-restricted to the configured frontend origin.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	corsMiddleware := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.Profile.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	})

	group := echoServer.Group("/api", corsMiddleware)
	group.GET("/auth/login/:provider", s.handleLogin)
	group.GET("/auth/callback/:provider", s.handleCallback)
	group.GET("/auth/me", s.handleMe)
	group.GET("/scenarios", s.handleScenarios)
	group.POST("/ask", s.handleAsk)
}
