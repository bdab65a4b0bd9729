package v1

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/convinceapp/backend/server/internal/errors"
	"github.com/convinceapp/backend/server/internal/observability"
)

const stateCookieName = "convince_oauth_state"

// handleLogin starts a fresh login attempt: it builds the provider
// authorization URL and redirects the browser there. The CSRF state travels
// in a short-lived cookie and comes back on the callback.
func (s *APIV1Service) handleLogin(c echo.Context) error {
	providerName := c.Param("provider")

	authURL, state, err := s.Flow.BeginLogin(providerName)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeUnsupportedProvider) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported provider"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   !s.Profile.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, authURL)
}

// handleCallback finishes the login: state check, code exchange, profile
// normalization, token issuance, then a redirect to the frontend carrying
// the session token. Every failure is terminal for the attempt; the browser
// sees an opaque 500 and the detail stays in the server log.
func (s *APIV1Service) handleCallback(c echo.Context) error {
	providerName := c.Param("provider")
	logger := observability.NewRequestContext(slog.Default(), "auth_callback")

	if providerErr := c.QueryParam("error"); providerErr != "" {
		logger.Warn("provider returned error on callback",
			slog.String(observability.LogFieldProvider, providerName),
			slog.String("provider_error", providerErr))
		return s.callbackFailure(c, apperrors.ErrCodeUpstreamFailure)
	}

	code := c.QueryParam("code")
	if code == "" {
		return s.callbackFailure(c, apperrors.ErrCodeMissingInput)
	}
	if cookie, err := c.Cookie(stateCookieName); err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		logger.Warn("state mismatch on callback",
			slog.String(observability.LogFieldProvider, providerName))
		return s.callbackFailure(c, apperrors.ErrCodeUnauthenticated)
	}

	token, identity, err := s.Flow.CompleteLogin(c.Request().Context(), providerName, code)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeUnsupportedProvider) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported provider"})
		}
		logger.Error("login failed", err,
			slog.String(observability.LogFieldProvider, providerName))
		return s.callbackFailure(c, apperrors.CodeOf(err))
	}

	logger.Info("login completed",
		slog.String(observability.LogFieldProvider, providerName),
		slog.String(observability.LogFieldSubject, identity.Subject),
		slog.Int64(observability.LogFieldDuration, logger.DurationMs()),
	)

	query := url.Values{"token": {token}}
	return c.Redirect(http.StatusFound, s.Profile.FrontendURL+"?"+query.Encode())
}

func (s *APIV1Service) callbackFailure(c echo.Context, code apperrors.ErrorCode) error {
	detail := string(code)
	if detail == "" {
		detail = string(apperrors.ErrCodeUpstreamFailure)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error":  "login failed",
		"detail": detail,
	})
}

// handleMe reports whether the presented session token verifies. The reason
// for a rejection is never distinguished to the client.
func (s *APIV1Service) handleMe(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	token := strings.TrimSpace(header[len("bearer "):])

	identity, err := s.Tokens.Verify(token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user":          identity,
	})
}
