package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/convinceapp/backend/server/chat"
	apperrors "github.com/convinceapp/backend/server/internal/errors"
)

// genericAskFailure is the fixed reply for any completion endpoint failure.
// Upstream error text is never forwarded to the client.
const genericAskFailure = "Soru cevaplanırken hata oluştu"

// handleScenarios returns the simplified scenario list.
func (s *APIV1Service) handleScenarios(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Catalog.List())
}

// handleAsk relays one conversation turn to the completion endpoint.
func (s *APIV1Service) handleAsk(c echo.Context) error {
	req := &chat.AskRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing user_input or scenario_id"})
	}

	answer, err := s.Chat.Ask(c.Request().Context(), req)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrCodeMissingInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing user_input or scenario_id"})
		case apperrors.ErrCodeUnknownScenario:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid scenario_id"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": genericAskFailure})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"answer": answer})
}
