package chat

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/convinceapp/backend/server/ai"
	apperrors "github.com/convinceapp/backend/server/internal/errors"
	"github.com/convinceapp/backend/server/internal/observability"
	"github.com/convinceapp/backend/server/scenario"
)

// Completer is the outbound completion call: ordered messages in, text out.
type Completer interface {
	Chat(ctx context.Context, messages []ai.Message) (string, error)
}

// AskRequest carries one conversation turn from the frontend.
type AskRequest struct {
	UserInput  string `json:"user_input"`
	ScenarioID string `json:"scenario_id"`
	History    []Turn `json:"history"`
}

// Service answers conversation turns. It holds only read-only collaborators,
// so any number of turns may be served concurrently.
type Service struct {
	catalog   *scenario.Catalog
	completer Completer

	// inflight bounds concurrent completion calls so a slow upstream
	// cannot absorb every worker.
	inflight *semaphore.Weighted
}

// NewService creates a chat service. maxInFlight limits concurrent upstream
// completion calls; zero or negative means 8.
func NewService(catalog *scenario.Catalog, completer Completer, maxInFlight int64) *Service {
	if maxInFlight <= 0 {
		maxInFlight = 8
	}
	return &Service{
		catalog:   catalog,
		completer: completer,
		inflight:  semaphore.NewWeighted(maxInFlight),
	}
}

// Ask validates the turn, assembles the message sequence, and forwards it to
// the completion endpoint. Upstream failures are reported as a single
// upstream-failure error; the HTTP layer maps that to a fixed generic reply.
func (s *Service) Ask(ctx context.Context, req *AskRequest) (string, error) {
	if req.UserInput == "" {
		return "", apperrors.MissingInput("user_input")
	}
	if req.ScenarioID == "" {
		return "", apperrors.MissingInput("scenario_id")
	}
	record, ok := s.catalog.Get(req.ScenarioID)
	if !ok {
		return "", apperrors.UnknownScenario(req.ScenarioID)
	}

	logger := observability.NewRequestContext(slog.Default(), "ask")
	logger.Info("chat turn started",
		slog.String(observability.LogFieldScenario, req.ScenarioID),
		slog.Int(observability.LogFieldMessageLen, len(req.UserInput)),
		slog.Int("history_count", len(req.History)),
	)

	messages := Assemble(record, req.History, req.UserInput)

	if err := s.inflight.Acquire(ctx, 1); err != nil {
		return "", apperrors.UpstreamFailure("completion slot unavailable", err)
	}
	defer s.inflight.Release(1)

	answer, err := s.completer.Chat(ctx, messages)
	if err != nil {
		logger.Error("completion endpoint failed", err,
			slog.String(observability.LogFieldScenario, req.ScenarioID))
		return "", apperrors.UpstreamFailure("completion endpoint failed", err)
	}

	logger.Info("chat turn completed",
		slog.String(observability.LogFieldScenario, req.ScenarioID),
		slog.Int64(observability.LogFieldDuration, logger.DurationMs()),
	)
	return answer, nil
}
