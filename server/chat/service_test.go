package chat

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/convinceapp/backend/server/ai"
	apperrors "github.com/convinceapp/backend/server/internal/errors"
	"github.com/convinceapp/backend/server/scenario"
)

type fakeCompleter struct {
	answer string
	err    error

	gotMessages []ai.Message
}

func (f *fakeCompleter) Chat(_ context.Context, messages []ai.Message) (string, error) {
	f.gotMessages = messages
	return f.answer, f.err
}

func newTestService(t *testing.T, completer Completer) *Service {
	t.Helper()
	catalog, err := scenario.Load("")
	require.NoError(t, err)
	return NewService(catalog, completer, 0)
}

func TestAskForwardsAssembledMessages(t *testing.T) {
	completer := &fakeCompleter{answer: "Olur, 330.000 TL diyelim."}
	service := newTestService(t, completer)

	answer, err := service.Ask(context.Background(), &AskRequest{
		UserInput:  "320.000 TL veririm.",
		ScenarioID: "car_sale",
		History:    []Turn{{Sender: "user", Text: "Merhaba"}, {Sender: "bot", Text: "Buyurun"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Olur, 330.000 TL diyelim.", answer)

	require.Len(t, completer.gotMessages, 4)
	require.Equal(t, ai.RoleSystem, completer.gotMessages[0].Role)
	require.Equal(t, "320.000 TL veririm.", completer.gotMessages[3].Content)
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name     string
		req      *AskRequest
		wantCode apperrors.ErrorCode
	}{
		{"missing user input", &AskRequest{ScenarioID: "car_sale"}, apperrors.ErrCodeMissingInput},
		{"missing scenario id", &AskRequest{UserInput: "x"}, apperrors.ErrCodeMissingInput},
		{"unknown scenario", &AskRequest{UserInput: "x", ScenarioID: "no_such_id"}, apperrors.ErrCodeUnknownScenario},
	}

	completer := &fakeCompleter{}
	service := newTestService(t, completer)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Ask(context.Background(), tt.req)
			require.Error(t, err)
			require.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
	// Validation failures never reach the completion endpoint.
	require.Nil(t, completer.gotMessages)
}

func TestAskUpstreamFailure(t *testing.T) {
	service := newTestService(t, &fakeCompleter{err: errors.New("connection reset")})

	_, err := service.Ask(context.Background(), &AskRequest{
		UserInput:  "Hello",
		ScenarioID: "car_sale",
	})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrCodeUpstreamFailure, apperrors.CodeOf(err))
}
