package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/convinceapp/backend/server/ai"
	"github.com/convinceapp/backend/server/scenario"
)

func testRecord() scenario.Record {
	return scenario.Record{
		ID:           "car_sale",
		Name:         "İkinci El Araba Pazarlığı",
		Story:        "Sen Murat, arabasını satan bir araba sahibisin.",
		SystemPrompt: "Murat rolünü oyna. Rolünden asla çıkma.",
	}
}

func TestAssembleEmptyHistory(t *testing.T) {
	messages := Assemble(testRecord(), nil, "Hello")

	require.Len(t, messages, 2)

	system := messages[0]
	require.Equal(t, ai.RoleSystem, system.Role)
	require.Contains(t, system.Content, "Hikaye: Sen Murat")
	require.Contains(t, system.Content, "Ana prompt: Murat rolünü oyna")
	// The safety clause is always present, in both languages.
	require.Contains(t, system.Content, "I’m ending the negotiation here.")
	require.Contains(t, system.Content, "Görüşmeyi burada sonlandırıyorum.")
	require.Contains(t, system.Content, "Do not argue or justify your decision.")

	require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Hello"}, messages[1])
}

func TestAssembleReplaysHistoryInOrder(t *testing.T) {
	history := []Turn{
		{Sender: "user", Text: "Hi"},
		{Sender: "bot", Text: "Hello there"},
	}
	messages := Assemble(testRecord(), history, "Offer $100")

	require.Len(t, messages, 4)
	require.Equal(t, ai.RoleSystem, messages[0].Role)
	require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Hi"}, messages[1])
	require.Equal(t, ai.Message{Role: ai.RoleAssistant, Content: "Hello there"}, messages[2])
	require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Offer $100"}, messages[3])
}

func TestAssembleMapsUnknownSendersToAssistant(t *testing.T) {
	history := []Turn{
		{Sender: "assistant", Text: "a"},
		{Sender: "", Text: "b"},
		{Sender: "system", Text: "c"},
	}
	messages := Assemble(testRecord(), history, "x")

	for i := 1; i <= 3; i++ {
		require.Equal(t, ai.RoleAssistant, messages[i].Role)
	}
}

func TestAssembleKeepsEmptyTurnText(t *testing.T) {
	messages := Assemble(testRecord(), []Turn{{Sender: "user"}}, "x")

	require.Len(t, messages, 3)
	require.Equal(t, ai.Message{Role: ai.RoleUser, Content: ""}, messages[1])
}

func TestAssembleConcurrentCallsDoNotInterfere(t *testing.T) {
	historyA := []Turn{{Sender: "user", Text: "A1"}, {Sender: "bot", Text: "A2"}}
	historyB := []Turn{{Sender: "user", Text: "B1"}}

	var wg sync.WaitGroup
	results := make([][]ai.Message, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			results[0] = Assemble(testRecord(), historyA, "ask A")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			results[1] = Assemble(testRecord(), historyB, "ask B")
		}
	}()
	wg.Wait()

	require.Len(t, results[0], 4)
	require.Equal(t, "A1", results[0][1].Content)
	require.Equal(t, "ask A", results[0][3].Content)

	require.Len(t, results[1], 3)
	require.Equal(t, "B1", results[1][1].Content)
	require.Equal(t, "ask B", results[1][2].Content)
}
