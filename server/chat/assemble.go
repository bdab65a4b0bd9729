// Package chat builds the ordered message sequence for each conversation
// turn and relays it to the completion endpoint. Assembly is a pure function
// of its inputs; nothing is retained between requests.
package chat

import (
	"strings"

	"github.com/convinceapp/backend/server/ai"
	"github.com/convinceapp/backend/server/scenario"
)

// safetyClause is appended to the system message of every scenario without
// exception. The wording, including the Turkish sentence, is fixed and not
// configurable per scenario.
const safetyClause = `If the other party becomes aggressive, disrespectful, or uses profanity, do not continue negotiating. Calmly say, “This conversation is no longer productive. I’m ending the negotiation here.” In Turkish, also say: "Görüşmeyi burada sonlandırıyorum." Then stop all responses and end the conversation. Do not argue or justify your decision.`

// SenderUser marks a history turn spoken by the end user. Any other sender
// value is replayed as the assistant.
const SenderUser = "user"

// Turn is one element of the conversation history sent by the frontend.
type Turn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Assemble builds the ordered instruction sequence for one turn: a single
// system message combining the scenario story, its base prompt, and the
// safety clause; the history replayed in original order; then the new user
// utterance.
func Assemble(record scenario.Record, history []Turn, userInput string) []ai.Message {
	var system strings.Builder
	system.WriteString("Hikaye: ")
	system.WriteString(record.Story)
	system.WriteString("\nAna prompt: ")
	system.WriteString(record.SystemPrompt)
	system.WriteString(", ")
	system.WriteString(safetyClause)

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: system.String()})

	for _, turn := range history {
		role := ai.RoleAssistant
		if turn.Sender == SenderUser {
			role = ai.RoleUser
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Text})
	}

	return append(messages, ai.Message{Role: ai.RoleUser, Content: userInput})
}
