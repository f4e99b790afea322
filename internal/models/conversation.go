package models

// Turn roles. Only these two appear in session history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single message in a session. Turns are append-only
// and ordered by arrival.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoleSystem is only used in prompt payloads, never in session history.
const RoleSystem = "system"

// Message is one entry of the prompt payload sent to the generator:
// the system persona, included history turns, and the final user message.
type Message struct {
	Role    string
	Content string
}

