package pipeline

import (
	"fmt"
	"strings"

	"github.com/psundar/indium-chat/internal/models"
)

const systemPersona = "You are a helpful assistant answering questions about Indium Technologies. " +
	"Answer only based on the provided context. Keep tone conversational and concise. " +
	"Do not include source links in the response body."

const (
	briefConstraint    = "Respond concisely in 1-2 short sentences, no more than 100 words."
	detailedConstraint = "Respond clearly and informatively, but keep answer under 500 characters."
)

// defaultHistoryWindow is the number of most recent prior turns included in
// the prompt payload when no limit is configured.
const defaultHistoryWindow = 10

// BuildContext builds the generator payload for a knowledge question:
// one system message, the window most recent prior turns, and a final user
// message combining grounding context, question, and a style length
// constraint. A window of zero or less means the default.
//
// history must be the snapshot taken before the current user turn was
// recorded; the current question is never part of it.
func BuildContext(question string, docs []models.Document, history []models.ConversationTurn, style Style, window int) []models.Message {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	var parts []string
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		parts = append(parts, doc.Content)
	}
	context := strings.Join(parts, "\n\n")

	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: systemPersona})

	recent := history
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	for _, turn := range recent {
		messages = append(messages, models.Message{Role: turn.Role, Content: turn.Content})
	}

	constraint := detailedConstraint
	if style == StyleBrief {
		constraint = briefConstraint
	}

	prompt := fmt.Sprintf("Here's some info about Indium Technologies:\n\n%s\n\nQuestion: %s\n\n%s",
		context, question, constraint)
	messages = append(messages, models.Message{Role: models.RoleUser, Content: prompt})

	return messages
}

// buildSmallTalkPayload is the simpler prompt for the small-talk path. No
// retrieval context and no history; the generator replies in kind.
func buildSmallTalkPayload(question string) []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: "You are a friendly chatbot. Reply naturally to: " + question},
	}
}
