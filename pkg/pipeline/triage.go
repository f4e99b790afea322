package pipeline

import (
	"regexp"
	"strings"
)

// Style is the answer length constraint chosen for a question.
type Style string

const (
	StyleBrief    Style = "brief"
	StyleDetailed Style = "detailed"
)

// Triage is the classification of a raw question.
type Triage struct {
	SmallTalk bool
	Style     Style
}

// Casual-language markers matched as whole words, case-insensitive. This is
// a heuristic, not semantic classification; false positives are acceptable.
var smallTalkRe = regexp.MustCompile(`\b(hi|hello|hey|bye|thanks|thank you|cool|awesome|okay|who are you|your name|welcome)\b`)

// Classify triages a question: small-talk detection plus brief/detailed
// style selection. Pure function of the question text.
func Classify(question string) Triage {
	return Triage{
		SmallTalk: smallTalkRe.MatchString(strings.ToLower(question)),
		Style:     classifyStyle(question),
	}
}

// classifyStyle picks brief for questions of at most 5 whitespace-separated
// tokens. Token counting is whitespace-based, not linguistic.
func classifyStyle(question string) Style {
	if len(strings.Fields(strings.TrimSpace(question))) <= 5 {
		return StyleBrief
	}
	return StyleDetailed
}
