package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/psundar/indium-chat/internal/models"
	"github.com/psundar/indium-chat/internal/types"
	"github.com/psundar/indium-chat/pkg/session"
)

// emptyInputAnswer is the fixed response for a blank question. A normal
// result, not an error; the session is not touched.
const emptyInputAnswer = "Please provide a question."

// Small-talk generation parameters. Higher temperature, short replies.
const (
	smallTalkTemperature = 0.8
	smallTalkMaxTokens   = 40
)

// Pipeline turns a raw user question into a grounded, styled, sanitized
// answer with attributed sources, multiplexing conversation state per
// session. One request is handled start to finish per call; retrieval,
// generation, and attribution are strictly sequential.
type Pipeline struct {
	retriever    types.Retriever
	generator    types.Generator
	attributor   *SourceAttributor
	sessions     *session.Store
	historyLimit int
}

// Result is the outcome of answering one question.
type Result struct {
	Answer    string
	Sources   []models.SourceCitation
	SessionID string
}

// New builds a pipeline. historyLimit caps the prior turns included in the
// prompt payload; zero or negative means the default window.
func New(retriever types.Retriever, generator types.Generator, attributor *SourceAttributor, sessions *session.Store, historyLimit int) *Pipeline {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryWindow
	}
	return &Pipeline{
		retriever:    retriever,
		generator:    generator,
		attributor:   attributor,
		sessions:     sessions,
		historyLimit: historyLimit,
	}
}

// Answer runs one question through the pipeline. A missing sessionID gets a
// fresh identifier, returned in the result for reuse on subsequent turns.
// Failures are returned typed (ErrRetrieval, llm.ErrGeneration,
// llm.MalformedResponseError); mapping them to user-facing text is the
// boundary's job.
func (p *Pipeline) Answer(ctx context.Context, question, sessionID string) (Result, error) {
	if sessionID == "" {
		sessionID = session.NewID()
	}

	if strings.TrimSpace(question) == "" {
		return Result{Answer: emptyInputAnswer, SessionID: sessionID}, nil
	}

	triage := Classify(question)

	// Snapshot history before recording the user turn, so the prompt payload
	// excludes the current question by construction.
	history := p.sessions.GetOrCreate(sessionID)
	p.sessions.Append(sessionID, models.RoleUser, question)

	var result Result
	var err error
	if triage.SmallTalk {
		result, err = p.answerSmallTalk(ctx, question)
	} else {
		result, err = p.answerKnowledge(ctx, question, history, triage.Style)
	}
	if err != nil {
		return Result{SessionID: sessionID}, err
	}

	result.SessionID = sessionID
	p.sessions.Append(sessionID, models.RoleAssistant, result.Answer)
	return result, nil
}

// answerSmallTalk generates directly; retrieval and attribution are never
// invoked on this path.
func (p *Pipeline) answerSmallTalk(ctx context.Context, question string) (Result, error) {
	answer, err := p.generator.Generate(ctx, buildSmallTalkPayload(question), smallTalkTemperature, smallTalkMaxTokens)
	if err != nil {
		return Result{}, err
	}
	return Result{Answer: answer}, nil
}

func (p *Pipeline) answerKnowledge(ctx context.Context, question string, history []models.ConversationTurn, style Style) (Result, error) {
	docs, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	payload := BuildContext(question, docs, history, style, p.historyLimit)

	answer, err := p.generator.Generate(ctx, payload, 0, 0)
	if err != nil {
		return Result{}, err
	}

	citations, err := p.attributor.SelectSources(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	answer = Sanitize(answer) + RenderSources(citations)

	return Result{Answer: answer, Sources: citations}, nil
}

// History returns the recorded turns for a session; empty for unknown ids.
// A pure read: it never creates a session or affects eviction order.
func (p *Pipeline) History(sessionID string) []models.ConversationTurn {
	return p.sessions.Get(sessionID)
}
