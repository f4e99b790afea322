package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psundar/indium-chat/internal/models"
	"github.com/psundar/indium-chat/pkg/pipeline"
	"github.com/psundar/indium-chat/pkg/session"
	"github.com/psundar/indium-chat/pkg/store"
)

type fixedEmbedder struct{}

func (fixedEmbedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (e fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type fixedRetriever struct {
	docs []models.Document
}

func (r fixedRetriever) Retrieve(ctx context.Context, question string) ([]models.Document, error) {
	return r.docs, nil
}

type fixedGenerator struct {
	answer string
	err    error
}

func (g fixedGenerator) Generate(ctx context.Context, messages []models.Message, temperature float64, maxTokens int) (string, error) {
	return g.answer, g.err
}

func newTestServer(t *testing.T, generator fixedGenerator) *Server {
	t.Helper()

	corpus := []models.Document{
		{ID: "doc_0", URL: "https://indium.tech/testing", Title: "Testing", Content: "testing services"},
	}
	idx := store.NewMemoryStore()
	require.NoError(t, idx.Add(context.Background(), [][]float32{{1, 0, 0}}, corpus))

	attributor := pipeline.NewSourceAttributor(fixedEmbedder{}, idx, corpus, 0.6, 3)
	sessions := session.NewStore(session.Config{})
	p := pipeline.New(fixedRetriever{docs: corpus}, generator, attributor, sessions, 0)

	return New(Config{Address: ":0"}, p)
}

func postAsk(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAsk(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "Indium offers testing services."})

	rec := postAsk(t, s, `{"question": "What testing services does Indium Technologies offer?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, strings.HasPrefix(resp.Answer, "Indium offers testing services."))
	assert.Contains(t, resp.Answer, "[Testing](https://indium.tech/testing)")
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "https://indium.tech/testing", resp.Sources[0].URL)
	assert.NotEmpty(t, resp.SessionID)
}

func TestAskReusesSession(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "Hello!"})

	rec := postAsk(t, s, `{"question": "hello"}`)
	var first askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = postAsk(t, s, `{"question": "hello again", "session_id": "`+first.SessionID+`"}`)
	var second askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestAskFailureMapsToApology(t *testing.T) {
	s := newTestServer(t, fixedGenerator{err: errors.New("provider down")})

	rec := postAsk(t, s, `{"question": "What services does Indium Technologies offer?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, apologyAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	// The error detail never reaches the client.
	assert.NotContains(t, rec.Body.String(), "provider down")
}

func TestAskInvalidBody(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "ok"})

	rec := postAsk(t, s, `{"question": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskEmptyQuestion(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "ok"})

	rec := postAsk(t, s, `{"question": ""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Please provide a question.", resp.Answer)
	assert.Empty(t, resp.Sources)
}

func TestSessionHistory(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "Hi there!"})

	rec := postAsk(t, s, `{"question": "hello"}`)
	var asked askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asked))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+asked.SessionID+"/history", nil)
	histRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(histRec, req)

	require.Equal(t, http.StatusOK, histRec.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(histRec.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
	assert.Equal(t, models.ConversationTurn{Role: models.RoleUser, Content: "hello"}, resp.History[0])
	assert.Equal(t, models.ConversationTurn{Role: models.RoleAssistant, Content: "Hi there!"}, resp.History[1])
}

func TestSessionHistoryUnknownID(t *testing.T) {
	s := newTestServer(t, fixedGenerator{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/never-seen/history", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history": []}`, rec.Body.String())
}
