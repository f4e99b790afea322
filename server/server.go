package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/psundar/indium-chat/internal/models"
	"github.com/psundar/indium-chat/pkg/llm"
	"github.com/psundar/indium-chat/pkg/pipeline"
)

// apologyAnswer is the single user-facing mapping from pipeline failure to
// response text. The raw cause is logged, never returned.
const apologyAnswer = "Sorry, I couldn't come up with an answer just now. Please try again in a moment."

type Config struct {
	Address   string
	StaticDir string
}

// Server is the HTTP boundary: the ask endpoint, session history, health
// check, and the static chat UI.
type Server struct {
	config   Config
	pipeline *pipeline.Pipeline
	logger   *log.Logger
	echo     *echo.Echo
}

func New(config Config, p *pipeline.Pipeline) *Server {
	s := &Server{
		config:   config,
		pipeline: p,
		logger:   log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	api := e.Group("/api")
	api.POST("/ask", s.handleAsk)
	api.GET("/sessions/:id/history", s.handleHistory)

	if config.StaticDir != "" {
		if _, err := os.Stat(config.StaticDir); err == nil {
			e.Static("/static", config.StaticDir)
			e.File("/", filepath.Join(config.StaticDir, "chat.html"))
		}
	}

	s.echo = e
	return s
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	Answer    string                  `json:"answer"`
	Sources   []models.SourceCitation `json:"sources"`
	SessionID string                  `json:"session_id"`
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.pipeline.Answer(c.Request().Context(), req.Question, req.SessionID)
	if err != nil {
		s.logAnswerFailure(req.SessionID, err)
		return c.JSON(http.StatusOK, askResponse{
			Answer:    apologyAnswer,
			Sources:   []models.SourceCitation{},
			SessionID: result.SessionID,
		})
	}

	sources := result.Sources
	if sources == nil {
		sources = []models.SourceCitation{}
	}

	return c.JSON(http.StatusOK, askResponse{
		Answer:    result.Answer,
		Sources:   sources,
		SessionID: result.SessionID,
	})
}

func (s *Server) logAnswerFailure(sessionID string, err error) {
	var malformed *llm.MalformedResponseError
	switch {
	case errors.As(err, &malformed):
		s.logger.Printf("ask failed (session %s): malformed provider response: %s", sessionID, malformed.Raw)
	case errors.Is(err, llm.ErrGeneration):
		s.logger.Printf("ask failed (session %s): generation: %v", sessionID, err)
	case errors.Is(err, pipeline.ErrRetrieval):
		s.logger.Printf("ask failed (session %s): retrieval: %v", sessionID, err)
	default:
		s.logger.Printf("ask failed (session %s): %v", sessionID, err)
	}
}

type historyResponse struct {
	History []models.ConversationTurn `json:"history"`
}

func (s *Server) handleHistory(c echo.Context) error {
	turns := s.pipeline.History(c.Param("id"))
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	return c.JSON(http.StatusOK, historyResponse{History: turns})
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	s.logger.Printf("listening on %s", s.config.Address)
	return s.echo.Start(s.config.Address)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
