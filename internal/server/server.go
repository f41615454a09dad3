package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/internal/domain"
	"newsbrief/internal/extract"
	"newsbrief/internal/feed"
	"newsbrief/internal/runner"
	"newsbrief/internal/session"
	"newsbrief/internal/source"
	"newsbrief/internal/summarize"
)

const (
	sessionCookieName   = "nb_session"
	sessionCookieMaxAge = int(24 * time.Hour / time.Second)
)

// Defaults are the word bounds applied when a request leaves them
// unset.
type Defaults struct {
	MinWords int
	MaxWords int
}

// Server exposes the summarization pipeline over HTTP: a JSON API plus
// the embedded single-page UI.
type Server struct {
	engine   *gin.Engine
	resolver *source.Resolver
	feeds    *feed.Fetcher
	sessions *sessionStore
	defaults Defaults
	log      *slog.Logger
	httpSrv  *http.Server
}

func New(
	resolver *source.Resolver,
	feeds *feed.Fetcher,
	pipeline session.Runner,
	defaults Defaults,
	log *slog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		resolver: resolver,
		feeds:    feeds,
		sessions: newSessionStore(pipeline, defaultMaxSessions),
		defaults: defaults,
		log:      log,
	}

	s.engine.Use(gin.Recovery())

	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/api/sources", s.handleSources)
	s.engine.GET("/api/feed", s.handleFeed)
	s.engine.GET("/api/session", s.handleSession)
	s.engine.POST("/api/input", s.handleInput)
	s.engine.POST("/api/summarize", s.handleSummarize)
	s.engine.POST("/api/regenerate", s.handleRegenerate)
	s.engine.POST("/api/reset", s.handleReset)

	return s
}

// Start begins serving HTTP in the background. Call Shutdown to stop.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.httpSrv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if serveErr := s.httpSrv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.log.Error("HTTP server stopped unexpectedly",
				"error", serveErr,
				"addr", addr)
		}
	}()

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}

	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type sourceResponse struct {
	Name    string `json:"name"`
	HasFeed bool   `json:"has_feed"`
}

func (s *Server) handleSources(c *gin.Context) {
	profiles := s.resolver.Profiles()

	sources := make([]sourceResponse, 0, len(profiles))
	for _, profile := range profiles {
		sources = append(sources, sourceResponse{
			Name:    profile.Name,
			HasFeed: profile.FeedURL != "",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sources":           sources,
		"default_min_words": s.defaults.MinWords,
		"default_max_words": s.defaults.MaxWords,
	})
}

type feedItemResponse struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Published string `json:"published,omitempty"`
}

func (s *Server) handleFeed(c *gin.Context) {
	name := strings.TrimSpace(c.Query("source"))

	profile, ok := s.resolver.Resolve(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown source %q", name), "kind": "validation"})
		return
	}

	items, err := s.feeds.Latest(c.Request.Context(), profile, feed.DefaultHeadlineLimit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	response := make([]feedItemResponse, 0, len(items))
	for _, item := range items {
		published := ""
		if !item.Published.IsZero() {
			published = item.Published.Format(time.RFC3339)
		}

		response = append(response, feedItemResponse{
			Title:     item.Title,
			URL:       item.URL,
			Published: published,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": response})
}

type inputRequest struct {
	Mode           string `json:"mode"`
	URL            string `json:"url"`
	Text           string `json:"text"`
	Source         string `json:"source"`
	CustomSelector string `json:"custom_selector"`
	MinWords       int    `json:"min_words"`
	MaxWords       int    `json:"max_words"`
}

func (r inputRequest) input(defaults Defaults) (domain.Input, error) {
	mode := domain.Mode(strings.ToLower(strings.TrimSpace(r.Mode)))
	if mode != domain.ModeURL && mode != domain.ModeText {
		return domain.Input{}, fmt.Errorf("unknown mode %q", r.Mode)
	}

	input := domain.Input{
		Mode:           mode,
		URL:            strings.TrimSpace(r.URL),
		Text:           strings.TrimSpace(r.Text),
		Source:         strings.TrimSpace(r.Source),
		CustomSelector: strings.TrimSpace(r.CustomSelector),
		MinWords:       r.MinWords,
		MaxWords:       r.MaxWords,
	}

	if input.MinWords == 0 {
		input.MinWords = defaults.MinWords
	}
	if input.MaxWords == 0 {
		input.MaxWords = defaults.MaxWords
	}

	return input, nil
}

type resultResponse struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

func (s *Server) handleInput(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	input, err := req.input(s.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	s.entry(c).controller(input.Mode).SetInput(input)

	c.Status(http.StatusNoContent)
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	input, err := req.input(s.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	result, err := s.entry(c).controller(input.Mode).Generate(c.Request.Context(), input)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resultResponse{Headline: result.Headline, Body: result.Body})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (r modeRequest) mode() (domain.Mode, error) {
	mode := domain.Mode(strings.ToLower(strings.TrimSpace(r.Mode)))
	if mode != domain.ModeURL && mode != domain.ModeText {
		return "", fmt.Errorf("unknown mode %q", r.Mode)
	}

	return mode, nil
}

func (s *Server) handleRegenerate(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	mode, err := req.mode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	result, err := s.entry(c).controller(mode).Regenerate(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resultResponse{Headline: result.Headline, Body: result.Body})
}

func (s *Server) handleReset(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	mode, err := req.mode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}

	s.entry(c).controller(mode).Home()

	c.Status(http.StatusNoContent)
}

type sessionResponse struct {
	Phase  string          `json:"phase"`
	Input  inputRequest    `json:"input"`
	Result *resultResponse `json:"result,omitempty"`
}

func (s *Server) handleSession(c *gin.Context) {
	mode := domain.Mode(strings.ToLower(strings.TrimSpace(c.Query("mode"))))
	if mode != domain.ModeURL && mode != domain.ModeText {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown mode %q", c.Query("mode")), "kind": "validation"})
		return
	}

	state := s.entry(c).controller(mode).Snapshot()

	response := sessionResponse{
		Phase: string(state.Phase),
		Input: inputRequest{
			Mode:           string(state.Input.Mode),
			URL:            state.Input.URL,
			Text:           state.Input.Text,
			Source:         state.Input.Source,
			CustomSelector: state.Input.CustomSelector,
			MinWords:       state.Input.MinWords,
			MaxWords:       state.Input.MaxWords,
		},
	}
	if state.Result != nil {
		response.Result = &resultResponse{
			Headline: state.Result.Headline,
			Body:     state.Result.Body,
		}
	}

	c.JSON(http.StatusOK, response)
}

// entry returns the session entry for the request's cookie, assigning a
// fresh session cookie when there is none.
func (s *Server) entry(c *gin.Context) *sessionEntry {
	id, err := c.Cookie(sessionCookieName)
	if err != nil || strings.TrimSpace(id) == "" {
		id, err = newSessionID()
		if err != nil {
			// Extremely unlikely; fall back to a shared anonymous session.
			s.log.ErrorContext(c.Request.Context(), "Failed to generate session ID",
				"error", err)

			id = "anonymous"
		}

		c.SetCookie(sessionCookieName, id, sessionCookieMaxAge, "/", "", false, true)
	}

	return s.sessions.get(id)
}

// writeError maps pipeline sentinels to an HTTP status and a stable
// error kind for the UI.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := "summarization"

	switch {
	case errors.Is(err, summarize.ErrNotConfigured):
		status = http.StatusServiceUnavailable
		kind = "configuration"
	case errors.Is(err, summarize.ErrInvalidWordRange),
		errors.Is(err, runner.ErrUnknownSource):
		status = http.StatusBadRequest
		kind = "validation"
	case errors.Is(err, extract.ErrFetch):
		status = http.StatusBadGateway
		kind = "network"
	case errors.Is(err, extract.ErrInsufficientContent):
		status = http.StatusUnprocessableEntity
		kind = "insufficient_content"
	case errors.Is(err, summarize.ErrEmptyResponse):
		status = http.StatusBadGateway
		kind = "empty_response"
	case errors.Is(err, session.ErrBusy):
		status = http.StatusConflict
		kind = "busy"
	case errors.Is(err, session.ErrNoResult), errors.Is(err, session.ErrSuperseded):
		status = http.StatusConflict
		kind = "no_result"
	case errors.Is(err, feed.ErrNoFeed):
		status = http.StatusNotFound
		kind = "validation"
	}

	s.log.WarnContext(c.Request.Context(), "Request failed",
		"error", err,
		"kind", kind,
		"path", c.Request.URL.Path)

	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
