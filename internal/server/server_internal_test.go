package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"newsbrief/internal/domain"
	"newsbrief/internal/extract"
	"newsbrief/internal/feed"
	"newsbrief/internal/source"
)

type stubRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *stubRunner) Run(_ context.Context, _ domain.Input) (domain.SummaryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return domain.SummaryResult{}, r.err
	}

	return domain.SummaryResult{
		Headline: fmt.Sprintf("Headline %d", r.calls),
		Body:     "Body.",
	}, nil
}

func newTestServer(t *testing.T, run *stubRunner) *Server {
	t.Helper()

	resolver, err := source.NewResolver(source.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log := slog.Default()

	return New(
		resolver,
		feed.NewFetcher(http.DefaultClient, log),
		run,
		Defaults{MinWords: 70, MaxWords: 150},
		log,
	)
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path string, payload any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	c.t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	var fields map[string]json.RawMessage
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
			c.t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
		}
	}

	return rec, fields
}

func (c *client) str(fields map[string]json.RawMessage, key string) string {
	c.t.Helper()

	var value string
	if err := json.Unmarshal(fields[key], &value); err != nil {
		c.t.Fatalf("unmarshal %q: %v", key, err)
	}

	return value
}

func summarizePayload() map[string]any {
	return map[string]any{
		"mode":      "url",
		"url":       "https://www.thedailystar.net/news/article",
		"source":    "The Daily Star",
		"min_words": 70,
		"max_words": 150,
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &stubRunner{})
	c := &client{t: t, handler: s.Handler()}

	rec, _ := c.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestIndexServesPage(t *testing.T) {
	s := newTestServer(t, &stubRunner{})
	c := &client{t: t, handler: s.Handler()}

	rec, _ := c.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "newsbrief") {
		t.Fatalf("page body missing app markup")
	}
}

func TestSourcesListsProfilesAndDefaults(t *testing.T) {
	s := newTestServer(t, &stubRunner{})
	c := &client{t: t, handler: s.Handler()}

	rec, fields := c.do(http.MethodGet, "/api/sources", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var sources []sourceResponse
	if err := json.Unmarshal(fields["sources"], &sources); err != nil {
		t.Fatalf("unmarshal sources: %v", err)
	}

	if len(sources) != 5 {
		t.Fatalf("expected 5 default sources, got %d", len(sources))
	}

	found := false
	for _, src := range sources {
		if src.Name == "The Daily Star" {
			found = true
		}
	}
	if !found {
		t.Fatalf("The Daily Star missing from %+v", sources)
	}
}

func TestSummarizeFlow(t *testing.T) {
	run := &stubRunner{}
	s := newTestServer(t, run)
	c := &client{t: t, handler: s.Handler()}

	rec, fields := c.do(http.MethodPost, "/api/summarize", summarizePayload())
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	if c.str(fields, "headline") != "Headline 1" {
		t.Fatalf("unexpected headline: %s", rec.Body.String())
	}

	rec, fields = c.do(http.MethodGet, "/api/session?mode=url", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if c.str(fields, "phase") != "shown" {
		t.Fatalf("expected shown phase, got %s", rec.Body.String())
	}
}

func TestRegenerateReplacesResult(t *testing.T) {
	run := &stubRunner{}
	s := newTestServer(t, run)
	c := &client{t: t, handler: s.Handler()}

	if rec, _ := c.do(http.MethodPost, "/api/summarize", summarizePayload()); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec, fields := c.do(http.MethodPost, "/api/regenerate", map[string]any{"mode": "url"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}

	if c.str(fields, "headline") != "Headline 2" {
		t.Fatalf("regenerate did not re-run pipeline: %s", rec.Body.String())
	}
}

func TestRegenerateWithoutResultConflicts(t *testing.T) {
	s := newTestServer(t, &stubRunner{})
	c := &client{t: t, handler: s.Handler()}

	rec, fields := c.do(http.MethodPost, "/api/regenerate", map[string]any{"mode": "url"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if c.str(fields, "kind") != "no_result" {
		t.Fatalf("unexpected kind: %s", rec.Body.String())
	}
}

func TestInputChangeClearsShownResult(t *testing.T) {
	run := &stubRunner{}
	s := newTestServer(t, run)
	c := &client{t: t, handler: s.Handler()}

	if rec, _ := c.do(http.MethodPost, "/api/summarize", summarizePayload()); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	changed := summarizePayload()
	changed["url"] = "https://www.thedailystar.net/news/other-article"

	if rec, _ := c.do(http.MethodPost, "/api/input", changed); rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec, fields := c.do(http.MethodGet, "/api/session?mode=url", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if c.str(fields, "phase") != "idle" {
		t.Fatalf("expected idle phase after input change, got %s", rec.Body.String())
	}

	if _, ok := fields["result"]; ok {
		t.Fatalf("stale result still present: %s", rec.Body.String())
	}
}

func TestResetClearsSession(t *testing.T) {
	run := &stubRunner{}
	s := newTestServer(t, run)
	c := &client{t: t, handler: s.Handler()}

	if rec, _ := c.do(http.MethodPost, "/api/summarize", summarizePayload()); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if rec, _ := c.do(http.MethodPost, "/api/reset", map[string]any{"mode": "url"}); rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec, fields := c.do(http.MethodGet, "/api/session?mode=url", nil)
	if c.str(fields, "phase") != "idle" {
		t.Fatalf("expected idle phase after reset, got %s", rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"fetch failure", fmt.Errorf("wrapped: %w", extract.ErrFetch), http.StatusBadGateway, "network"},
		{"short content", fmt.Errorf("wrapped: %w", extract.ErrInsufficientContent), http.StatusUnprocessableEntity, "insufficient_content"},
		{"unknown failure", fmt.Errorf("llm exploded"), http.StatusInternalServerError, "summarization"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &stubRunner{err: tc.err})
			c := &client{t: t, handler: s.Handler()}

			rec, fields := c.do(http.MethodPost, "/api/summarize", summarizePayload())
			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
			}

			if c.str(fields, "kind") != tc.wantKind {
				t.Fatalf("unexpected kind: %s", rec.Body.String())
			}
		})
	}
}

func TestUnknownModeRejected(t *testing.T) {
	s := newTestServer(t, &stubRunner{})
	c := &client{t: t, handler: s.Handler()}

	payload := summarizePayload()
	payload["mode"] = "audio"

	rec, fields := c.do(http.MethodPost, "/api/summarize", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if c.str(fields, "kind") != "validation" {
		t.Fatalf("unexpected kind: %s", rec.Body.String())
	}
}

func TestSessionsAreIndependentPerCookie(t *testing.T) {
	run := &stubRunner{}
	s := newTestServer(t, run)

	first := &client{t: t, handler: s.Handler()}
	second := &client{t: t, handler: s.Handler()}

	if rec, _ := first.do(http.MethodPost, "/api/summarize", summarizePayload()); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec, fields := second.do(http.MethodGet, "/api/session?mode=url", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if second.str(fields, "phase") != "idle" {
		t.Fatalf("second session must not see first session's state: %s", rec.Body.String())
	}
}

func TestURLAndTextTargetsAreIndependent(t *testing.T) {
	run := &stubRunner{}
	s := newTestServer(t, run)
	c := &client{t: t, handler: s.Handler()}

	if rec, _ := c.do(http.MethodPost, "/api/summarize", summarizePayload()); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec, fields := c.do(http.MethodGet, "/api/session?mode=text", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if c.str(fields, "phase") != "idle" {
		t.Fatalf("text target must stay idle: %s", rec.Body.String())
	}
}
