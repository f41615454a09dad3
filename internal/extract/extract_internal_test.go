package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i+1)
	}

	return strings.Join(parts, " ")
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(html)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
}

func TestExtractorCollectsSelectorParagraphs(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<div class="pb-20 clearfix">
  <p> %s </p>
  <p>%s</p>
  <p>%s</p>
</div>
<div class="sidebar"><p>unrelated text</p></div>
</body></html>`, words(20), words(20), words(20))

	server := serveHTML(t, html)
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	content, err := extractor.Extract(context.Background(), server.URL, []string{"pb-20 clearfix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.WordCount != 60 {
		t.Fatalf("unexpected word count: %d", content.WordCount)
	}

	if strings.Contains(content.Text, "unrelated") {
		t.Fatalf("expected only selector paragraphs, got %q", content.Text)
	}

	lines := strings.Split(content.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 paragraphs joined by newlines, got %d", len(lines))
	}

	if lines[0] != words(20) {
		t.Fatalf("expected trimmed paragraph, got %q", lines[0])
	}
}

func TestExtractorWordCountBoundary(t *testing.T) {
	for _, tc := range []struct {
		wordCount int
		wantErr   bool
	}{
		{wordCount: 49, wantErr: true},
		{wordCount: 50, wantErr: false},
	} {
		html := fmt.Sprintf(
			`<html><body><div class="article-body"><p>%s</p></div></body></html>`,
			words(tc.wordCount),
		)

		server := serveHTML(t, html)

		extractor := New(server.Client(), slog.Default())
		content, err := extractor.Extract(context.Background(), server.URL, []string{"article-body"})
		server.Close()

		if tc.wantErr {
			if !errors.Is(err, ErrInsufficientContent) {
				t.Fatalf("expected insufficient content error for %d words, got %v", tc.wordCount, err)
			}
			continue
		}

		if err != nil {
			t.Fatalf("unexpected error for %d words: %v", tc.wordCount, err)
		}

		if content.WordCount != tc.wordCount {
			t.Fatalf("unexpected word count: %d", content.WordCount)
		}
	}
}

func TestExtractorMatchesFullClassAttribute(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<div class="pb-20 clearfix extra"><p>%s</p></div>
<div class="  pb-20   clearfix  "><p>%s</p></div>
</body></html>`, words(60), words(60))

	server := serveHTML(t, html)
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	content, err := extractor.Extract(context.Background(), server.URL, []string{"pb-20 clearfix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.WordCount != 60 {
		t.Fatalf("expected only the exact-attribute div to match, got %d words", content.WordCount)
	}
}

func TestExtractorSelectorOrder(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<div class="second-block"><p>beta %s</p></div>
<div class="first-block"><p>alpha %s</p></div>
</body></html>`, words(30), words(30))

	server := serveHTML(t, html)
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	content, err := extractor.Extract(
		context.Background(),
		server.URL,
		[]string{"first-block", "second-block"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(content.Text, "alpha") {
		t.Fatalf("expected first selector's paragraphs first, got %q", content.Text[:16])
	}
}

func TestExtractorIncludesNestedParagraphs(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
<div class="article-body">
  <p>%s</p>
  <div class="inner"><p>%s</p></div>
</div>
</body></html>`, words(30), words(30))

	server := serveHTML(t, html)
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	content, err := extractor.Extract(context.Background(), server.URL, []string{"article-body"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.WordCount != 60 {
		t.Fatalf("expected nested paragraphs to be included, got %d words", content.WordCount)
	}
}

func TestExtractorFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	_, err := extractor.Extract(context.Background(), server.URL, []string{"article-body"})
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestExtractorNoMatchingContainer(t *testing.T) {
	server := serveHTML(t, `<html><body><div class="other"><p>short</p></div></body></html>`)
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	_, err := extractor.Extract(context.Background(), server.URL, []string{"article-body"})
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("expected insufficient content error, got %v", err)
	}
}

func TestExtractReadable(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>This is a test article with meaningful content that should be extracted by the readability parser. It contains enough text to be considered article content.</p>
<p>The readability library needs a reasonable amount of content to identify the main article body. This second paragraph adds more substance to the article.</p>
<p>Adding a third paragraph ensures the content is substantial enough for extraction. The heuristics look for the main content area of the page.</p>
</article>
</body>
</html>`

	server := serveHTML(t, html)
	defer server.Close()

	extractor := New(server.Client(), slog.Default())

	content, err := extractor.ExtractReadable(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.WordCount < MinWords {
		t.Fatalf("expected at least %d words, got %d", MinWords, content.WordCount)
	}

	if !strings.Contains(content.Text, "readability parser") {
		t.Fatalf("expected article text, got %q", content.Text)
	}
}
