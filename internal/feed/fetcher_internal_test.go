package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsbrief/internal/domain"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>The Daily Star</title>
  <link>https://www.thedailystar.net/</link>
  <item>
    <title>First headline</title>
    <link>https://www.thedailystar.net/news/first</link>
    <pubDate>Mon, 11 Aug 2025 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Second headline</title>
    <link>https://www.thedailystar.net/news/second</link>
    <pubDate>Mon, 11 Aug 2025 08:00:00 +0000</pubDate>
  </item>
  <item>
    <title></title>
    <link>https://www.thedailystar.net/news/broken</link>
  </item>
  <item>
    <title>Third headline</title>
    <link>https://www.thedailystar.net/news/third</link>
  </item>
</channel>
</rss>`

func serveRSS(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		if _, err := w.Write([]byte(rssBody)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
}

func TestLatestReturnsHeadlines(t *testing.T) {
	server := serveRSS(t)
	defer server.Close()

	fetcher := NewFetcher(server.Client(), slog.Default())

	items, err := fetcher.Latest(context.Background(), domain.SourceProfile{
		Name:    "The Daily Star",
		FeedURL: server.URL,
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items (broken one skipped), got %d", len(items))
	}

	if items[0].Title != "First headline" ||
		items[0].URL != "https://www.thedailystar.net/news/first" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}

	if items[0].Published.IsZero() {
		t.Fatalf("expected parsed publish time, got zero")
	}

	if !items[2].Published.IsZero() {
		t.Fatalf("expected zero publish time for item without pubDate")
	}
}

func TestLatestHonorsLimit(t *testing.T) {
	server := serveRSS(t)
	defer server.Close()

	fetcher := NewFetcher(server.Client(), slog.Default())

	items, err := fetcher.Latest(context.Background(), domain.SourceProfile{
		Name:    "The Daily Star",
		FeedURL: server.URL,
	}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestLatestNoFeedURL(t *testing.T) {
	fetcher := NewFetcher(http.DefaultClient, slog.Default())

	_, err := fetcher.Latest(context.Background(), domain.SourceProfile{
		Name: "Daily Manab Zamin",
	}, 10)
	if !errors.Is(err, ErrNoFeed) {
		t.Fatalf("expected ErrNoFeed, got %v", err)
	}
}

func TestLatestFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), slog.Default())

	_, err := fetcher.Latest(context.Background(), domain.SourceProfile{
		Name:    "The Daily Star",
		FeedURL: server.URL,
	}, 10)
	if err == nil {
		t.Fatalf("expected error for failing feed")
	}
}
