package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/domain"
)

const DefaultHeadlineLimit = 10

var ErrNoFeed = errors.New("source has no feed URL")

// Fetcher lists the latest headlines of a source's RSS/Atom feed so the
// user can pick an article instead of pasting a URL.
type Fetcher struct {
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewFetcher(client *http.Client, log *slog.Logger) *Fetcher {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}

	return &Fetcher{parser: parser, log: log}
}

// Latest fetches the profile's feed and returns up to limit items,
// newest first in the order the feed publishes them.
func (f *Fetcher) Latest(
	ctx context.Context,
	profile domain.SourceProfile,
	limit int,
) ([]domain.FeedItem, error) {
	feedURL := strings.TrimSpace(profile.FeedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoFeed, profile.Name)
	}

	if limit <= 0 {
		limit = DefaultHeadlineLimit
	}

	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", feedURL, err)
	}

	items := make([]domain.FeedItem, 0, min(limit, len(parsed.Items)))

	for _, item := range parsed.Items {
		if len(items) >= limit {
			break
		}

		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			f.log.WarnContext(ctx, "Skipping feed item without title or link",
				"feedURL", feedURL,
				"title", title,
				"link", link)

			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		items = append(items, domain.FeedItem{
			Title:     title,
			URL:       link,
			Published: published,
		})
	}

	return items, nil
}
