package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"newsbrief/internal/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

// MinWords is the smallest extraction considered a real article.
const MinWords = 50

var (
	ErrFetch               = errors.New("article fetch failed")
	ErrInsufficientContent = errors.New("content too short or invalid")
)

type Extractor struct {
	client *http.Client
	log    *slog.Logger
}

func New(client *http.Client, log *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{}
	}

	return &Extractor{client: client, log: log}
}

// Extract fetches pageURL and collects paragraph text from content
// containers. A container is a div whose whitespace-normalized class
// attribute equals one of the selectors exactly; class order matters and
// a partial class-list match does not count. Paragraphs are gathered per
// selector in the given order, in document order within each, trimmed
// and joined with newlines.
func (e *Extractor) Extract(
	ctx context.Context,
	pageURL string,
	selectors []string,
) (domain.ExtractedContent, error) {
	if len(selectors) == 0 {
		return domain.ExtractedContent{}, errors.New("no selectors")
	}

	resp, err := e.fetch(ctx, pageURL)
	if err != nil {
		return domain.ExtractedContent{}, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", pageURL)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("create document from reader: %w", err)
	}

	return contentFromText(collectParagraphs(doc, selectors))
}

// ExtractReadable fetches pageURL and extracts the main article text
// heuristically, for pages without a configured selector.
func (e *Extractor) ExtractReadable(
	ctx context.Context,
	pageURL string,
) (domain.ExtractedContent, error) {
	resp, err := e.fetch(ctx, pageURL)
	if err != nil {
		return domain.ExtractedContent{}, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", pageURL)
		}
	}()

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("extract readable content: %w", err)
	}

	return contentFromText(strings.TrimSpace(article.TextContent))
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", pageURL)
		}

		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	return resp, nil
}

func collectParagraphs(doc *goquery.Document, selectors []string) string {
	var paragraphs []string

	for _, selector := range selectors {
		want := normalizeClassAttr(selector)
		if want == "" {
			continue
		}

		doc.Find("div").Each(func(_ int, div *goquery.Selection) {
			class, ok := div.Attr("class")
			if !ok || normalizeClassAttr(class) != want {
				return
			}

			div.Find("p").Each(func(_ int, p *goquery.Selection) {
				paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
			})
		})
	}

	return strings.Join(paragraphs, "\n")
}

func normalizeClassAttr(class string) string {
	return strings.Join(strings.Fields(class), " ")
}

func contentFromText(text string) (domain.ExtractedContent, error) {
	wordCount := len(strings.Fields(text))
	if wordCount < MinWords {
		return domain.ExtractedContent{}, fmt.Errorf(
			"%w: %d words, need at least %d",
			ErrInsufficientContent,
			wordCount,
			MinWords,
		)
	}

	return domain.ExtractedContent{Text: text, WordCount: wordCount}, nil
}
