package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newsbrief/internal/domain"
	"newsbrief/internal/extract"
	"newsbrief/internal/source"
	"newsbrief/internal/summarize"
)

// SourceAuto selects heuristic extraction instead of a configured
// profile.
const SourceAuto = "Auto"

var ErrUnknownSource = errors.New("unknown source and no selector given")

// Runner executes the resolve → extract → summarize pipeline for one
// user action. It is stateless; session state lives in the controller
// that calls it.
type Runner struct {
	resolver   *source.Resolver
	extractor  *extract.Extractor
	summarizer *summarize.Summarizer
	log        *slog.Logger
}

func New(
	resolver *source.Resolver,
	extractor *extract.Extractor,
	summarizer *summarize.Summarizer,
	log *slog.Logger,
) *Runner {
	return &Runner{
		resolver:   resolver,
		extractor:  extractor,
		summarizer: summarizer,
		log:        log,
	}
}

func (r *Runner) Run(ctx context.Context, input domain.Input) (domain.SummaryResult, error) {
	content, err := r.content(ctx, input)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	result, err := r.summarizer.Summarize(ctx, domain.SummaryRequest{
		Content:  content.Text,
		MinWords: input.MinWords,
		MaxWords: input.MaxWords,
	})
	if err != nil {
		return domain.SummaryResult{}, err
	}

	r.log.InfoContext(ctx, "Summary is generated",
		"mode", input.Mode,
		"source", input.Source,
		"contentWords", content.WordCount)

	return result, nil
}

func (r *Runner) content(ctx context.Context, input domain.Input) (domain.ExtractedContent, error) {
	switch input.Mode {
	case domain.ModeText:
		return textContent(input.Text)
	case domain.ModeURL:
		return r.extractURL(ctx, input)
	default:
		return domain.ExtractedContent{}, fmt.Errorf("unknown mode %q", input.Mode)
	}
}

// extractURL picks selectors for the URL: an explicit custom selector
// wins, then the chosen profile, then a profile matched by domain. The
// Auto source (and the no-match fallback) uses heuristic extraction.
func (r *Runner) extractURL(ctx context.Context, input domain.Input) (domain.ExtractedContent, error) {
	pageURL := strings.TrimSpace(input.URL)
	if pageURL == "" {
		return domain.ExtractedContent{}, errors.New("url is empty")
	}

	if selector := strings.TrimSpace(input.CustomSelector); selector != "" {
		return r.extractor.Extract(ctx, pageURL, []string{selector})
	}

	sourceName := strings.TrimSpace(input.Source)
	if strings.EqualFold(sourceName, SourceAuto) {
		return r.extractor.ExtractReadable(ctx, pageURL)
	}

	identifier := sourceName
	if identifier == "" {
		identifier = pageURL
	}

	profile, ok := r.resolver.Resolve(identifier)
	if !ok {
		if sourceName != "" {
			return domain.ExtractedContent{}, fmt.Errorf("%w: %q", ErrUnknownSource, sourceName)
		}

		r.log.InfoContext(ctx, "No profile matches URL, falling back to readability",
			"url", pageURL)

		return r.extractor.ExtractReadable(ctx, pageURL)
	}

	return r.extractor.Extract(ctx, pageURL, profile.Selectors)
}

func textContent(text string) (domain.ExtractedContent, error) {
	text = strings.TrimSpace(text)

	wordCount := len(strings.Fields(text))
	if wordCount < extract.MinWords {
		return domain.ExtractedContent{}, fmt.Errorf(
			"%w: %d words, need at least %d",
			extract.ErrInsufficientContent,
			wordCount,
			extract.MinWords,
		)
	}

	return domain.ExtractedContent{Text: text, WordCount: wordCount}, nil
}
