package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newsbrief/internal/domain"
)

// Allowed bounds for the requested summary length.
const (
	MinWordFloor = 50
	MaxWordCeil  = 250
)

// Sampling parameters sent with every model call.
const (
	samplingTemperature = 0.4
	samplingTopP        = 0.9
	maxOutputTokens     = 1024
)

var (
	ErrNotConfigured    = errors.New("summarizer is not configured")
	ErrInvalidWordRange = errors.New("invalid word range")
	ErrEmptyResponse    = errors.New("no response generated")
)

// Provider generates raw model output for a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer turns article text into a headline plus a length-bounded
// summary. Results are memoized by content and bounds. A nil provider
// yields ErrNotConfigured on every call, so a process without an API key
// still starts and surfaces the problem per action.
type Summarizer struct {
	provider Provider
	cache    *resultCache
	log      *slog.Logger
}

func New(provider Provider, cacheSize int, log *slog.Logger) *Summarizer {
	if cacheSize <= 0 {
		cacheSize = defaultCacheMaxEntries
	}

	return &Summarizer{
		provider: provider,
		cache:    newResultCache(cacheSize),
		log:      log,
	}
}

func (s *Summarizer) Summarize(
	ctx context.Context,
	req domain.SummaryRequest,
) (domain.SummaryResult, error) {
	if err := validateWordRange(req.MinWords, req.MaxWords); err != nil {
		return domain.SummaryResult{}, err
	}

	if s.provider == nil {
		return domain.SummaryResult{}, ErrNotConfigured
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.SummaryResult{}, errors.New("content is empty")
	}

	key := cacheKey(content, req.MinWords, req.MaxWords)
	if result, ok := s.cache.get(key); ok {
		s.log.InfoContext(ctx, "Summary cache hit",
			"wordRange", fmt.Sprintf("%d..%d", req.MinWords, req.MaxWords),
			"contentWords", len(strings.Fields(content)))

		return result, nil
	}

	raw, err := s.provider.Generate(ctx, buildPrompt(content, req.MinWords, req.MaxWords))
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("generate summary: %w", err)
	}

	result, err := splitResponse(raw)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	s.cache.set(key, result)

	return result, nil
}

func validateWordRange(minWords, maxWords int) error {
	if minWords < MinWordFloor || maxWords > MaxWordCeil || minWords > maxWords {
		return fmt.Errorf(
			"%w: %d..%d (allowed %d..%d, min not above max)",
			ErrInvalidWordRange,
			minWords,
			maxWords,
			MinWordFloor,
			MaxWordCeil,
		)
	}

	return nil
}

func buildPrompt(content string, minWords, maxWords int) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"You are a journalist summarizing content in %s. "+
			"Generate a headline and a summary within %d to %d words, "+
			"preserving the language and tone. "+
			"Put the headline alone on the first line.\n\n",
		languageName(content),
		minWords,
		maxWords,
	)
	b.WriteString("Content:\n")
	b.WriteString(content)

	return b.String()
}

func cacheKey(content string, minWords, maxWords int) string {
	hash := sha256.Sum256([]byte(content))

	return fmt.Sprintf("%s|%d|%d", hex.EncodeToString(hash[:]), minWords, maxWords)
}

// splitResponse parses the model output: the first line is the headline,
// the remaining non-empty lines joined with spaces form the body.
func splitResponse(raw string) (domain.SummaryResult, error) {
	raw = strings.TrimSpace(stripCodeFence(raw))
	if raw == "" {
		return domain.SummaryResult{}, ErrEmptyResponse
	}

	lines := strings.Split(raw, "\n")
	headline := strings.TrimSpace(lines[0])

	var bodyParts []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bodyParts = append(bodyParts, line)
	}

	return domain.SummaryResult{
		Headline: headline,
		Body:     strings.Join(bodyParts, " "),
	}, nil
}

// stripCodeFence unwraps responses the model put inside a markdown code
// block, possibly with a language tag after the opening fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
