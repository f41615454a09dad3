package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiProvider calls the Gemini REST generateContent endpoint.
type GeminiProvider struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
	log     *slog.Logger
}

func NewGeminiProvider(apiKey, model string, client *http.Client, log *slog.Logger) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("model is empty")
	}

	if client == nil {
		client = &http.Client{}
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		client:  client,
		baseURL: geminiBaseURL,
		log:     log,
	}, nil
}

// newGeminiProviderWithURL overrides the endpoint for tests.
func newGeminiProviderWithURL(
	apiKey, model string,
	client *http.Client,
	baseURL string,
	log *slog.Logger,
) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		client:  client,
		baseURL: baseURL,
		log:     log,
	}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:     samplingTemperature,
			TopP:            samplingTopP,
			MaxOutputTokens: maxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			g.log.ErrorContext(ctx, "Failed to close response body",
				"error", closeErr,
				"model", g.model)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"unexpected status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(respBody)),
		)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}
