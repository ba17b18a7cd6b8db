// Package ai implements the external text-generation provider client.
// Requests carry a free-text prompt plus a JSON schema the provider is asked
// to shape its response after; responses come back as raw JSON text.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fleetwatch/config"
	"fleetwatch/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// IsRateLimited classifies provider errors that must extend the local
// cooldown: HTTP 429, or an error message mentioning rate or quota limits.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "rate") || strings.Contains(msg, "quota")
}

type geminiClient struct {
	session *http.Client
	baseURL string
	model   string
	apiKey  string
}

// NewClient creates a text-generation client for the configured provider
// model. The empty-credential case is not an error here; callers gate calls
// on credential presence before invoking Generate.
func NewClient(cfg *config.AIConfig) service.TextGenerator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &geminiClient{
		session: &http.Client{Timeout: cfg.Timeout},
		baseURL: baseURL,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate invokes the provider's generateContent endpoint and returns the
// text of the first candidate.
func (c *geminiClient) Generate(ctx context.Context, req *service.GenerateRequest) (string, error) {
	payload := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}
	if req.Schema != nil {
		payload.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal generate request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create generate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.session.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "call provider")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read provider response")
	}

	if resp.StatusCode >= 400 {
		return "", &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(respBody)),
		}
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, "decode provider response")
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("provider returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
