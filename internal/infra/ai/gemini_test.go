package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetwatch/config"
	"fleetwatch/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) service.TextGenerator {
	return NewClient(&config.AIConfig{
		Model:   "test-model",
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: time.Second,
	})
}

func TestGeminiClient_GenerateReturnsFirstCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"estimatedCost\":\"$1,200 - $1,500\"}"}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	text, err := client.Generate(context.Background(), &service.GenerateRequest{
		Prompt: "quote this route",
		Schema: map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "estimatedCost")
}

func TestGeminiClient_GenerateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "resource exhausted", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Generate(context.Background(), &service.GenerateRequest{Prompt: "quote"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.True(t, IsRateLimited(err))
}

func TestGeminiClient_GenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Generate(context.Background(), &service.GenerateRequest{Prompt: "quote"})
	assert.Error(t, err)
}

func TestIsRateLimited_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "429", err: &StatusError{Code: 429, Body: "too many"}, want: true},
		{name: "quota message", err: errors.New("daily quota exceeded"), want: true},
		{name: "rate message", err: errors.New("Rate limit hit"), want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimited(tt.err))
		})
	}
}
