package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinu-sreekumar/studentms/pkg/config"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

func testConfig(baseURL string) config.AdvisorConfig {
	return config.AdvisorConfig{
		APIKey:     "test-key",
		Model:      "gemini-2.5-flash",
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}
}

func candidateBody(texts ...string) map[string]any {
	parts := make([]map[string]string, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, map[string]string{"text": t})
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	}
}

func TestClientGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(candidateBody("Alice has ", "the highest GPA."))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	require.True(t, client.Enabled())

	text, err := client.Generate(context.Background(), "Who has the highest GPA?")
	require.NoError(t, err)
	assert.Equal(t, "Alice has the highest GPA.", text)
	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "Who has the highest GPA?", gotReq.Contents[0].Parts[0].Text)
}

func TestClientGenerateWithoutKey(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.APIKey = ""
	client := NewClient(cfg)

	assert.False(t, client.Enabled())

	_, err := client.Generate(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestClientGenerateRetriesTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(candidateBody("recovered"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	text, err := client.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, attempts)
}

func TestClientGenerateExhaustsRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProvider))
	assert.Equal(t, "quota exceeded", appErrors.FromError(err).Message)
	assert.Equal(t, 2, attempts)
}

func TestClientGenerateDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProvider))
	assert.Equal(t, 1, attempts)
}

func TestClientGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProvider))
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(config.AdvisorConfig{APIKey: "k"})
	assert.Equal(t, "gemini-2.5-flash", client.model)
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.Zero(t, client.maxRetries)
}
