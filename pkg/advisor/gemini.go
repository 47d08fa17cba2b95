// Package advisor wraps the Gemini generateContent REST endpoint behind a
// synchronous prompt-to-text call. Any provider with an equivalent call can be
// substituted by implementing the same Generate signature.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dinu-sreekumar/studentms/pkg/config"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls a hosted Gemini model with a fully assembled prompt.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	http       *http.Client
}

// NewClient builds a Gemini client from configuration. A client with an empty
// API key is valid but disabled: Generate fails with a configuration error and
// Enabled reports false so callers can surface an "AI disabled" state.
func NewClient(cfg config.AdvisorConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		maxRetries: retries,
		http:       &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether a provider credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt verbatim to the configured model and returns the
// generated text. Transient failures (transport errors, 429 and 5xx) are
// retried once before reporting a provider error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", appErrors.ErrConfiguration
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "encode provider request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, retryable, err := c.doGenerate(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) doGenerate(ctx context.Context, body []byte) (string, bool, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "build provider request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "provider request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", true, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "read provider response")
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		msg := fmt.Sprintf("provider returned status %d", resp.StatusCode)
		var decoded generateResponse
		if json.Unmarshal(payload, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", retryable, appErrors.New(appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, msg)
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "decode provider response")
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", false, appErrors.New(appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "provider returned no candidates")
	}

	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), false, nil
}
