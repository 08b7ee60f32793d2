// Package openai talks to the OpenAI speech endpoints the relay uses as
// its transcription and translation collaborators.
package openai

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/linguamates/callrelay/internal/core"
)

type Client struct {
	apiKey          string
	baseURL         string
	transcribeModel string
	chatModel       string
	http            *http.Client
}

// NewClient builds a client against baseURL (the real API, or an
// httptest server in tests). Deadlines come from the request context,
// not the http.Client, so the pipeline's segment timeout is in charge.
func NewClient(apiKey, baseURL, transcribeModel, chatModel string) *Client {
	return &Client{
		apiKey:          apiKey,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		transcribeModel: transcribeModel,
		chatModel:       chatModel,
		http:            &http.Client{},
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest && isTooShort(body) {
			return nil, fmt.Errorf("openai rejected segment: %w", core.ErrEmptySegment)
		}
		return nil, fmt.Errorf("openai error (HTTP %d): %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// isTooShort spots the 400 Whisper returns for sub-minimum recordings;
// those are silence, not failures.
func isTooShort(body []byte) bool {
	s := strings.ToLower(string(body))
	return strings.Contains(s, "too short") || strings.Contains(s, "minimum audio length")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
