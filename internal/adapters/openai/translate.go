package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Translate renders text from fromLang into toLang through the chat
// endpoint. The transcript may contain recognition noise; the prompt
// tells the model to translate anyway rather than comment on it.
func (c *Client) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	system := fmt.Sprintf(
		"You are a professional interpreter for a live language-tutoring call. "+
			"Translate the user's utterance from %s to %s. "+
			"The text comes from automatic speech recognition and may contain small errors; translate the intended meaning. "+
			"Reply with the translation only, no quotes and no commentary.",
		fromLang, toLang,
	)

	payload, err := json.Marshal(chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parsing chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
