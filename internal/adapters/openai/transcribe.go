package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/linguamates/callrelay/internal/core"
)

type transcriptionResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe returns the plain text of a short audio file, constrained
// to lang (an ISO 639-1 code).
func (c *Client) Transcribe(ctx context.Context, audioPath, lang string) (string, error) {
	resp, err := c.transcribe(ctx, audioPath, lang)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// TranscribeSegments returns the timestamped segments of a verbose
// transcription, used by the upload endpoint for speaker splitting.
func (c *Client) TranscribeSegments(ctx context.Context, audioPath, lang string) ([]core.TranscriptSegment, error) {
	resp, err := c.transcribe(ctx, audioPath, lang)
	if err != nil {
		return nil, err
	}
	out := make([]core.TranscriptSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		out = append(out, core.TranscriptSegment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out, nil
}

func (c *Client) transcribe(ctx context.Context, audioPath, lang string) (*transcriptionResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", c.transcribeModel); err != nil {
		return nil, err
	}
	if lang != "" {
		if err := writer.WriteField("language", lang); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := writer.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return nil, err
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp transcriptionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing transcription response: %w", err)
	}
	return &resp, nil
}
