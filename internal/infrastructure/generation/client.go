package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/strategy"
)

const maxResponseBytes = 64 * 1024

// Client posts OpenAI-style chat completions to the configured endpoint
type Client struct {
	url    string
	model  string
	client *http.Client
}

func NewClient(url, model string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Generate sends the persona prompt plus conversation and returns a
// sanitized draft. Any upstream or character failure comes back as an
// error; the caller decides what to say instead.
func (c *Client) Generate(ctx context.Context, messages []Message, personality strategy.Personality) (string, error) {
	payload := map[string]any{
		"model":       c.model,
		"messages":    append([]Message{{Role: "system", Content: systemPrompt(personality)}}, messages...),
		"temperature": 1,
		"private":     true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation http %d: %s", resp.StatusCode, truncate(body))
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("generation endpoint returned html")
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}

	reply := cleanReply(parsed.Choices[0].Message.Content)
	if err := validateReply(reply); err != nil {
		return "", err
	}
	return reply, nil
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}
