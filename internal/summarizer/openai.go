package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxPromptBytes caps how much markdown is sent to the model. Long documents
// are truncated from the tail; the summary covers the head of the document.
const maxPromptBytes = 48 * 1024

const systemPrompt = "You summarize documents. Provide a concise summary of the " +
	"text you are given. Include key points, data, and insights. Explain the " +
	"main ideas, supporting evidence, and conclusions."

type ClientConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
}

// Client implements Summarizer against an OpenAI-compatible chat/completions
// endpoint.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *zap.SugaredLogger
}

var _ Summarizer = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        zap.S().Named("summarizer"),
	}
}

func (c *Client) Summarize(ctx context.Context, markdown string, meta Metadata) (string, error) {
	start := time.Now()

	text := markdown
	if len(text) > maxPromptBytes {
		cut := maxPromptBytes
		// Back off to a rune boundary so the cut never splits a character.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	c.log.Infow("summary request",
		"model", c.cfg.Model,
		"filename", meta.Filename,
		"text_len", len(text),
		"truncated", len(text) < len(markdown),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildUserPrompt(text, meta)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Warnw("summary request failed",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode summarizer response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in summarizer response")
	}

	summary := strings.TrimSpace(cc.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("summarizer returned empty content")
	}

	c.log.Infow("summary ok",
		"summary_len", len(summary),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func buildUserPrompt(text string, meta Metadata) string {
	var b strings.Builder
	b.WriteString("Document: " + meta.Filename)
	if meta.Pages > 1 {
		fmt.Fprintf(&b, " (%d pages)", meta.Pages)
	}
	b.WriteString("\n\n")
	b.WriteString(text)
	return b.String()
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summarizer http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warnw("summarizer response body close error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read summarizer response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("summarizer status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
