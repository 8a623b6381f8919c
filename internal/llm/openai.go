package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClientTimeout is the default timeout for HTTP requests
const httpClientTimeout = 10 * time.Minute

// defaultHTTPClient is a shared HTTP client with reasonable timeouts
var defaultHTTPClient = &http.Client{
	Timeout: httpClientTimeout,
}

// Client implements Provider against any OpenAI-compatible chat completions
// endpoint. The base URL is the full completions URL, not an API root.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func NewClient(baseURL, apiKey, model string, temperature float64) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

func (c *Client) Name() string {
	return fmt.Sprintf("openai-compat (%s)", c.model)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

func (c *Client) Stream(ctx context.Context, req Request) (Stream, error) {
	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		if len(req.Messages) == 0 {
			return fmt.Errorf("no messages provided")
		}

		chatReq := chatRequest{
			Model:       chooseModel(req.Model, c.model),
			Messages:    req.Messages,
			Temperature: chooseTemperature(req.Temperature, c.temperature),
			Stream:      true,
		}
		body, err := json.Marshal(chatReq)
		if err != nil {
			return err
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := defaultHTTPClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("chat request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			respBody, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}

		decoder := NewChunkDecoder(resp.Body)
		var lastUsage *Usage
		for {
			chunk, err := decoder.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("streaming error: %w", err)
			}
			if chunk.Error != nil {
				return fmt.Errorf("API error: %s", chunk.Error.Message)
			}
			if chunk.Usage != nil {
				lastUsage = &Usage{
					InputTokens:  chunk.Usage.PromptTokens,
					OutputTokens: chunk.Usage.CompletionTokens,
				}
			}
			for _, choice := range chunk.Choices {
				if choice.Delta != nil && choice.Delta.Content != "" {
					events <- Event{Type: EventTextDelta, Text: choice.Delta.Content}
				}
			}
		}

		if lastUsage != nil {
			events <- Event{Type: EventUsage, Use: lastUsage}
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}

func chooseModel(requested, configured string) string {
	if requested != "" {
		return requested
	}
	return configured
}

func chooseTemperature(requested, configured float64) float64 {
	if requested > 0 {
		return requested
	}
	return configured
}
