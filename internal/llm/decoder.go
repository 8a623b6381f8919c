package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// Chunk is one parsed object from a streamed chat completions response.
type Chunk struct {
	Choices []Choice   `json:"choices"`
	Usage   *chatUsage `json:"usage,omitempty"`
	Error   *apiError  `json:"error,omitempty"`
}

type Choice struct {
	Index        int    `json:"index"`
	Delta        *Delta `json:"delta,omitempty"`
	FinishReason string `json:"finish_reason"`
}

type Delta struct {
	Content string `json:"content,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChunkDecoder turns an event-stream response body into a sequence of parsed
// chunks. Lines are framed as `data: <json>`; the sequence ends at a
// `data: [DONE]` sentinel or at stream end. Partial lines are buffered across
// reads, and a trailing unterminated `data: ` line is still decoded at EOF.
// Malformed JSON lines are logged and skipped; only read errors are fatal.
type ChunkDecoder struct {
	scanner *bufio.Scanner
	done    bool
}

func NewChunkDecoder(r io.Reader) *ChunkDecoder {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return &ChunkDecoder{scanner: scanner}
}

// Next returns the next decoded chunk, or io.EOF once the stream is exhausted.
func (d *ChunkDecoder) Next() (*Chunk, error) {
	if d.done {
		return nil, io.EOF
	}
	for d.scanner.Scan() {
		line := d.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if strings.TrimSpace(data) == "[DONE]" {
			d.done = true
			return nil, io.EOF
		}
		var chunk Chunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			slog.Debug("skipping malformed stream chunk", "error", err, "line", line)
			continue
		}
		return &chunk, nil
	}
	d.done = true
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
