package llm

import (
	"io"
	"strings"
	"testing"
)

// chunkedReader yields the input in fixed-size pieces so lines get split
// across reads.
type chunkedReader struct {
	data string
	size int
	pos  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func collectContent(t *testing.T, d *ChunkDecoder) []string {
	t.Helper()
	var got []string
	for {
		chunk, err := d.Next()
		if err == io.EOF {
			return got
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		for _, c := range chunk.Choices {
			if c.Delta != nil && c.Delta.Content != "" {
				got = append(got, c.Delta.Content)
			}
		}
	}
}

func TestChunkDecoderBasic(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"data: [DONE]\n"

	got := collectContent(t, NewChunkDecoder(strings.NewReader(input)))
	want := []string{"Hel", "lo"}
	if len(got) != len(want) {
		t.Fatalf("got %d deltas, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delta %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunkDecoderSplitAcrossReads(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"streaming works\"}}]}\n" +
		"data: [DONE]\n"

	for _, size := range []int{1, 3, 7} {
		got := collectContent(t, NewChunkDecoder(&chunkedReader{data: input, size: size}))
		if len(got) != 1 || got[0] != "streaming works" {
			t.Errorf("size %d: got %v, want [streaming works]", size, got)
		}
	}
}

func TestChunkDecoderSkipsMalformedAndBlankLines(t *testing.T) {
	input := "\n" +
		": keepalive comment\n" +
		"data: {not json}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n" +
		"data: [DONE]\n"

	got := collectContent(t, NewChunkDecoder(strings.NewReader(input)))
	if len(got) != 1 || got[0] != "ok" {
		t.Errorf("got %v, want [ok]", got)
	}
}

func TestChunkDecoderTrailingLineWithoutNewline(t *testing.T) {
	// Stream cut off mid-response: final data line has no trailing \n and
	// no [DONE] sentinel. The last complete JSON line must still decode.
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}"

	got := collectContent(t, NewChunkDecoder(strings.NewReader(input)))
	if len(got) != 1 || got[0] != "partial" {
		t.Errorf("got %v, want [partial]", got)
	}
}

func TestChunkDecoderEmptyDelta(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n" +
		"data: [DONE]\n"

	d := NewChunkDecoder(strings.NewReader(input))
	chunk, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if len(chunk.Choices) != 1 {
		t.Fatalf("got %d choices, want 1", len(chunk.Choices))
	}
	if chunk.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q, want %q", chunk.Choices[0].FinishReason, "stop")
	}
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after [DONE], got %v", err)
	}
}

func TestChunkDecoderDoneStopsEarly(t *testing.T) {
	input := "data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n"

	d := NewChunkDecoder(strings.NewReader(input))
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at sentinel, got %v", err)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("decoder resumed after [DONE]: %v", err)
	}
}

func TestChunkDecoderUsageAndError(t *testing.T) {
	input := "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":12,\"completion_tokens\":5}}\n" +
		"data: {\"error\":{\"type\":\"server_error\",\"message\":\"overloaded\"}}\n" +
		"data: [DONE]\n"

	d := NewChunkDecoder(strings.NewReader(input))
	chunk, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if chunk.Usage == nil || chunk.Usage.PromptTokens != 12 || chunk.Usage.CompletionTokens != 5 {
		t.Errorf("usage = %+v, want prompt=12 completion=5", chunk.Usage)
	}

	chunk, err = d.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if chunk.Error == nil || chunk.Error.Message != "overloaded" {
		t.Errorf("error = %+v, want message overloaded", chunk.Error)
	}
}
