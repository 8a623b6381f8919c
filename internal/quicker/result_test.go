package quicker

import (
	"encoding/json"
	"testing"
)

func TestNormalizeResultShapes(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		subprogram string
		alias      string
		want       ToolResult
	}{
		{
			name:       "wrapped under subprogram name",
			raw:        `{"ExecuteCommand":{"success":true,"output":"hi"}}`,
			subprogram: "ExecuteCommand",
			alias:      "runCommand",
			want:       ToolResult{Success: true, Output: "hi"},
		},
		{
			name:       "wrapped under alias",
			raw:        `{"runCommand":{"success":false,"error":"denied"}}`,
			subprogram: "ExecuteCommand",
			alias:      "runCommand",
			want:       ToolResult{Success: false, Error: "denied"},
		},
		{
			name:       "flat object with bool success",
			raw:        `{"success":true,"content":"window text"}`,
			subprogram: "ReadContextWindow",
			want:       ToolResult{Success: true, Content: "window text"},
		},
		{
			name:       "string success field",
			raw:        `{"success":"true","message":"done"}`,
			subprogram: "ExecuteAction",
			want:       ToolResult{Success: true, Message: "done"},
		},
		{
			name:       "bare string",
			raw:        `"plain result"`,
			subprogram: "ExecuteCommand",
			want:       ToolResult{Success: true, Output: "plain result"},
		},
		{
			name:       "object without success, no error means ok",
			raw:        `{"result":"42"}`,
			subprogram: "ExecuteCommand",
			want:       ToolResult{Success: true, Output: "42"},
		},
		{
			name:       "object without success, errorMessage means failure",
			raw:        `{"errorMessage":"boom"}`,
			subprogram: "ExecuteCommand",
			want:       ToolResult{Success: false, Error: "boom"},
		},
		{
			name:       "non-JSON payload",
			raw:        "raw text\n",
			subprogram: "ExecuteCommand",
			want:       ToolResult{Success: true, Output: "raw text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeResult(json.RawMessage(tt.raw), tt.subprogram, tt.alias)
			if got != tt.want {
				t.Errorf("NormalizeResult() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeResultEmpty(t *testing.T) {
	got := NormalizeResult(nil, "ExecuteCommand", "")
	if got.Success {
		t.Error("empty payload should fail")
	}
	if got.Error == "" {
		t.Error("empty payload should carry an error message")
	}
}

func TestToolResultText(t *testing.T) {
	tests := []struct {
		res  ToolResult
		want string
	}{
		{ToolResult{Output: "o", Content: "c", Message: "m", Error: "e"}, "o"},
		{ToolResult{Content: "c", Message: "m", Error: "e"}, "c"},
		{ToolResult{Message: "m", Error: "e"}, "m"},
		{ToolResult{Error: "e"}, "e"},
		{ToolResult{}, ""},
	}
	for _, tt := range tests {
		if got := tt.res.Text(); got != tt.want {
			t.Errorf("Text(%+v) = %q, want %q", tt.res, got, tt.want)
		}
	}
}
