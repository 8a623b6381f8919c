package quicker

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ToolResult is the canonical shape every subprogram response normalizes to.
type ToolResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns the most useful payload field for display and model feedback.
func (r ToolResult) Text() string {
	switch {
	case r.Output != "":
		return r.Output
	case r.Content != "":
		return r.Content
	case r.Message != "":
		return r.Message
	}
	return r.Error
}

// Failure builds a canonical failed result.
func Failure(errText string) ToolResult {
	return ToolResult{Success: false, Error: errText}
}

// NormalizeResult unwraps a raw subprogram response into the canonical
// ToolResult. The host returns payloads in several shapes; they are tried in
// this order:
//
//  1. an object wrapped under the subprogram name, e.g. {"ExecuteCommand": {...}}
//  2. an object wrapped under the tool's public alias, e.g. {"runCommand": {...}}
//  3. a flat object that already carries a success field (bool, "true"/"false"
//     string, or number)
//  4. a bare JSON string, treated as success with the string as output
//  5. any other object: success is inferred from the absence of error and
//     errorMessage fields
//
// Non-JSON payloads fall into case 4 with the raw bytes as output.
func NormalizeResult(raw json.RawMessage, subprogram, alias string) ToolResult {
	if len(raw) == 0 {
		return Failure("subprogram " + subprogram + " returned no result")
	}
	if !gjson.ValidBytes(raw) {
		return ToolResult{Success: true, Output: strings.TrimSpace(string(raw))}
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.Type == gjson.String {
		return ToolResult{Success: true, Output: parsed.String()}
	}
	if !parsed.IsObject() {
		return Failure("unrecognized result shape for " + subprogram)
	}

	for _, key := range []string{subprogram, alias} {
		if key == "" {
			continue
		}
		inner := parsed.Get(key)
		if inner.IsObject() {
			return fromObject(inner)
		}
		if inner.Type == gjson.String {
			return ToolResult{Success: true, Output: inner.String()}
		}
	}
	return fromObject(parsed)
}

func fromObject(obj gjson.Result) ToolResult {
	res := ToolResult{
		Output:  obj.Get("output").String(),
		Content: obj.Get("content").String(),
		Message: obj.Get("message").String(),
		Error:   firstString(obj, "error", "errorMessage"),
	}
	if res.Output == "" {
		res.Output = obj.Get("result").String()
	}

	if success := obj.Get("success"); success.Exists() {
		res.Success = truthy(success)
	} else {
		res.Success = res.Error == ""
	}
	return res
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := obj.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.String:
		return strings.EqualFold(v.String(), "true")
	case gjson.Number:
		return v.Float() != 0
	}
	return false
}
