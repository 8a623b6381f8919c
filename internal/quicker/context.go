package quicker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// actionsVariable is the host variable the persisted action list lives under.
const actionsVariable = "quicker_actions"

// WindowContext describes the external window currently linked to the chat
// session, plus the process metadata the host was asked to collect.
type WindowContext struct {
	Active             bool
	Title              string
	Content            string
	ProcessName        string
	ProcessPath        string
	ProcessDescription string
	WindowClass        string
	WindowRect         string
	SelectedText       string
	OSVersion          string
}

// FetchWindowContext asks the host for the linked window and its metadata.
// A disconnected or failing bridge yields an inactive context, not an error;
// callers degrade to a context-free prompt.
func FetchWindowContext(ctx context.Context, a Automation) WindowContext {
	raw, err := a.CallSubprogram(ctx, SubGetContext, map[string]any{
		"getProcessName":        true,
		"getProcessPath":        true,
		"getProcessDescription": true,
		"getWindowRect":         true,
		"getWindowClass":        true,
		"getSelectedText":       true,
		"getWindowsOsVersion":   true,
	})
	if err != nil {
		return WindowContext{}
	}

	parsed := gjson.ParseBytes(raw)
	if inner := parsed.Get(SubGetContext); inner.IsObject() {
		parsed = inner
	}
	wc := WindowContext{
		Title:              parsed.Get("title").String(),
		Content:            parsed.Get("content").String(),
		ProcessName:        parsed.Get("processName").String(),
		ProcessPath:        parsed.Get("processPath").String(),
		ProcessDescription: parsed.Get("processDescription").String(),
		WindowClass:        parsed.Get("windowClass").String(),
		WindowRect:         parsed.Get("windowRect").Raw,
		SelectedText:       parsed.Get("selectedText").String(),
		OSVersion:          parsed.Get("windowsOsVersion").String(),
	}
	wc.Active = wc.Title != "" || wc.Content != ""
	return wc
}

// LoadActions reads the action list the host persists in its variable store.
func LoadActions(ctx context.Context, a Automation) ([]ActionDefinition, error) {
	raw, err := a.CallSubprogram(ctx, SubGetVariable, map[string]any{"name": actionsVariable})
	if err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}

	value := gjson.ParseBytes(raw)
	if inner := value.Get(SubGetVariable); inner.Exists() {
		value = inner
	}
	if inner := value.Get("value"); inner.Exists() {
		value = inner
	}

	payload := value.Raw
	if value.Type == gjson.String {
		payload = value.String()
	}
	if payload == "" || payload == "null" {
		return nil, nil
	}

	var actions []ActionDefinition
	if err := json.Unmarshal([]byte(payload), &actions); err != nil {
		return nil, fmt.Errorf("parse actions: %w", err)
	}
	return actions, nil
}

// SaveActions writes the action list back to the host variable store.
func SaveActions(ctx context.Context, a Automation, actions []ActionDefinition) error {
	payload, err := json.Marshal(actions)
	if err != nil {
		return err
	}
	_, err = a.CallSubprogram(ctx, SubSetVariable, map[string]any{
		"name":  actionsVariable,
		"value": string(payload),
	})
	if err != nil {
		return fmt.Errorf("save actions: %w", err)
	}
	return nil
}
