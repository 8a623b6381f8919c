package quicker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeAutomation struct {
	reply map[string]string
	calls []string
	err   error
}

func (f *fakeAutomation) CallSubprogram(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.reply[name]), nil
}

func TestFetchWindowContext(t *testing.T) {
	auto := &fakeAutomation{reply: map[string]string{
		SubGetContext: `{"title":"Notepad","content":"draft text","processName":"notepad.exe","selectedText":"draft"}`,
	}}
	wc := FetchWindowContext(context.Background(), auto)
	if !wc.Active {
		t.Fatal("context with a title should be active")
	}
	if wc.Title != "Notepad" || wc.Content != "draft text" {
		t.Errorf("wc = %+v", wc)
	}
	if wc.ProcessName != "notepad.exe" || wc.SelectedText != "draft" {
		t.Errorf("metadata missing: %+v", wc)
	}
}

func TestFetchWindowContextWrapped(t *testing.T) {
	auto := &fakeAutomation{reply: map[string]string{
		SubGetContext: `{"GetContextWithVisuals":{"title":"Editor","content":"x"}}`,
	}}
	wc := FetchWindowContext(context.Background(), auto)
	if !wc.Active || wc.Title != "Editor" {
		t.Errorf("wc = %+v", wc)
	}
}

func TestFetchWindowContextBridgeDown(t *testing.T) {
	auto := &fakeAutomation{err: errors.New("down")}
	wc := FetchWindowContext(context.Background(), auto)
	if wc.Active {
		t.Error("failing bridge should yield an inactive context")
	}
}

func TestLoadActions(t *testing.T) {
	auto := &fakeAutomation{reply: map[string]string{
		SubGetVariable: `{"value":"[{\"id\":\"1\",\"name\":\"Send To Notes\"}]"}`,
	}}
	actions, err := LoadActions(context.Background(), auto)
	if err != nil {
		t.Fatalf("LoadActions() error: %v", err)
	}
	if len(actions) != 1 || actions[0].Name != "Send To Notes" {
		t.Errorf("actions = %+v", actions)
	}
}

func TestLoadActionsEmpty(t *testing.T) {
	auto := &fakeAutomation{reply: map[string]string{
		SubGetVariable: `{"value":null}`,
	}}
	actions, err := LoadActions(context.Background(), auto)
	if err != nil {
		t.Fatalf("LoadActions() error: %v", err)
	}
	if actions != nil {
		t.Errorf("actions = %+v, want nil", actions)
	}
}

func TestSaveActionsRoundTrip(t *testing.T) {
	auto := &fakeAutomation{reply: map[string]string{SubSetVariable: `{"success":true}`}}
	err := SaveActions(context.Background(), auto, []ActionDefinition{{ID: "1", Name: "A"}})
	if err != nil {
		t.Fatalf("SaveActions() error: %v", err)
	}
	if len(auto.calls) != 1 || auto.calls[0] != SubSetVariable {
		t.Errorf("calls = %v", auto.calls)
	}
}
