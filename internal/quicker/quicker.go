// Package quicker talks to the host automation runtime. Everything with a
// side effect in this program (shell commands, named actions, window reads
// and writes) goes through a subprogram call defined here.
package quicker

import (
	"context"
	"encoding/json"
)

// Subprogram names exposed by the host runtime.
const (
	SubExecuteCommand = "ExecuteCommand"
	SubExecuteAction  = "ExecuteAction"
	SubReadWindow     = "ReadContextWindow"
	SubWriteWindow    = "WriteToContextWindow"
	SubGetContext     = "GetContextWithVisuals"
	SubSaveSettings   = "SaveSettings"
	SubGetVariable    = "GetVariable"
	SubSetVariable    = "SetVariable"
)

// Automation is the host capability for running subprograms. The returned
// payload shape is inconsistent across operations and must go through
// NormalizeResult before use.
type Automation interface {
	CallSubprogram(ctx context.Context, name string, params map[string]any) (json.RawMessage, error)
}

// ActionDefinition describes one named automation action owned by the host.
// Consumed read-only when building prompts and validating dispatches.
type ActionDefinition struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	ParamDescription string `json:"paramDescription,omitempty"`
}

// Noop is a disconnected Automation; every call fails the same way the
// browser client fails when the injected API is absent.
type Noop struct{}

func (Noop) CallSubprogram(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	return nil, ErrNotConnected
}
