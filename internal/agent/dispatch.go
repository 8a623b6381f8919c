package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/samsaffron/quicker-llm/internal/quicker"
	"github.com/samsaffron/quicker-llm/internal/tags"
)

// Outcome is the result of executing one tool invocation.
type Outcome struct {
	// Tool is the protocol name reported back to the model.
	Tool string
	// Label is the short human-facing description shown in the result card.
	Label string
	// Detail carries the invocation argument (command line, action name, ...).
	Detail string
	Result quicker.ToolResult
}

// Dispatch routes one extracted invocation to the host and normalizes its
// response. Action dispatches are validated against the known action list
// first; an unknown name produces a failed outcome without touching the host.
func Dispatch(ctx context.Context, a quicker.Automation, inv tags.Invocation, actions []quicker.ActionDefinition) Outcome {
	switch inv.Kind {
	case tags.KindCommand:
		return Outcome{
			Tool:   "run_command",
			Label:  "Command",
			Detail: inv.Command,
			Result: call(ctx, a, quicker.SubExecuteCommand, "runCommand", map[string]any{
				"command": inv.Command,
			}),
		}
	case tags.KindAction:
		out := Outcome{Tool: "runQuickerAction", Label: "Action", Detail: inv.Action}
		if !actionExists(actions, inv.Action) {
			out.Result = quicker.Failure(fmt.Sprintf("action %q is not defined", inv.Action))
			return out
		}
		out.Result = call(ctx, a, quicker.SubExecuteAction, "runQuickerAction", map[string]any{
			"actionName": inv.Action,
		})
		return out
	case tags.KindReadWindow:
		return Outcome{
			Tool:   "readContextWindow",
			Label:  "Read window",
			Result: call(ctx, a, quicker.SubReadWindow, "readContextWindow", nil),
		}
	case tags.KindWriteWindow:
		return Outcome{
			Tool:   "writeToContextWindow",
			Label:  "Write window",
			Detail: fmt.Sprintf("%s/%s", inv.Write.Mode, inv.Write.Position),
			Result: call(ctx, a, quicker.SubWriteWindow, "writeToContextWindow", map[string]any{
				"content":  inv.Write.Content,
				"mode":     inv.Write.Mode,
				"position": inv.Write.Position,
			}),
		}
	}
	return Outcome{Tool: inv.Kind.String(), Result: quicker.Failure("unsupported tool " + inv.Kind.String())}
}

func call(ctx context.Context, a quicker.Automation, subprogram, alias string, params map[string]any) quicker.ToolResult {
	raw, err := a.CallSubprogram(ctx, subprogram, params)
	if err != nil {
		return quicker.Failure(err.Error())
	}
	return quicker.NormalizeResult(raw, subprogram, alias)
}

// FeedbackMessage renders the outcome in the exact shape the model was
// trained on: a type/text envelope with the result quoted and inner quotes
// escaped.
func (o Outcome) FeedbackMessage() string {
	text := o.Result.Text()
	if !o.Result.Success && text == "" {
		text = "tool execution failed"
	}
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	return fmt.Sprintf("type:text\ntext:[tool for '%s'] Result:\"%s\"", o.Tool, escaped)
}

func actionExists(actions []quicker.ActionDefinition, name string) bool {
	for _, a := range actions {
		if a.Name == name {
			return true
		}
	}
	return false
}
