package agent

import (
	"fmt"
	"strings"

	"github.com/samsaffron/quicker-llm/internal/quicker"
)

// contextInfoPlaceholder is substituted in the instruction template with a
// textual summary of the current host context.
const contextInfoPlaceholder = "{{CONTEXT_INFO}}"

// maxActionsInContext caps how many action names the context summary lists.
const maxActionsInContext = 10

// instructionTemplate is the fixed agent prompt. Tools are requested with
// XML-style tags, one per message; results come back as the next user turn.
const instructionTemplate = `You are a highly capable AI assistant that can use tools to complete tasks on the user's machine.

====

TOOL USE

You may use exactly one tool per message. The result of that tool use arrives
in the user's next message. Work step by step: each tool use must build on the
result of the previous one. Never assume the outcome of a tool use.

Tools are requested with XML-style tags. The tool name wraps the parameter
content:

<runCommand>
Get-ChildItem
</runCommand>

# Available tools

## runCommand
Run a command line on the host (PowerShell on Windows). Avoid commands that
require interactive input.
<runCommand>
the command to run
</runCommand>

## runQuickerAction
Run one of the named Quicker actions from the available-actions list.
<runQuickerAction>
action name
</runQuickerAction>

## readContextWindow
Read the content of the currently linked window. The host picks the best read
method for the window type.
<readContextWindow>
</readContextWindow>

## writeToContextWindow
Write content into the currently linked window.
<writeToContextWindow>
  <content><![CDATA[content to write]]></content>
  <mode>append</mode>  <!-- append | insert | override -->
  <position>end</position>  <!-- start | end | cursor -->
</writeToContextWindow>

For file work, go through runCommand (Get-Content, Set-Content, Select-String,
Test-Path and friends). Check a file exists before touching it and back up
anything important first.

# Reasoning and completion

Show your reasoning inside <think> tags; it is visible to the user, so keep it
clear and ordered. When the task is done, wrap your final answer in
<taskComplete> tags and stop requesting tools:

<think>
1. The user wants ...
2. The best tool for this is ...
</think>

<taskComplete>
Final answer here.
</taskComplete>

# Current context

` + contextInfoPlaceholder + `

====

RULES

1. Address the task directly; no filler like "Sure" or "Got it".
2. Be precise when giving commands; vague instructions help nobody.
3. Weigh risky operations inside <think> before running them.
4. If you do not know something, say so or use a tool to find out - do not guess.
5. One tool per message, then wait for its result before continuing.
6. When the task is finished, answer inside <taskComplete> without offering
   further help.`

// SystemPromptInput collects everything that goes into one request's
// synthesized system message.
type SystemPromptInput struct {
	Window            quicker.WindowContext
	Actions           []quicker.ActionDefinition
	LastCommandResult string
	LastActionResult  string
	CommandsEnabled   bool
	ActionsEnabled    bool
	UserPrompts       []string
}

// BuildSystemPrompt assembles the single system message sent with every
// request. Section order is fixed: instruction template (with the context
// placeholder substituted), previous command result, previous action result,
// available actions, active window context, then user-configured prompts.
func BuildSystemPrompt(in SystemPromptInput) string {
	sections := []string{
		strings.Replace(instructionTemplate, contextInfoPlaceholder, contextInfoText(in), 1),
	}

	if in.LastCommandResult != "" {
		sections = append(sections, "Previous command result:\n"+in.LastCommandResult)
	}
	if in.LastActionResult != "" {
		sections = append(sections, "Previous action result:\n"+in.LastActionResult)
	}

	if in.ActionsEnabled && len(in.Actions) > 0 {
		var b strings.Builder
		b.WriteString("Available actions:\n")
		for _, action := range in.Actions {
			fmt.Fprintf(&b, "- %s\n", action.Name)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	if in.Window.Active {
		sections = append(sections, windowContextBlock(in.Window))
	}

	for _, prompt := range in.UserPrompts {
		if prompt != "" {
			sections = append(sections, prompt)
		}
	}

	return strings.Join(sections, "\n\n")
}

// contextInfoText renders the summary substituted for the context
// placeholder: active window and process details, available actions, and
// feature toggle states.
func contextInfoText(in SystemPromptInput) string {
	if !in.Window.Active {
		return "There is no active window context."
	}

	lines := []string{
		"=== Active window ===",
		"- Title: " + orUnknown(in.Window.Title),
	}
	if in.Window.ProcessName != "" {
		lines = append(lines, "- Process: "+in.Window.ProcessName)
	}
	if in.Window.ProcessPath != "" {
		lines = append(lines, "- Process path: "+in.Window.ProcessPath)
	}
	if in.Window.ProcessDescription != "" {
		lines = append(lines, "- Process description: "+in.Window.ProcessDescription)
	}
	if in.Window.WindowClass != "" {
		lines = append(lines, "- Window class: "+in.Window.WindowClass)
	}
	if in.Window.WindowRect != "" {
		lines = append(lines, "- Window rect: "+in.Window.WindowRect)
	}
	if in.Window.OSVersion != "" {
		lines = append(lines, "- Windows version: "+in.Window.OSVersion)
	}
	if in.Window.SelectedText != "" {
		lines = append(lines, "- Selected text: "+in.Window.SelectedText)
	}

	if in.ActionsEnabled && len(in.Actions) > 0 {
		lines = append(lines, "", "=== Available actions ===")
		lines = append(lines, fmt.Sprintf("- Count: %d", len(in.Actions)))
		lines = append(lines, "- Names:")
		for i, action := range in.Actions {
			if i == maxActionsInContext {
				lines = append(lines, fmt.Sprintf("  * ... and %d more", len(in.Actions)-maxActionsInContext))
				break
			}
			lines = append(lines, "  * "+action.Name)
		}
	}

	lines = append(lines, "", "=== Feature state ===")
	lines = append(lines, "- Command execution: "+enabledText(in.CommandsEnabled))
	lines = append(lines, "- Action execution: "+enabledText(in.ActionsEnabled))

	return strings.Join(lines, "\n")
}

func windowContextBlock(w quicker.WindowContext) string {
	lines := []string{
		"===== Linked window context =====",
		"Title: " + w.Title,
		"Content:\n" + w.Content,
	}
	if w.ProcessName != "" || w.ProcessPath != "" || w.ProcessDescription != "" {
		lines = append(lines, "", "===== Process =====")
		lines = append(lines, "Name: "+orUnknown(w.ProcessName))
		lines = append(lines, "Path: "+orUnknown(w.ProcessPath))
		lines = append(lines, "Description: "+orUnknown(w.ProcessDescription))
	}
	if w.WindowRect != "" {
		lines = append(lines, "", "===== Window position =====", "Rect: "+w.WindowRect)
	}
	if w.WindowClass != "" {
		lines = append(lines, "Window class: "+w.WindowClass)
	}
	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func enabledText(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
