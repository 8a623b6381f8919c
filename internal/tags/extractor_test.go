package tags

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	res, err := Extract("Just an answer, no tools.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Invocation != nil || res.TaskComplete {
		t.Errorf("plain text should produce no invocation, got %+v", res)
	}
	if res.Display != "Just an answer, no tools." {
		t.Errorf("Display = %q", res.Display)
	}
}

func TestExtractThinkFormatting(t *testing.T) {
	res, err := Extract("<think>step 1\nstep 2</think>done")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := "**Thinking:**\n\nstep 1\nstep 2\n\n**Answer:**\n\ndone"
	if res.Display != want {
		t.Errorf("Display = %q, want %q", res.Display, want)
	}
	if len(res.Thinking) != 1 || res.Thinking[0] != "step 1\nstep 2" {
		t.Errorf("Thinking = %q", res.Thinking)
	}
}

func TestExtractTaskCompleteSuppressesTools(t *testing.T) {
	res, err := Extract("<taskComplete>  All done.  </taskComplete>\n<runCommand>rm -rf /</runCommand>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !res.TaskComplete {
		t.Error("TaskComplete not set")
	}
	if res.Invocation != nil {
		t.Errorf("taskComplete must suppress dispatch, got %+v", res.Invocation)
	}
	if !strings.HasPrefix(res.Display, "All done.") {
		t.Errorf("Display = %q, want trimmed unwrapped content first", res.Display)
	}
}

func TestExtractCommand(t *testing.T) {
	res, err := Extract("Running it now.\n<runCommand>\nGet-ChildItem C:\\\n</runCommand>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Invocation == nil || res.Invocation.Kind != KindCommand {
		t.Fatalf("Invocation = %+v, want command", res.Invocation)
	}
	if res.Invocation.Command != "Get-ChildItem C:\\" {
		t.Errorf("Command = %q", res.Invocation.Command)
	}
	if strings.Contains(res.Display, "runCommand") {
		t.Errorf("tag not stripped from Display: %q", res.Display)
	}
}

func TestExtractPrecedenceReadBeatsCommand(t *testing.T) {
	res, err := Extract("<runCommand>dir</runCommand><readContextWindow></readContextWindow>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Invocation == nil || res.Invocation.Kind != KindReadWindow {
		t.Fatalf("Invocation = %+v, want readContextWindow to win", res.Invocation)
	}
	// The losing tag stays in the display text untouched.
	if !strings.Contains(res.Display, "<runCommand>dir</runCommand>") {
		t.Errorf("unmatched tag should remain: %q", res.Display)
	}
}

func TestExtractFirstMatchOnly(t *testing.T) {
	res, err := Extract("<runCommand>first</runCommand><runCommand>second</runCommand>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Invocation == nil || res.Invocation.Command != "first" {
		t.Fatalf("Invocation = %+v, want the first command", res.Invocation)
	}
	if !strings.Contains(res.Display, "<runCommand>second</runCommand>") {
		t.Errorf("second tag should remain in Display: %q", res.Display)
	}
}

func TestExtractWriteDefaults(t *testing.T) {
	res, err := Extract("<writeToContextWindow><content>hello</content></writeToContextWindow>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	inv := res.Invocation
	if inv == nil || inv.Kind != KindWriteWindow {
		t.Fatalf("Invocation = %+v, want write", inv)
	}
	if inv.Write.Content != "hello" || inv.Write.Mode != "append" || inv.Write.Position != "end" {
		t.Errorf("Write = %+v, want content=hello mode=append position=end", inv.Write)
	}
}

func TestExtractWriteCDATA(t *testing.T) {
	text := "<writeToContextWindow>" +
		"<content><![CDATA[a <b> & \"c\"]]></content>" +
		"<mode>override</mode><position>start</position>" +
		"</writeToContextWindow>"
	res, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	w := res.Invocation.Write
	if w.Content != `a <b> & "c"` {
		t.Errorf("Content = %q", w.Content)
	}
	if w.Mode != "override" || w.Position != "start" {
		t.Errorf("Mode/Position = %q/%q", w.Mode, w.Position)
	}
}

func TestExtractWriteMissingContent(t *testing.T) {
	for _, text := range []string{
		"<writeToContextWindow></writeToContextWindow>",
		"<writeToContextWindow><content>   </content></writeToContextWindow>",
	} {
		res, err := Extract(text)
		if !errors.Is(err, ErrMissingContent) {
			t.Errorf("Extract(%q) err = %v, want ErrMissingContent", text, err)
		}
		if res.Invocation != nil {
			t.Errorf("Extract(%q) should not dispatch, got %+v", text, res.Invocation)
		}
		if strings.Contains(res.Display, "writeToContextWindow") {
			t.Errorf("tag should be stripped even on error: %q", res.Display)
		}
	}
}

func TestExtractAction(t *testing.T) {
	res, err := Extract("<runQuickerAction>  Send To Notes  </runQuickerAction>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Invocation == nil || res.Invocation.Kind != KindAction {
		t.Fatalf("Invocation = %+v, want action", res.Invocation)
	}
	if res.Invocation.Action != "Send To Notes" {
		t.Errorf("Action = %q, want trimmed name", res.Invocation.Action)
	}
}

func TestExtractMultilineCommand(t *testing.T) {
	res, err := Extract("<runCommand>\nline1\nline2\n</runCommand>")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.Invocation.Command != "line1\nline2" {
		t.Errorf("Command = %q", res.Invocation.Command)
	}
}
