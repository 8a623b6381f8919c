// Package ui renders streamed responses, tool result cards and notices to
// the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/samsaffron/quicker-llm/internal/agent"
)

// maxCardOutput caps how much tool output one result card shows.
const maxCardOutput = 2000

// Printer implements agent.Presenter for an interactive terminal. Raw model
// text is echoed as it streams; once the turn ends, any turn that carried
// tool tags or think blocks is re-rendered in its processed form.
type Printer struct {
	out      io.Writer
	streamed int
	lastRaw  string
}

func NewPrinter() *Printer {
	return &Printer{out: os.Stdout}
}

// NewPrinterTo writes to an explicit writer. Used by tests.
func NewPrinterTo(w io.Writer) *Printer {
	return &Printer{out: w}
}

func (p *Printer) AssistantDelta(text string) {
	if len(text) < p.streamed {
		p.streamed = 0
	}
	fmt.Fprint(p.out, text[p.streamed:])
	p.streamed = len(text)
	p.lastRaw = text
}

func (p *Printer) AssistantDone(display string) {
	fmt.Fprintln(p.out)
	if display != p.lastRaw && strings.TrimSpace(display) != "" {
		rule := mutedStyle().Render(strings.Repeat("─", min(p.width(), 40)))
		fmt.Fprintln(p.out, rule)
		fmt.Fprintln(p.out, RenderMarkdown(display, p.width()))
	}
	p.streamed = 0
	p.lastRaw = ""
}

func (p *Printer) ToolResult(out agent.Outcome) {
	var b strings.Builder
	b.WriteString(toolNameStyle().Render(out.Label))
	if out.Detail != "" {
		b.WriteString(" " + mutedStyle().Render(out.Detail))
	}
	if out.Result.Success {
		b.WriteString("  " + successStyle().Render("ok"))
	} else {
		b.WriteString("  " + errorStyle().Render("failed"))
	}

	text := out.Result.Text()
	if len(text) > maxCardOutput {
		text = text[:maxCardOutput] + "\n... (truncated)"
	}
	if text != "" {
		b.WriteString("\n" + text)
	}

	fmt.Fprintln(p.out, cardStyle().Width(p.width()-2).Render(b.String()))
}

func (p *Printer) Notice(text string) {
	fmt.Fprintln(p.out, noticeStyle().Render(text))
}

func (p *Printer) RetryAvailable() {
	fmt.Fprintln(p.out, mutedStyle().Render("Type /retry to resend the last message."))
}

func (p *Printer) width() int {
	if f, ok := p.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
			if w > 100 {
				return 100
			}
			return w
		}
	}
	return 80
}
