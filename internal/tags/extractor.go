// Package tags parses the XML-style tool markers embedded in model output.
// The wire format is not well-formed XML (simple tags carry raw text, content
// may or may not be CDATA-wrapped), so matching is done with regexes the same
// way the host protocol defines it.
package tags

import (
	"errors"
	"regexp"
	"strings"
)

// Kind identifies which tool the model asked for.
type Kind int

const (
	KindCommand Kind = iota
	KindAction
	KindReadWindow
	KindWriteWindow
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "runCommand"
	case KindAction:
		return "runQuickerAction"
	case KindReadWindow:
		return "readContextWindow"
	case KindWriteWindow:
		return "writeToContextWindow"
	}
	return "unknown"
}

// WriteParams carries the parameter block of a writeToContextWindow request.
type WriteParams struct {
	Content  string
	Mode     string // append, insert or override
	Position string // start, end or cursor
}

// Invocation is one extracted tool request. At most one is produced per turn.
type Invocation struct {
	Kind    Kind
	Command string
	Action  string
	Write   WriteParams
}

// Result is the outcome of scanning one assistant turn.
type Result struct {
	// Display is the text shown to the user: think blocks formatted,
	// taskComplete unwrapped, the matched tool tag stripped.
	Display string
	// Thinking holds the raw contents of every think block, for logging.
	Thinking []string
	// TaskComplete reports whether the turn carried the termination marker.
	// When set, Invocation is always nil.
	TaskComplete bool
	Invocation   *Invocation
}

// ErrMissingContent is returned when a writeToContextWindow tag has no
// usable content child. The tag is stripped from Display but nothing is
// dispatched.
var ErrMissingContent = errors.New("writeToContextWindow content is missing")

var (
	thinkRe        = regexp.MustCompile(`(?s)<think>(.*?)</think>`)
	taskCompleteRe = regexp.MustCompile(`(?s)<taskComplete>(.*?)</taskComplete>`)
	readWindowRe   = regexp.MustCompile(`(?s)<readContextWindow>(.*?)</readContextWindow>`)
	writeWindowRe  = regexp.MustCompile(`(?s)<writeToContextWindow>(.*?)</writeToContextWindow>`)
	commandRe      = regexp.MustCompile(`(?s)<runCommand>(.*?)</runCommand>`)
	actionRe       = regexp.MustCompile(`(?s)<runQuickerAction>(.*?)</runQuickerAction>`)
	contentRe      = regexp.MustCompile(`(?s)<content>(.*?)</content>`)
	modeRe         = regexp.MustCompile(`(?s)<mode>(.*?)</mode>`)
	positionRe     = regexp.MustCompile(`(?s)<position>(.*?)</position>`)
	cdataRe        = regexp.MustCompile(`(?s)^<!\[CDATA\[(.*)\]\]>$`)
)

// Extract scans the full accumulated text of one assistant turn.
//
// Processing order: think blocks are reformatted for display, taskComplete is
// unwrapped and suppresses all dispatch, then tool tags are checked in fixed
// precedence (readContextWindow, writeToContextWindow, runCommand,
// runQuickerAction). Only the first matching tag is acted on; duplicate tags
// after the first are left untouched in the display text.
func Extract(text string) (Result, error) {
	res := Result{Display: text}

	for _, m := range thinkRe.FindAllStringSubmatch(res.Display, -1) {
		res.Thinking = append(res.Thinking, m[1])
	}
	res.Display = thinkRe.ReplaceAllString(res.Display, "**Thinking:**\n\n$1\n\n**Answer:**\n\n")

	if taskCompleteRe.MatchString(res.Display) {
		res.TaskComplete = true
		res.Display = taskCompleteRe.ReplaceAllStringFunc(res.Display, func(m string) string {
			inner := taskCompleteRe.FindStringSubmatch(m)
			return strings.TrimSpace(inner[1])
		})
		return res, nil
	}

	if loc := readWindowRe.FindStringIndex(res.Display); loc != nil {
		res.Display = stripFirst(res.Display, loc)
		res.Invocation = &Invocation{Kind: KindReadWindow}
		return res, nil
	}

	if m := writeWindowRe.FindStringSubmatchIndex(res.Display); m != nil {
		block := res.Display[m[2]:m[3]]
		res.Display = stripFirst(res.Display, m[:2])
		params, err := parseWriteParams(block)
		if err != nil {
			return res, err
		}
		res.Invocation = &Invocation{Kind: KindWriteWindow, Write: params}
		return res, nil
	}

	if m := commandRe.FindStringSubmatchIndex(res.Display); m != nil {
		command := strings.TrimSpace(res.Display[m[2]:m[3]])
		res.Display = stripFirst(res.Display, m[:2])
		res.Invocation = &Invocation{Kind: KindCommand, Command: command}
		return res, nil
	}

	if m := actionRe.FindStringSubmatchIndex(res.Display); m != nil {
		action := strings.TrimSpace(res.Display[m[2]:m[3]])
		res.Display = stripFirst(res.Display, m[:2])
		res.Invocation = &Invocation{Kind: KindAction, Action: action}
		return res, nil
	}

	return res, nil
}

func parseWriteParams(block string) (WriteParams, error) {
	params := WriteParams{Mode: "append", Position: "end"}

	m := contentRe.FindStringSubmatch(block)
	if m == nil {
		return params, ErrMissingContent
	}
	content := strings.TrimSpace(m[1])
	if cm := cdataRe.FindStringSubmatch(content); cm != nil {
		content = cm[1]
	}
	if content == "" {
		return params, ErrMissingContent
	}
	params.Content = content

	if m := modeRe.FindStringSubmatch(block); m != nil && strings.TrimSpace(m[1]) != "" {
		params.Mode = strings.TrimSpace(m[1])
	}
	if m := positionRe.FindStringSubmatch(block); m != nil && strings.TrimSpace(m[1]) != "" {
		params.Position = strings.TrimSpace(m[1])
	}
	return params, nil
}

func stripFirst(text string, loc []int) string {
	return text[:loc[0]] + text[loc[1]:]
}
