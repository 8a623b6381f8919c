package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/samsaffron/quicker-llm/internal/llm"
	"github.com/samsaffron/quicker-llm/internal/quicker"
	"github.com/samsaffron/quicker-llm/internal/tags"
)

// State reports what the loop is currently doing.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
	StateDispatching
)

// ErrBusy is returned when Send or Retry is called while a previous turn is
// still in flight.
var ErrBusy = errors.New("a request is already in progress")

// Presenter receives everything the loop wants shown. Implementations render
// to the terminal; tests capture calls.
type Presenter interface {
	// AssistantDelta is called with the full accumulated raw text after
	// every streamed fragment.
	AssistantDelta(text string)
	// AssistantDone is called once per model turn with the processed
	// display text (think blocks formatted, tool tags stripped).
	AssistantDone(display string)
	ToolResult(out Outcome)
	Notice(text string)
	// RetryAvailable marks the last user message as retryable after a
	// failed or cancelled turn.
	RetryAvailable()
}

// Recorder persists conversation messages. Nil disables persistence.
type Recorder interface {
	RecordMessage(ctx context.Context, role, content string) error
}

// Options tunes one Loop instance.
type Options struct {
	// MaxHistory caps the retained history; the oldest entries are dropped
	// once the cap is exceeded.
	MaxHistory int
	// MaxToolDepth caps tool round-trips per user message.
	MaxToolDepth    int
	CommandsEnabled bool
	ActionsEnabled  bool
	// SystemPrompts are user-configured texts appended to the synthesized
	// system message.
	SystemPrompts []string
}

const (
	defaultMaxHistory   = 30
	defaultMaxToolDepth = 10
)

// Loop drives one conversation: it sends requests, streams responses,
// extracts tool requests and feeds results back until the model stops asking
// for tools or the depth cap is hit.
type Loop struct {
	provider   llm.Provider
	automation quicker.Automation
	presenter  Presenter
	recorder   Recorder
	opts       Options

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	history     []llm.Message
	lastUser    string
	canRetry    bool
	lastCommand string
	lastAction  string
}

func NewLoop(provider llm.Provider, automation quicker.Automation, presenter Presenter, recorder Recorder, opts Options) *Loop {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = defaultMaxHistory
	}
	if opts.MaxToolDepth <= 0 {
		opts.MaxToolDepth = defaultMaxToolDepth
	}
	return &Loop{
		provider:   provider,
		automation: automation,
		presenter:  presenter,
		recorder:   recorder,
		opts:       opts,
	}
}

// State returns the current loop state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cancel aborts the in-flight turn, if any. The loop returns to idle and the
// interrupted user message becomes retryable.
func (l *Loop) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Send submits one user message and runs the conversation until the model
// stops requesting tools. Returns ErrBusy while a previous turn is running.
func (l *Loop) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	// "run action: X" style requests still go through the model; it decides
	// whether to emit the corresponding tool tag.
	if strings.HasPrefix(strings.ToLower(text), "run action:") {
		slog.Debug("direct action request routed through model", "text", text)
	}

	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return ErrBusy
	}
	l.state = StateAwaitingResponse
	l.lastUser = text
	l.canRetry = false
	l.history = appendCapped(l.history, llm.UserText(text), l.opts.MaxHistory)
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	l.record(runCtx, llm.RoleUser, text)
	return l.run(runCtx)
}

// Retry re-runs the last user message after a failure or cancellation. The
// message is already in history, so nothing is appended.
func (l *Loop) Retry(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return ErrBusy
	}
	if !l.canRetry || l.lastUser == "" {
		l.mu.Unlock()
		return errors.New("nothing to retry")
	}
	l.state = StateAwaitingResponse
	l.canRetry = false
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	return l.run(runCtx)
}

func (l *Loop) run(ctx context.Context) error {
	defer l.finish()

	actions := l.fetchActions(ctx)

	for depth := 0; depth < l.opts.MaxToolDepth; depth++ {
		l.setState(StateAwaitingResponse)

		raw, err := l.streamTurn(ctx, actions)
		if err != nil {
			l.presenter.Notice("Request failed: " + err.Error())
			l.presenter.RetryAvailable()
			l.markRetryable()
			return err
		}

		parsed, extractErr := tags.Extract(raw)
		l.appendAssistant(ctx, raw)
		l.presenter.AssistantDone(parsed.Display)
		for _, thought := range parsed.Thinking {
			slog.Debug("model thinking", "content", thought)
		}

		if parsed.TaskComplete || (parsed.Invocation == nil && extractErr == nil) {
			return nil
		}

		var out Outcome
		if extractErr != nil {
			// Extraction errors are write-parameter protocol errors:
			// skip dispatch, show the failure, let the model react.
			out = Outcome{
				Tool:   "writeToContextWindow",
				Label:  "Write window",
				Result: quicker.Failure(extractErr.Error()),
			}
		} else {
			inv := *parsed.Invocation
			// A tag whose feature toggle is off is treated as plain
			// text: no dispatch, no error, turn ends here.
			if !l.toolEnabled(inv.Kind) {
				return nil
			}
			l.setState(StateDispatching)
			out = Dispatch(ctx, l.automation, inv, actions)
		}

		l.presenter.ToolResult(out)
		l.rememberResult(out)

		feedback := out.FeedbackMessage()
		l.mu.Lock()
		l.history = appendCapped(l.history, llm.UserText(feedback), l.opts.MaxHistory)
		l.mu.Unlock()
		l.record(ctx, llm.RoleUser, feedback)
	}

	l.presenter.Notice(fmt.Sprintf("Stopped after %d tool calls; send a follow-up to continue.", l.opts.MaxToolDepth))
	return nil
}

// streamTurn sends one request and accumulates the streamed response. The
// raw text is only committed to history by the caller after the stream ends
// cleanly; a mid-stream failure leaves history untouched.
func (l *Loop) streamTurn(ctx context.Context, actions []quicker.ActionDefinition) (string, error) {
	window := quicker.FetchWindowContext(ctx, l.automation)
	system := BuildSystemPrompt(SystemPromptInput{
		Window:            window,
		Actions:           actions,
		LastCommandResult: l.lastCommand,
		LastActionResult:  l.lastAction,
		CommandsEnabled:   l.opts.CommandsEnabled,
		ActionsEnabled:    l.opts.ActionsEnabled,
		UserPrompts:       l.opts.SystemPrompts,
	})

	messages := append([]llm.Message{llm.SystemText(system)}, l.snapshotHistory()...)
	stream, err := l.provider.Stream(ctx, llm.Request{Messages: messages})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch ev.Type {
		case llm.EventTextDelta:
			b.WriteString(ev.Text)
			l.presenter.AssistantDelta(b.String())
		case llm.EventUsage:
			slog.Debug("usage", "input_tokens", ev.Use.InputTokens, "output_tokens", ev.Use.OutputTokens)
		case llm.EventError:
			return "", ev.Err
		}
	}
	return b.String(), nil
}

func (l *Loop) snapshotHistory() []llm.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]llm.Message(nil), l.history...)
}

// appendCapped appends one message and drops the oldest entries beyond limit.
func appendCapped(history []llm.Message, msg llm.Message, limit int) []llm.Message {
	history = append(history, msg)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

func (l *Loop) fetchActions(ctx context.Context) []quicker.ActionDefinition {
	if !l.opts.ActionsEnabled {
		return nil
	}
	actions, err := quicker.LoadActions(ctx, l.automation)
	if err != nil {
		slog.Debug("loading actions failed", "error", err)
		return nil
	}
	return actions
}

// toolEnabled reports whether the feature toggle for a tag family is on.
// Window reads and writes are always allowed.
func (l *Loop) toolEnabled(kind tags.Kind) bool {
	switch kind {
	case tags.KindCommand:
		return l.opts.CommandsEnabled
	case tags.KindAction:
		return l.opts.ActionsEnabled
	}
	return true
}

func (l *Loop) rememberResult(out Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := out.Result.Text()
	switch out.Tool {
	case "run_command":
		l.lastCommand = text
	case "runQuickerAction":
		l.lastAction = text
	}
}

func (l *Loop) appendAssistant(ctx context.Context, raw string) {
	l.mu.Lock()
	l.history = appendCapped(l.history, llm.AssistantText(raw), l.opts.MaxHistory)
	l.mu.Unlock()
	l.record(ctx, llm.RoleAssistant, raw)
}

func (l *Loop) record(ctx context.Context, role llm.Role, content string) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.RecordMessage(ctx, string(role), content); err != nil {
		slog.Debug("recording message failed", "error", err)
	}
}

func (l *Loop) markRetryable() {
	l.mu.Lock()
	l.canRetry = true
	l.mu.Unlock()
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) finish() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state = StateIdle
	l.mu.Unlock()
}
