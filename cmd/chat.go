package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samsaffron/quicker-llm/internal/agent"
	"github.com/samsaffron/quicker-llm/internal/config"
	"github.com/samsaffron/quicker-llm/internal/llm"
	"github.com/samsaffron/quicker-llm/internal/quicker"
	"github.com/samsaffron/quicker-llm/internal/session"
	"github.com/samsaffron/quicker-llm/internal/ui"
)

var (
	chatModel    string
	chatCommands bool
	chatActions  bool
)

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Override the configured model")
	chatCmd.Flags().BoolVar(&chatCommands, "commands", false, "Allow the model to run commands")
	chatCmd.Flags().BoolVar(&chatActions, "actions", false, "Allow the model to run Quicker actions")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fatalf("%v", err)
		}
		overrides := [2]*bool{}
		if cmd.Flags().Changed("commands") {
			overrides[0] = &chatCommands
		}
		if cmd.Flags().Changed("actions") {
			overrides[1] = &chatActions
		}
		cfg.ApplyOverrides(chatModel, overrides[0], overrides[1])

		if err := runChat(cfg); err != nil {
			fatalf("%v", err)
		}
	},
}

// sessionRecorder adapts a session store to the loop's Recorder.
type sessionRecorder struct {
	store     session.Store
	sessionID string
}

func (r *sessionRecorder) RecordMessage(ctx context.Context, role, content string) error {
	return r.store.AddMessage(ctx, r.sessionID, &session.Message{Role: role, Content: content})
}

func runChat(cfg *config.Config) error {
	provider := llm.NewClient(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.Model, cfg.API.Temperature)

	var automation quicker.Automation = quicker.Noop{}
	if cfg.Bridge.BaseURL != "" {
		automation = quicker.NewBridgeClient(cfg.Bridge.BaseURL)
	}

	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	sess := &session.Session{Model: cfg.API.Model}
	if err := store.Create(ctx, sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	printer := ui.NewPrinter()
	loop := agent.NewLoop(provider, automation, printer, &sessionRecorder{store: store, sessionID: sess.ID}, agent.Options{
		MaxHistory:      cfg.Agent.MaxHistory,
		MaxToolDepth:    cfg.Agent.MaxToolDepth,
		CommandsEnabled: cfg.Tools.Commands,
		ActionsEnabled:  cfg.Tools.Actions,
		SystemPrompts:   cfg.Agent.SystemPrompts,
	})

	// Ctrl+C cancels the in-flight turn; at the prompt it exits.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		for range sigc {
			if interruptQuits(loop.State()) {
				fmt.Println()
				_ = finishSession(ctx, store, sess.ID, session.StatusInterrupted)
				os.Exit(130)
			}
			loop.Cancel()
		}
	}()

	fmt.Printf("Model: %s  (commands: %t, actions: %t)\n", cfg.API.Model, cfg.Tools.Commands, cfg.Tools.Actions)
	fmt.Println("Type a message, /retry to resend after a failure, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return finishSession(ctx, store, sess.ID, session.StatusComplete)
		case "/retry":
			if err := loop.Retry(ctx); err != nil && !errors.Is(err, context.Canceled) {
				printer.Notice(err.Error())
			}
			continue
		}

		if sess.Summary == "" {
			sess.Summary = session.TruncateSummary(line)
		}
		if err := loop.Send(ctx, line); err != nil {
			if errors.Is(err, agent.ErrBusy) {
				printer.Notice("Still working on the previous message.")
			}
			// Stream errors were already shown with a retry hint.
		}
	}
	if err := scanner.Err(); err != nil {
		finishSession(ctx, store, sess.ID, session.StatusError)
		return err
	}
	return finishSession(ctx, store, sess.ID, session.StatusComplete)
}

func finishSession(ctx context.Context, store session.Store, id string, status session.Status) error {
	return store.UpdateStatus(ctx, id, status)
}

// interruptQuits reports whether Ctrl+C should exit the REPL: only when no
// turn is in flight. A busy loop gets cancelled instead.
func interruptQuits(state agent.State) bool {
	return state == agent.StateIdle
}
