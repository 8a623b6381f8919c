package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quicker-llm",
	Short: "Chat with an LLM that can drive Quicker automations",
	Long: `quicker-llm is a chat client for OpenAI-compatible APIs with a
tag-based tool protocol: the model can run commands, trigger Quicker
actions and read or write the linked window, with results fed back
into the conversation.

Examples:
  quicker-llm chat                       # interactive chat
  quicker-llm chat --commands            # allow command execution
  quicker-llm actions list               # list known Quicker actions
  quicker-llm config                     # view configuration`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var debugLogs bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Emit debug logs")
	cobra.OnInitialize(func() {
		level := slog.LevelWarn
		if debugLogs {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
