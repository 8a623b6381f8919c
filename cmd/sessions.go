package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samsaffron/quicker-llm/internal/config"
	"github.com/samsaffron/quicker-llm/internal/session"
	"github.com/samsaffron/quicker-llm/internal/ui"
)

var sessionsLimit int

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Max sessions to list")
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved chat sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		sessions, err := store.List(context.Background(), sessionsLimit)
		if err != nil {
			fatalf("%v", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No saved sessions.")
			return
		}
		for _, s := range sessions {
			fmt.Printf("%s  %-12s %-11s %s\n",
				s.ID[:8], s.UpdatedAt.Format("2006-01-02"), s.Status, s.Summary)
		}
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the transcript of one session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		ctx := context.Background()
		target, err := resolveSessionID(ctx, store, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		messages, err := store.GetMessages(ctx, target)
		if err != nil {
			fatalf("%v", err)
		}
		for _, m := range messages {
			fmt.Printf("[%s]\n%s\n\n", m.Role, ui.RenderMarkdown(m.Content, 80))
		}
	},
}

func openStore() session.Store {
	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		fatalf("%v", err)
	}
	return store
}

// resolveSessionID accepts a full session ID or a unique prefix.
func resolveSessionID(ctx context.Context, store session.Store, id string) (string, error) {
	if sess, err := store.Get(ctx, id); err != nil {
		return "", err
	} else if sess != nil {
		return sess.ID, nil
	}

	sessions, err := store.List(ctx, 0)
	if err != nil {
		return "", err
	}
	var match string
	for _, s := range sessions {
		if len(id) > 0 && len(s.ID) >= len(id) && s.ID[:len(id)] == id {
			if match != "" {
				return "", fmt.Errorf("session prefix %q is ambiguous", id)
			}
			match = s.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no session matches %q", id)
	}
	return match, nil
}
