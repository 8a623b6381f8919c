package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samsaffron/quicker-llm/internal/config"
	"github.com/samsaffron/quicker-llm/internal/quicker"
)

func init() {
	actionsCmd.AddCommand(actionsListCmd)
	rootCmd.AddCommand(actionsCmd)
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Manage Quicker actions",
}

var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List actions known to the host",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fatalf("%v", err)
		}
		if cfg.Bridge.BaseURL == "" {
			fatalf("no bridge configured")
		}

		bridge := quicker.NewBridgeClient(cfg.Bridge.BaseURL)
		actions, err := quicker.LoadActions(context.Background(), bridge)
		if err != nil {
			fatalf("%v", err)
		}
		if len(actions) == 0 {
			fmt.Println("No actions defined.")
			return
		}
		for _, a := range actions {
			if a.Description != "" {
				fmt.Printf("%-30s %s\n", a.Name, a.Description)
			} else {
				fmt.Println(a.Name)
			}
		}
	},
}
