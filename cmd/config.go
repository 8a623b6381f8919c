package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samsaffron/quicker-llm/internal/config"
)

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fatalf("%v", err)
		}
		path, _ := config.GetConfigPath()

		fmt.Printf("Config file:    %s", path)
		if !config.Exists() {
			fmt.Print(" (not created yet, run 'quicker-llm config init')")
		}
		fmt.Println()
		fmt.Printf("API endpoint:   %s\n", cfg.API.BaseURL)
		fmt.Printf("Model:          %s\n", cfg.API.Model)
		fmt.Printf("Temperature:    %g\n", cfg.API.Temperature)
		key := "not set"
		if cfg.API.APIKey != "" {
			key = "set"
		}
		fmt.Printf("API key:        %s\n", key)
		fmt.Printf("Bridge:         %s\n", cfg.Bridge.BaseURL)
		fmt.Printf("Commands:       %t\n", cfg.Tools.Commands)
		fmt.Printf("Actions:        %t\n", cfg.Tools.Actions)
		fmt.Printf("Max history:    %d\n", cfg.Agent.MaxHistory)
		fmt.Printf("Max tool depth: %d\n", cfg.Agent.MaxToolDepth)
		fmt.Printf("Sessions:       %t\n", cfg.Session.Enabled)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with current settings",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fatalf("%v", err)
		}
		if err := config.Save(cfg); err != nil {
			fatalf("%v", err)
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("Wrote %s\n", path)
	},
}
