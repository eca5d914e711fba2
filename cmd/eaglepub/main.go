// Command eaglepub is an interactive publishing client for the Eagle API:
// connect with a bearer token, pick a persona and destination teams,
// compose an article, and publish it to each team with per-team results.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"eaglepub/internal/api"
	"eaglepub/internal/config"
	"eaglepub/internal/logbook"
	"eaglepub/internal/publisher"
	"eaglepub/internal/refdata"
	"eaglepub/internal/session"
	"eaglepub/internal/tui"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "eaglepub",
	Short:   "Publish articles to an Eagle simulation",
	Long:    "eaglepub walks you through connecting to the Eagle API, choosing a persona and teams, composing an article, and publishing it to every selected team.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}
		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("eaglepub", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config to ~/.config/eaglepub/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}
		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Printf("Created config: %s\n", target)
		return nil
	},
}

func runTUI() error {
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open logbook: %w", err)
	}

	client := api.New(cfg.API.BaseURL, api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}))
	cache := refdata.New(client, refdata.WithTTL(cfg.TTL()))
	sess := session.New(cache)
	orch := publisher.New(client, publisher.WithDelay(cfg.Delay()))

	app := tui.NewApp(cfg, sess, orch, lb)
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
