package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/mark3labs/snek/internal/config"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/tui/theme"
	"github.com/mark3labs/snek/internal/workflow"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █▄ █ █▀▀ █▄▀"
	logoText2 = "▄▄█ █ ▀█ ██▄ █ █"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	dir     string
	verbose bool
}

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		if workflow.IsFailure(err) {
			logger.Warn("%s: %v", workflow.ReasonOf(err), err)
		} else {
			logger.Error("Command execution failed: %v", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snek",
	Short: "Python project template generator and task runner",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return nil
		}
		if !lipgloss.HasDarkBackground(os.Stdin, os.Stdout) {
			theme.SetCurrent(theme.NewCatppuccinLatte())
		}
		return nil
	},
	SilenceUsage: true,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Success, t.Primary)
	line2 := theme.ApplyGradient(logoText2, t.Success, t.Primary)
	return strings.Join([]string{line1, line2}, "\n")
}

// loadConfig loads the configuration of the project directory and applies
// its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootFlags.dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	logger.Debug("config loaded for %s: main_branch=%s remote=%s wrapper=%q", rootFlags.dir, cfg.MainBranch, cfg.Remote, cfg.Wrapper)
	return cfg, nil
}

func init() {
	rootCmd.Long = renderLogo() + `

snek bakes new Python projects from a template and then runs their
development tasks: installing dependencies, formatting, style checks,
tests, docs, packaging, and the merge and release git workflows.

Tasks only rerun when their source files change.`

	rootCmd.PersistentFlags().StringVarP(&rootFlags.dir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Stream the output of every command")

	rootCmd.AddCommand(bakeCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(autoCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(mcpCmd)
	addTaskCommands(rootCmd)
}
