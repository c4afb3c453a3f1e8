package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/snek/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
	edit    bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create snek configuration file",
	Long: `Create a snek configuration file with the current settings.

By default, creates a global config at ~/.config/snek/snek.yml.
Use --project to create a project-local config in the project directory.
With --edit the file is opened in $EDITOR once written.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in the project directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().BoolVarP(&setupFlags.edit, "edit", "e", false, "Open the config file in your editor")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath(rootFlags.dir)
	}

	if !setupFlags.force && fileExists(targetPath) {
		if setupFlags.edit {
			return openEditor(targetPath)
		}
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	// Start from the effective configuration so env overrides are kept
	cfg, err := config.Load(rootFlags.dir)
	if err != nil {
		cfg = config.Defaults()
	}

	if setupFlags.project {
		err = config.WriteProject(rootFlags.dir, cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config written to: %s\n", targetPath)
	if setupFlags.edit {
		return openEditor(targetPath)
	}
	return nil
}

func openEditor(path string) error {
	c, err := editor.Command("snek", path)
	if err != nil {
		return fmt.Errorf("finding editor: %w", err)
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	if _, err := config.Load(rootFlags.dir); err != nil {
		return fmt.Errorf("edited config is invalid: %w", err)
	}
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
