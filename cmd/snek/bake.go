package main

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/snek/internal/bake"
	"github.com/mark3labs/snek/internal/bake/skeleton"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/shell"
	"github.com/mark3labs/snek/internal/tui"
	"github.com/spf13/cobra"
)

var bakeFlags struct {
	output    string
	template  string
	noInput   bool
	overwrite bool
	skipHooks bool
	diff      string
}

var bakeCmd = &cobra.Command{
	Use:   "bake [key=value...]",
	Short: "Generate a new Python project from a template",
	Long: `Generate a new Python project from a template.

The built-in template is used unless --template names a template directory.
Context values are asked for interactively; key=value arguments and the
default_context configuration key pre-fill them. With --no-input the
defaults are used without asking.

With --diff DIR nothing is written: the project is rendered into a
temporary directory and compared with DIR.`,
	RunE: runBake,
}

func init() {
	bakeCmd.Flags().StringVarP(&bakeFlags.output, "output", "o", ".", "Directory to create the project in")
	bakeCmd.Flags().StringVarP(&bakeFlags.template, "template", "t", "", "Template directory (default: built-in template)")
	bakeCmd.Flags().BoolVar(&bakeFlags.noInput, "no-input", false, "Do not prompt, use defaults and key=value arguments")
	bakeCmd.Flags().BoolVarP(&bakeFlags.overwrite, "overwrite", "f", false, "Overwrite the contents of an existing project directory")
	bakeCmd.Flags().BoolVar(&bakeFlags.skipHooks, "skip-hooks", false, "Do not run the template's post-generation hooks")
	bakeCmd.Flags().StringVar(&bakeFlags.diff, "diff", "", "Compare the rendered project with an existing directory instead of writing it")
}

// parseExtra parses key=value arguments.
func parseExtra(args []string) (map[string]string, error) {
	extra := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context argument %q, expected key=value", arg)
		}
		extra[key] = value
	}
	return extra, nil
}

func templateFS() fs.FS {
	if bakeFlags.template == "" {
		return skeleton.FS()
	}
	return os.DirFS(bakeFlags.template)
}

func runBake(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	extra, err := parseExtra(args)
	if err != nil {
		return err
	}

	opts := bake.Options{
		Template:  templateFS(),
		Output:    bakeFlags.output,
		Defaults:  cfg.DefaultContext,
		Extra:     extra,
		Overwrite: bakeFlags.overwrite,
		SkipHooks: bakeFlags.skipHooks,
		Runner:    shell.NewExec(nil),
	}
	if !bakeFlags.noInput {
		opts.Prompter = bake.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	out := cmd.OutOrStdout()
	if bakeFlags.diff != "" {
		diffs, err := bake.Preview(cmd.Context(), opts, bakeFlags.diff)
		if err != nil {
			return err
		}
		if len(diffs) == 0 {
			fmt.Fprintf(out, "%s is up to date with the template\n", bakeFlags.diff)
			return nil
		}
		profile := colorprofile.Detect(os.Stdout, os.Environ())
		w := &colorprofile.Writer{Forward: out, Profile: profile}
		for _, d := range diffs {
			fmt.Fprintln(w, tui.HighlightDiff(d.Diff, profile))
		}
		return nil
	}

	res, err := bake.Bake(cmd.Context(), opts)
	if res != nil && res.HookOutput != "" {
		fmt.Fprint(out, res.HookOutput)
	}
	if err != nil {
		return err
	}
	for _, p := range res.Pruned {
		logger.Debug("not applicable: %s", p)
	}
	fmt.Fprintf(out, "Created %s\n", res.Dir)
	return nil
}
