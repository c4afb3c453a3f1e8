package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/mark3labs/snek/internal/tasks"
	"github.com/spf13/cobra"
)

var listFlags struct {
	all bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project's tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		engine, err := s.engine(tasks.Options{})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		list := engine.Set.Public()
		if listFlags.all {
			list = nil
			for _, name := range engine.Set.Names() {
				list = append(list, engine.Set.Get(name))
			}
		}
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Doc)
			if listFlags.all {
				for _, sub := range t.Subtasks {
					fmt.Fprintf(w, "  %s:%s\t%s\n", t.Name, sub.Name, sub.Actions[0])
				}
			}
		}
		return w.Flush()
	},
}

var runCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Run tasks (default: check style test)",
	Long: `Run tasks and everything they depend on.

With no arguments the default tasks run: check, style and test.
A single subtask is addressed as task:subtask, for example style:flake8.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTasks(cmd.Context(), tasks.Options{}, false, args...)
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean [task...]",
	Short: "Remove task outputs and forget their run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		engine, err := s.engine(tasks.Options{})
		if err != nil {
			return err
		}
		if len(args) == 0 {
			// engine.Clean with no names also drops every stamp.
			if err := engine.Run(cmd.Context(), "clean"); err != nil {
				return err
			}
		}
		return engine.Clean(cmd.Context(), args...)
	},
}

var taskFlags struct {
	minCoverage int
	yes         bool
}

// taskDocs are the short descriptions of the commands generated for tasks.
var taskDocs = []struct {
	name string
	doc  string
}{
	{"install", "Install project dependencies"},
	{"check", "Check formatting without changing files"},
	{"format", "Format the code with black and isort"},
	{"style", "Run flake8, pydocstyle and the isort check"},
	{"test", "Run the unit tests"},
	{"test-all", "Run the tests against every Python version with tox"},
	{"coverage", "Build and open the HTML coverage report"},
	{"docs", "Build and open the documentation"},
	{"serve-docs", "Serve the documentation with live reload"},
	{"merge", "Merge the current branch into a target branch"},
	{"release", "Bump, tag and push a new version"},
	{"build", "Build the distribution packages"},
	{"publish", "Upload the distribution packages"},
}

func addTaskCommands(root *cobra.Command) {
	for _, td := range taskDocs {
		name := td.name
		cmd := &cobra.Command{
			Use:   name,
			Short: td.doc,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTasks(cmd.Context(), tasks.Options{MinCoverage: taskFlags.minCoverage}, false, name)
			},
		}

		switch name {
		case "test":
			cmd.Flags().IntVar(&taskFlags.minCoverage, "min-coverage", 0, "Fail when coverage is below this percentage")
		case "merge":
			cmd.Use = "merge [branch]"
			cmd.Args = cobra.MaximumNArgs(1)
			cmd.RunE = func(cmd *cobra.Command, args []string) error {
				var opts tasks.Options
				if len(args) == 1 {
					opts.MergeBranch = args[0]
				}
				return runTasks(cmd.Context(), opts, false, "merge")
			}
		case "release":
			cmd.Use = "release [major|minor|patch]"
			cmd.Args = cobra.MaximumNArgs(1)
			cmd.Flags().BoolVarP(&taskFlags.yes, "yes", "y", false, "Release without asking for confirmation")
			cmd.RunE = func(cmd *cobra.Command, args []string) error {
				var opts tasks.Options
				if len(args) == 1 {
					opts.ReleasePart = args[0]
				}
				return runTasks(cmd.Context(), opts, taskFlags.yes, "release")
			}
		}
		root.AddCommand(cmd)
	}
}

func init() {
	listCmd.Flags().BoolVarP(&listFlags.all, "all", "a", false, "Include private tasks and subtasks")
}
