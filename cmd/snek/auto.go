package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/tasks"
	"github.com/mark3labs/snek/internal/watch"
	"github.com/spf13/cobra"
)

var autoCmd = &cobra.Command{
	Use:   "auto <task>",
	Short: "Rerun a task whenever its source files change",
	Long: `Run a task, then watch the files it depends on and run it again
each time one of them changes. Stop with ctrl+c.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuto,
}

func runAuto(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := args[0]
	s, err := newSession()
	if err != nil {
		return err
	}
	engine, err := s.engine(tasks.Options{})
	if err != nil {
		return err
	}
	t, sub, err := engine.Set.Lookup(name)
	if err != nil {
		return err
	}
	files := watchedFiles(engine.Set, t, sub)
	if len(files) == 0 {
		return fmt.Errorf("task %s has no file dependencies to watch", name)
	}

	w, err := watch.New(s.dir, files, filepath.Join(s.dir, s.cfg.StateDir))
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		// The task set is rebuilt so that new Python files are picked up.
		engine, err := s.engine(tasks.Options{})
		if err != nil {
			return err
		}
		return engine.Run(ctx, name)
	}
	if err := run(ctx); err != nil {
		logger.Warn("auto %s: %v", name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d files for %s\n", len(files), name)
	err = w.Run(ctx, func(ctx context.Context, changed []string) error {
		logger.Info("changed: %v", changed)
		return run(ctx)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// watchedFiles collects the file deps of t (or sub) and of every task they
// depend on.
func watchedFiles(set *tasks.Set, t, sub *tasks.Task) []string {
	seen := make(map[string]bool)
	visited := make(map[*tasks.Task]bool)
	var files []string

	var collect func(t *tasks.Task, withSubtasks bool)
	collect = func(t *tasks.Task, withSubtasks bool) {
		if t == nil || visited[t] {
			return
		}
		visited[t] = true
		for _, f := range t.FileDeps {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
		for _, dep := range t.TaskDeps {
			dt, ds, err := set.Lookup(dep)
			if err != nil {
				continue
			}
			if ds != nil {
				collect(ds, false)
			} else {
				collect(dt, true)
			}
		}
		if withSubtasks {
			for _, s := range t.Subtasks {
				collect(s, false)
			}
		}
	}

	if sub != nil {
		collect(sub, false)
	} else {
		collect(t, true)
	}
	return files
}
