package bake

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mark3labs/snek/internal/hooks"
	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/shell"
)

// Options control a bake.
type Options struct {
	Template fs.FS
	Output   string

	// Defaults and Extra feed Resolve; Prompter is nil for --no-input.
	Defaults map[string]string
	Extra    map[string]string
	Prompter Prompter

	Overwrite bool

	// SkipHooks disables hooks.yml, as --diff previews do.
	SkipHooks bool
	Runner    shell.Runner

	Now time.Time
}

// Result describes a generated project.
type Result struct {
	Dir        string
	Context    Context
	Pruned     []string
	HookOutput string
}

// Bake resolves the context, renders the template into opts.Output, prunes
// files that do not apply and then runs the template's post-generation hooks.
// When any of those steps fails, a project directory created by this call is
// removed again.
func Bake(ctx context.Context, opts Options) (_ *Result, err error) {
	def, err := LoadDefinition(opts.Template)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	values, err := Resolve(def, Sources{
		Defaults: opts.Defaults,
		Extra:    opts.Extra,
		Prompter: opts.Prompter,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	if err := def.Validate(values); err != nil {
		return nil, err
	}

	r := &renderer{fsys: opts.Template, def: def, ctx: values, funcs: Funcs(now)}
	dir, created, err := r.render(opts.Output, opts.Overwrite)
	if created {
		defer func() {
			if err == nil {
				return
			}
			logger.Debug("removing %s after failed bake", dir)
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				err = errors.Join(err, fmt.Errorf("removing %s: %w", dir, rmErr))
			}
		}()
	}
	if err != nil {
		return nil, err
	}
	logger.Info("rendered %s", dir)

	pruned, err := Prune(dir, values)
	if err != nil {
		return nil, fmt.Errorf("pruning %s: %w", dir, err)
	}
	result := &Result{Dir: dir, Context: values, Pruned: pruned}

	if opts.SkipHooks {
		return result, nil
	}
	cfg, err := hooks.LoadConfig(opts.Template)
	if err != nil {
		return nil, err
	}
	if cfg == nil || len(cfg.Hooks.PostGen) == 0 {
		return result, nil
	}
	runner := opts.Runner
	if runner == nil {
		runner = shell.NewExec(nil)
	}
	out, err := hooks.ExecuteAll(ctx, runner, cfg.Hooks.PostGen, dir, values)
	result.HookOutput = out
	if err != nil {
		return result, err
	}
	return result, nil
}
