// Package hooks runs the commands a template declares for after generation.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/mark3labs/snek/internal/logger"
	"github.com/mark3labs/snek/internal/shell"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = "hooks.yml"

// LoadConfig loads the hooks configuration from the template root.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(fsys fs.FS) (*Config, error) {
	data, err := fs.ReadFile(fsys, ConfigFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No hooks config found in template")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config (version: %d, post_gen: %d)", cfg.Version, len(cfg.Hooks.PostGen))
	return &cfg, nil
}

// Error reports a hook that failed or timed out.
type Error struct {
	Command string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("hook %q failed: %v", e.Command, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Execute runs a hook command in workDir and returns its output.
// {{key}} placeholders in the command are replaced with vars[key] first.
// A non-zero exit or a timeout is returned as *Error.
func Execute(ctx context.Context, runner shell.Runner, hook *HookConfig, workDir string, vars map[string]string) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Deadline()
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := shell.Shell(execCtx, runner, workDir, command)
	output := res.Stdout
	if res.Stderr != "" {
		output += res.Stderr
	}

	// Cancellation of the caller's context is propagated as is.
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Hook command timed out after %s: %s", timeout, command)
		return output, &Error{Command: command, Output: output, Err: fmt.Errorf("timed out after %s", timeout)}
	}
	if _, err := shell.Check(res, err, "sh", "-c", command); err != nil {
		logger.Warn("Hook command failed: %v", err)
		return output, &Error{Command: command, Output: output, Err: err}
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// ExecuteAll runs hooks in order and stops at the first failure. The
// returned text is the concatenated output of the hooks that ran.
func ExecuteAll(ctx context.Context, runner shell.Runner, hooks []*HookConfig, workDir string, vars map[string]string) (string, error) {
	var out strings.Builder
	for _, hook := range hooks {
		output, err := Execute(ctx, runner, hook, workDir, vars)
		out.WriteString(output)
		if err != nil {
			return out.String(), err
		}
	}
	return out.String(), nil
}

// expandVariables replaces {{key}} placeholders in the command string.
// Longer keys are replaced first so that no key clobbers a longer one
// sharing its prefix.
func expandVariables(command string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	result := command
	for _, k := range keys {
		result = strings.ReplaceAll(result, "{{"+k+"}}", vars[k])
	}
	return result
}
