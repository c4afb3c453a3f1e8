package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/snek/internal/shell"
)

// Bumper changes the project version. With dryRun set it only reports what
// would change.
type Bumper interface {
	Bump(ctx context.Context, part string, dryRun bool) (string, error)
}

// CommandBumper runs an external bump tool such as bump2version, which is
// expected to commit and tag the new version itself.
type CommandBumper struct {
	Runner  shell.Runner
	Dir     string
	Command string
}

// NewCommandBumper creates a CommandBumper for command (for example
// "poetry run bump2version") run in dir.
func NewCommandBumper(runner shell.Runner, dir, command string) *CommandBumper {
	return &CommandBumper{Runner: runner, Dir: dir, Command: command}
}

// Bump implements Bumper. The returned text is the tool's combined output.
func (b *CommandBumper) Bump(ctx context.Context, part string, dryRun bool) (string, error) {
	fields := strings.Fields(b.Command)
	if len(fields) == 0 {
		return "", fmt.Errorf("bump command is empty")
	}

	args := append([]string(nil), fields[1:]...)
	if dryRun {
		args = append(args, "--dry-run", "--verbose")
	}
	args = append(args, part)

	res, err := b.Runner.Run(ctx, b.Dir, fields[0], args...)
	if _, err := shell.Check(res, err, fields[0], args...); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout + res.Stderr), nil
}
