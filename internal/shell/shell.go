package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
	"github.com/mark3labs/snek/internal/logger"
)

// Result is the outcome of one subprocess.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the process exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes a program with arguments in a working directory.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (Result, error)
}

// ExitError is returned by Check when a process exits non-zero.
type ExitError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", CommandLine(e.Name, e.Args...), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Check converts a non-zero Result into an *ExitError.
func Check(res Result, err error, name string, args ...string) (Result, error) {
	if err != nil {
		return res, err
	}
	if !res.OK() {
		return res, &ExitError{Name: name, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

// CommandLine joins a program and its arguments the way they are logged and
// the way FakeRunner keys its responses.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Exec is the os/exec backed Runner.
type Exec struct {
	// Echo, when set, receives the live stdout and stderr of every process
	// in addition to the captured copies in Result.
	Echo io.Writer

	// Env is appended to the inherited environment.
	Env []string

	// Stdin is connected to the process when set. Interactive tools such as
	// mkdocs serve need it.
	Stdin io.Reader
}

// NewExec creates an Exec runner that echoes output to echo (may be nil).
func NewExec(echo io.Writer) *Exec {
	return &Exec{Echo: echo}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	logger.Debug("Executing: %s (dir=%s)", CommandLine(name, args...), dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	if e.Stdin != nil {
		cmd.Stdin = e.Stdin
	}

	var stdout, stderr bytes.Buffer
	if e.Echo != nil {
		cmd.Stdout = io.MultiWriter(&stdout, e.Echo)
		cmd.Stderr = io.MultiWriter(&stderr, e.Echo)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("running %s: %w", name, err)
		}
		res.ExitCode = sh.ExitStatus(err)
		logger.Debug("%s exited with status %d", name, res.ExitCode)
	}
	return res, nil
}

// Shell runs a command string through sh -c, the form task actions are
// written in.
func Shell(ctx context.Context, r Runner, dir, command string) (Result, error) {
	return r.Run(ctx, dir, "sh", "-c", command)
}

// Streamer is a Runner that can echo live output to a writer.
type Streamer interface {
	Runner
	WithEcho(w io.Writer) Runner
}

// WithEcho returns a copy of e that echoes output to w.
func (e *Exec) WithEcho(w io.Writer) Runner {
	cp := *e
	cp.Echo = w
	return &cp
}
