// Package browser opens files and URLs with the platform's default handler.
package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mark3labs/snek/internal/shell"
)

// Opener opens a target (URL or local path) for the user.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// System opens targets using xdg-open, open or rundll32 depending on GOOS.
type System struct {
	Runner shell.Runner
	GOOS   string
}

// New creates a System opener for the running platform.
func New(runner shell.Runner) *System {
	return &System{Runner: runner, GOOS: runtime.GOOS}
}

// Command returns the program and arguments that open target.
func (s *System) Command(target string) (string, []string) {
	switch s.GOOS {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// Open implements Opener. Local paths are turned into file:// URLs.
func (s *System) Open(ctx context.Context, target string) error {
	name, args := s.Command(URL(target))
	res, err := s.Runner.Run(ctx, "", name, args...)
	if _, err := shell.Check(res, err, name, args...); err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}
	return nil
}

// URL converts a local path into a file:// URL and leaves URLs untouched.
func URL(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return "file://" + filepath.ToSlash(abs)
}
