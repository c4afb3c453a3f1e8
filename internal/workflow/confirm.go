package workflow

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer asks the operator a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(question string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(question string) bool {
	return f(question)
}

// PromptConfirmer reads the answer from a line of text input.
type PromptConfirmer struct {
	Reader io.Reader
	Writer io.Writer
}

// NewPromptConfirmer creates a PromptConfirmer on stdin and stdout.
func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{Reader: os.Stdin, Writer: os.Stdout}
}

// Confirm implements Confirmer. Only answers starting with y or Y are
// affirmative; a read error counts as no.
func (p *PromptConfirmer) Confirm(question string) bool {
	fmt.Fprintf(p.Writer, "%s [y/N] ", question)

	reader := bufio.NewReader(p.Reader)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	answer = strings.TrimSpace(answer)
	return strings.HasPrefix(strings.ToLower(answer), "y")
}

// StaticConfirmer answers every question with the same value. true backs
// release --yes, false is the non-interactive default.
type StaticConfirmer bool

// Confirm implements Confirmer.
func (s StaticConfirmer) Confirm(string) bool {
	return bool(s)
}
