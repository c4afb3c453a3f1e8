package bake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LinePrompter asks for each variable on a line of text input, the way
// cookiecutter does.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter creates a LinePrompter reading answers from r.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(r), writer: w}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask implements Prompter. Choice variables are answered by number.
func (p *LinePrompter) Ask(v Variable, def string) (string, error) {
	if !v.IsChoice() {
		fmt.Fprintf(p.writer, "%s [%s]: ", v.Name, def)
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return def, nil
		}
		return answer, nil
	}

	defIndex := 1
	fmt.Fprintf(p.writer, "Select %s:\n", v.Name)
	numbers := make([]string, len(v.Choices))
	for i, c := range v.Choices {
		numbers[i] = strconv.Itoa(i + 1)
		if c == def {
			defIndex = i + 1
		}
		fmt.Fprintf(p.writer, "%d - %s\n", i+1, c)
	}

	for {
		fmt.Fprintf(p.writer, "Choose from %s [%d]: ", strings.Join(numbers, ", "), defIndex)
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return v.Choices[defIndex-1], nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(v.Choices) {
			return v.Choices[n-1], nil
		}
		fmt.Fprintf(p.writer, "%q is not a valid choice\n", answer)
	}
}
