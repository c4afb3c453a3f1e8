package bake

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SlugKey is the variable whose value must be an identifier-safe slug.
const SlugKey = "project_slug"

// ErrInvalidChoice is returned for a value outside a choice variable's choices.
var ErrInvalidChoice = errors.New("invalid choice")

// ContextError names the variable a context problem is about.
type ContextError struct {
	Key string
	Err error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("context variable %s: %v", e.Key, e.Err)
}

func (e *ContextError) Unwrap() error {
	return e.Err
}

// Context maps variable names to their values.
type Context map[string]string

// Slugify lowercases name and replaces spaces and hyphens with underscores.
func Slugify(name string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(name))
}

// ValidSlug reports whether s can name a Python package: a lowercase slug
// without hyphens.
func ValidSlug(s string) bool {
	return slug.IsSlug(s) && !strings.Contains(s, "-")
}

// Funcs returns the functions available to templates. now is the value
// returned by the now and year functions.
func Funcs(now time.Time) template.FuncMap {
	title := cases.Title(language.English)
	return template.FuncMap{
		"now":     func() time.Time { return now },
		"year":    func() string { return strconv.Itoa(now.Year()) },
		"slugify": Slugify,
		"title":   title.String,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"repeat":  func(s string, n int) string { return strings.Repeat(s, n) },
	}
}

func renderString(name, text string, data any, funcs template.FuncMap) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Prompter asks the user for the value of a variable. def is the value that
// applies when the user just presses enter.
type Prompter interface {
	Ask(v Variable, def string) (string, error)
}

// Sources are the layers a variable's value may come from, lowest first:
// the definition default, Defaults (user configuration), Extra (command
// line) and finally the Prompter when one is set.
type Sources struct {
	Defaults map[string]string
	Extra    map[string]string
	Prompter Prompter
	Now      time.Time
}

// Resolve computes the context for def. Variables are resolved in
// declaration order so that string defaults can refer to earlier values.
func Resolve(def *Definition, src Sources) (Context, error) {
	now := src.Now
	if now.IsZero() {
		now = time.Now()
	}
	funcs := Funcs(now)

	for key := range src.Extra {
		if _, ok := def.Variable(key); !ok {
			return nil, &ContextError{Key: key, Err: errors.New("not defined by the template")}
		}
	}

	ctx := make(Context, len(def.Variables))
	for _, v := range def.Variables {
		value := v.Default
		if !v.IsChoice() {
			rendered, err := renderString(v.Name, v.Default, ctx, funcs)
			if err != nil {
				return nil, &ContextError{Key: v.Name, Err: err}
			}
			value = rendered
		}
		if d, ok := src.Defaults[v.Name]; ok {
			value = d
		}
		if x, ok := src.Extra[v.Name]; ok {
			value = x
		}
		if !v.Valid(value) {
			return nil, &ContextError{Key: v.Name, Err: fmt.Errorf("%w %q, expected one of %s", ErrInvalidChoice, value, strings.Join(v.Choices, ", "))}
		}

		if src.Prompter != nil {
			answer, err := src.Prompter.Ask(v, value)
			if err != nil {
				return nil, &ContextError{Key: v.Name, Err: err}
			}
			if !v.Valid(answer) {
				return nil, &ContextError{Key: v.Name, Err: fmt.Errorf("%w %q", ErrInvalidChoice, answer)}
			}
			value = answer
		}
		ctx[v.Name] = value
	}

	if s, ok := ctx[SlugKey]; ok && !ValidSlug(s) {
		return nil, &ContextError{Key: SlugKey, Err: fmt.Errorf("%q is not a valid package name", s)}
	}
	return ctx, nil
}
