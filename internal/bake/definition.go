// Package bake renders a project template into a new project directory.
//
// A template is a directory holding a cookiecutter.json context definition
// and exactly one top-level directory whose name is itself a template, for
// example "{{.project_slug}}". Every path element and file body below it is
// a text/template executed with the resolved context.
package bake

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionFile is the context definition at the template root.
const DefinitionFile = "cookiecutter.json"

// Variable is one context key. A variable with Choices is a choice variable
// whose default is its first choice; otherwise Default is a template
// rendered against the variables declared before it.
type Variable struct {
	Name    string
	Default string
	Choices []string
}

// IsChoice reports whether v only accepts one of its Choices.
func (v Variable) IsChoice() bool {
	return len(v.Choices) > 0
}

// Valid reports whether value is acceptable for v.
func (v Variable) Valid(value string) bool {
	if !v.IsChoice() {
		return true
	}
	for _, c := range v.Choices {
		if c == value {
			return true
		}
	}
	return false
}

// Definition is a parsed cookiecutter.json, in declaration order.
type Definition struct {
	Variables []Variable

	// CopyWithoutRender are globs of output paths copied verbatim.
	CopyWithoutRender []string
	// Executable are globs of output paths given mode 0755.
	Executable []string
}

// Variable returns the variable called name.
func (d *Definition) Variable(name string) (Variable, bool) {
	for _, v := range d.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// LoadDefinition reads DefinitionFile from the template root.
func LoadDefinition(fsys fs.FS) (*Definition, error) {
	data, err := fs.ReadFile(fsys, DefinitionFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", DefinitionFile, err)
	}
	return ParseDefinition(data)
}

// ParseDefinition parses a context definition. JSON is decoded through the
// YAML node API so that key order survives.
func ParseDefinition(data []byte) (*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", DefinitionFile, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New(DefinitionFile + " must contain an object")
	}

	root := doc.Content[0]
	def := &Definition{}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		if seen[key] {
			return nil, fmt.Errorf("%s: duplicate key %q", DefinitionFile, key)
		}
		seen[key] = true

		if strings.HasPrefix(key, "_") {
			if err := def.private(key, value); err != nil {
				return nil, err
			}
			continue
		}

		v := Variable{Name: key}
		switch value.Kind {
		case yaml.ScalarNode:
			v.Default = value.Value
		case yaml.SequenceNode:
			choices, err := stringList(key, value)
			if err != nil {
				return nil, err
			}
			if len(choices) == 0 {
				return nil, fmt.Errorf("%s: %q has no choices", DefinitionFile, key)
			}
			v.Choices = choices
			v.Default = choices[0]
		default:
			return nil, fmt.Errorf("%s: %q must be a string or a list of strings", DefinitionFile, key)
		}
		def.Variables = append(def.Variables, v)
	}
	return def, nil
}

func (d *Definition) private(key string, value *yaml.Node) error {
	var err error
	switch key {
	case "_copy_without_render":
		d.CopyWithoutRender, err = stringList(key, value)
	case "_executable":
		d.Executable, err = stringList(key, value)
	}
	return err
}

func stringList(key string, node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: %q must be a list", DefinitionFile, key)
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s: %q must only contain strings", DefinitionFile, key)
		}
		out = append(out, item.Value)
	}
	return out, nil
}
