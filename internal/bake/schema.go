package bake

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// slugPattern restricts project_slug to a lowercase Python identifier.
const slugPattern = `^[a-z_][a-z0-9_]*$`

// Schema returns a JSON schema document that accepts exactly the contexts
// def can produce.
func (d *Definition) Schema() ([]byte, error) {
	props := make(map[string]any, len(d.Variables))
	required := make([]string, 0, len(d.Variables))
	for _, v := range d.Variables {
		p := map[string]any{"type": "string"}
		if v.IsChoice() {
			p["enum"] = v.Choices
		}
		if v.Name == SlugKey {
			p["pattern"] = slugPattern
		}
		props[v.Name] = p
		required = append(required, v.Name)
	}
	return json.Marshal(map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	})
}

// Validate checks a resolved context against the definition's schema.
func (d *Definition) Validate(ctx Context) error {
	doc, err := d.Schema()
	if err != nil {
		return err
	}
	schema, err := jsonschema.CompileString("context.schema.json", string(doc))
	if err != nil {
		return fmt.Errorf("compiling context schema: %w", err)
	}

	instance := make(map[string]any, len(ctx))
	for k, v := range ctx {
		instance[k] = v
	}
	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return contextErrorFrom(verr)
		}
		return err
	}
	return nil
}

// contextErrorFrom reports the first leaf cause, which names the variable.
func contextErrorFrom(verr *jsonschema.ValidationError) error {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	key := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if key == "" {
		key = "(context)"
	}
	return &ContextError{Key: key, Err: errors.New(leaf.Message)}
}
