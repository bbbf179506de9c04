package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema the model's reply must satisfy. Build one with
// MustSchema so it is compiled once, when the package declaring it loads.
type Schema struct {
	// Name is sent as the OpenAI schema name. Kebab-case.
	Name        string
	Description string
	Definition  map[string]any

	compiled *jsonschema.Schema
}

// NewSchema compiles def.
func NewSchema(name, description string, def map[string]any) (*Schema, error) {
	// The compiler wants the decoded form of the document, not Go maps with
	// typed slices.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}

	url := "lectura://schemas/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &Schema{Name: name, Description: description, Definition: def, compiled: compiled}, nil
}

// MustSchema is NewSchema for package-level declarations.
func MustSchema(name, description string, def map[string]any) *Schema {
	s, err := NewSchema(name, description, def)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw against the schema. A nil schema accepts anything.
// Failures are *Error with KindInvalidOutput.
func (s *Schema) Validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &Error{Kind: KindInvalidOutput, Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &Error{Kind: KindInvalidOutput, Content: raw, Err: fmt.Errorf("%s: %w", s.Name, err)}
	}
	return nil
}
