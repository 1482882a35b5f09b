package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

const schemaBaseURL = "https://carenavigator.local/schemas/"

// Schema is a named JSON Schema that model output must satisfy.
// Definition is sent to the backend for structured output; the compiled form validates replies locally.
type Schema struct {
	Name       string
	Definition map[string]interface{}
	compiled   *jsonschema.Schema
}

// NewSchema compiles definition under name.
func NewSchema(name string, definition map[string]interface{}) (*Schema, error) {
	data, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}

	url := schemaBaseURL + name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	return &Schema{
		Name:       name,
		Definition: definition,
		compiled:   compiled,
	}, nil
}

// MustSchema is like NewSchema but panics on error. Use for package-level schemas.
func MustSchema(name string, definition map[string]interface{}) *Schema {
	s, err := NewSchema(name, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse turns raw model text into validated JSON.
// Empty, malformed and non-conforming text all fail with a parse error.
func (s *Schema) Parse(text string) (json.RawMessage, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, apperrors.NewParseError("empty response from model", nil)
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, apperrors.NewParseError("model returned malformed JSON", err)
	}
	if err := s.compiled.Validate(payload); err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("model output does not match schema %s", s.Name), err)
	}

	return json.RawMessage(cleaned), nil
}

// stripCodeFence removes a ``` fenced block wrapper, with or without a language tag.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
