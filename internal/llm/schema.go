package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildDocumentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We send it to the model as an output constraint and also use
// it locally to validate the reply: every permitted field is a string
// property, unknown keys are rejected, and "summary" is required whenever the
// profile lists it.
func BuildDocumentJSONSchema(fieldNames []string) map[string]any {
	properties := make(map[string]any, len(fieldNames))
	var required []string
	for _, name := range fieldNames {
		properties[name] = map[string]any{"type": "string"}
		if name == "summary" {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ValidateJSONAgainstSchema checks data against the given schema map.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schemaBytes, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
