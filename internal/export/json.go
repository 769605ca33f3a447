package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/perks-tracker/constants"
)

// CandidateJSONSchema describes the JSON export: an array of candidate rows.
func CandidateJSONSchema() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"merchant", "description", "confidence", "issuer", "source"},
			"properties": map[string]any{
				"merchant":    map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"value":       map[string]any{"type": "string"},
				"expiration":  map[string]any{"type": "string"},
				"confidence":  map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"issuer":      map[string]any{"type": "string", "enum": constants.IssuersAsStringSlice()},
				"source":      map[string]any{"type": "string"},
				"lines": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer", "minimum": 0},
				},
			},
			"additionalProperties": false,
		},
	}
}

// CandidatesJSON encodes rows and checks the result against CandidateJSONSchema.
func CandidatesJSON(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}
	if err := ValidateJSONAgainstSchema(CandidateJSONSchema(), data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
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
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
