package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the canonical identifier of the script schema.
const SchemaID = "https://github.com/aretw0/guidepost/schemas/script-v1.json"

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from
// ScriptDocument using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&ScriptDocument{})
	s.ID = SchemaID
	s.Title = "Guidepost Tour Script v1"
	s.Description = "Schema for guidepost tour script documents"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
