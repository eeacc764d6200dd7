package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// LoadFile parses a script document from a YAML or JSON file.
func LoadFile(path string) (*ScriptDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a script document with strict unknown-field rejection.
// JSON documents are valid YAML and go through the same decoder.
func Load(r io.Reader) (*ScriptDocument, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc ScriptDocument
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("decode script: empty document")
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &doc, nil
}

// Parse is Load over a byte slice.
func Parse(data []byte) (*ScriptDocument, error) {
	return Load(bytes.NewReader(data))
}

// Validator checks documents against the generated JSON Schema.
// The schema is compiled once.
type Validator struct {
	schema *sjsonschema.Schema
}

// NewValidator compiles the script schema.
func NewValidator() (*Validator, error) {
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	schemaDoc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("script-v1.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("script-v1.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks doc against the schema and returns every violation found.
func (v *Validator) Validate(doc *ScriptDocument) []*ValidationError {
	data, err := json.Marshal(doc)
	if err != nil {
		return []*ValidationError{{Phase: PhaseSemantic, Message: fmt.Sprintf("marshal for schema validation: %v", err)}}
	}
	return v.ValidateJSON(data)
}

// ValidateJSON checks raw JSON against the schema.
func (v *Validator) ValidateJSON(data []byte) []*ValidationError {
	inst, err := sjsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []*ValidationError{{Phase: PhaseSemantic, Message: fmt.Sprintf("unmarshal document: %v", err)}}
	}

	err = v.schema.Validate(inst)
	if err == nil {
		return nil
	}

	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []*ValidationError{{Phase: PhaseSemantic, Message: err.Error()}}
	}

	var errs []*ValidationError
	for _, cause := range flattenValidationErrors(ve) {
		errs = append(errs, &ValidationError{
			Phase:   PhaseSemantic,
			Path:    instancePath(cause.InstanceLocation),
			Message: fmt.Sprintf("%v", cause.ErrorKind),
		})
	}
	return errs
}

// ValidateSemantic validates doc with a freshly compiled schema.
func ValidateSemantic(doc *ScriptDocument) []*ValidationError {
	v, err := NewValidator()
	if err != nil {
		return []*ValidationError{{Phase: PhaseSemantic, Message: err.Error()}}
	}
	return v.Validate(doc)
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// instancePath renders ["steps", "2", "view"] as "steps[2].view".
func instancePath(loc []string) string {
	var b strings.Builder
	for _, part := range loc {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
