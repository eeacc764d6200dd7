// Package schema defines the authored form of tour scripts and validates it.
//
// Scripts are written as YAML (or JSON, or markdown frontmatter through the
// loam adapter) and decoded into ScriptDocument. Validation runs in phases:
//
//   - structural: strict decoding, unknown fields are rejected.
//   - semantic: the document is checked against the JSON Schema generated
//     from ScriptDocument (see GenerateJSONSchema).
//   - domain: rules that need the host's view catalog live in pkg/registry.
//
// Basic usage:
//
//	doc, err := schema.LoadFile("tour.yaml")
//	if err != nil {
//	    // structural failure
//	}
//	if errs := schema.ValidateSemantic(doc); len(errs) > 0 {
//	    // report errs
//	}
//	script, err := doc.ToScript()
package schema
