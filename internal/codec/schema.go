package codec

import _ "embed"

//go:embed timeline.schema.json
var jsonSchema []byte

// JSONSchema returns a JSON Schema (draft 2020-12) describing the wire form
// Parse accepts. Schema objects allow extra properties, which Parse routes
// to the overflow bag; RationalTime and TimeRange do not.
func JSONSchema() []byte {
	out := make([]byte, len(jsonSchema))
	copy(out, jsonSchema)
	return out
}
