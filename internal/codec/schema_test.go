package codec_test

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"timelinekit/internal/codec"
	"timelinekit/internal/model"
	"timelinekit/internal/testsupport"
)

type schemaDef struct {
	Properties map[string]struct {
		Pattern string `json:"pattern"`
	} `json:"properties"`
	Required []string `json:"required"`
}

func loadSchemaDefs(t *testing.T) map[string]schemaDef {
	t.Helper()
	var doc struct {
		Schema string               `json:"$schema"`
		Defs   map[string]schemaDef `json:"$defs"`
	}
	if err := json.Unmarshal(codec.JSONSchema(), &doc); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if !strings.Contains(doc.Schema, "2020-12") {
		t.Fatalf("got $schema %q want draft 2020-12", doc.Schema)
	}
	return doc.Defs
}

func TestJSONSchemaCoversEverySchemaName(t *testing.T) {
	defs := loadSchemaDefs(t)
	for name, version := range model.CurrentVersions {
		def, ok := defs[name]
		if !ok {
			t.Fatalf("no definition for %s", name)
		}
		pattern := def.Properties[codec.SchemaKey].Pattern
		re, err := regexp.Compile(pattern)
		if err != nil {
			t.Fatalf("%s: bad pattern %q: %v", name, pattern, err)
		}
		if tag := fmt.Sprintf("%s.%d", name, version); !re.MatchString(tag) {
			t.Fatalf("%s: pattern %q rejects %q", name, pattern, tag)
		}
		if tag := name + ".0"; re.MatchString(tag) {
			t.Fatalf("%s: pattern %q accepts %q", name, pattern, tag)
		}
	}
}

func TestJSONSchemaDeclaresSerializedFields(t *testing.T) {
	defs := loadSchemaDefs(t)
	tl := mustParse(t, testsupport.Fixture(t, "simple.json"), codec.ParseOptions{})
	out, err := codec.Serialize(tl, codec.SerializeOptions{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var root any
	if err := json.Unmarshal(out, &root); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	var walk func(v any)
	walk = func(v any) {
		switch node := v.(type) {
		case map[string]any:
			if tag, ok := node[codec.SchemaKey].(string); ok {
				name, _, _ := strings.Cut(tag, ".")
				def := defs[name]
				for key := range node {
					if _, ok := def.Properties[key]; !ok {
						t.Errorf("%s: field %q not declared", name, key)
					}
				}
				for _, key := range def.Required {
					if _, ok := node[key]; !ok {
						t.Errorf("%s: required field %q not written", name, key)
					}
				}
			}
			for key, child := range node {
				if key != "metadata" {
					walk(child)
				}
			}
		case []any:
			for _, child := range node {
				walk(child)
			}
		}
	}
	walk(root)
}

func TestJSONSchemaReturnsCopy(t *testing.T) {
	first := codec.JSONSchema()
	first[0] = 'x'
	if second := codec.JSONSchema(); second[0] != '{' {
		t.Fatalf("got first byte %q want '{'", second[0])
	}
}
