package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"timelinekit/internal/codec"
)

func TestSchemaToStdout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "schema")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if !json.Valid([]byte(out)) {
		t.Fatalf("schema output is not JSON: %s", out)
	}
	requireContains(t, out, `"$defs"`)
}

func TestSchemaToFileSkipsConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("corrupt config: %v", err)
	}
	target := filepath.Join(env.baseDir, "timeline.schema.json")

	out, _, err := runCLI(t, env, "", "schema", "-o", target)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	requireContains(t, out, "Wrote schema to "+target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if !bytes.Equal(data, codec.JSONSchema()) {
		t.Fatal("written schema differs from the embedded one")
	}
}
