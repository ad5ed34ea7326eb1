package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"timelinekit/internal/testsupport"
)

func TestValidateCleanDocument(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "simple.json")

	out, _, err := runCLI(t, env, "", "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "no issues")
}

func TestValidateReportsIssuesAsJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "invalid.json")

	out, _, err := runCLI(t, env, "", "validate", "--json", path)
	if err == nil {
		t.Fatal("expected validate to fail on invalid document")
	}
	requireContains(t, err.Error(), "11 issues")

	var issues []issueView
	if err := json.Unmarshal([]byte(out), &issues); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(issues) != 11 {
		t.Fatalf("got %d issues want 11", len(issues))
	}
	if issues[0].Kind != "invalid_rate" {
		t.Fatalf("got first kind %s want invalid_rate", issues[0].Kind)
	}
}

func TestValidateTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "invalid.json")

	out, _, _ := runCLI(t, env, "", "validate", path)
	requireContains(t, out, "Transition Position")
	requireContains(t, out, "[WARN] 11 issues")
}

func TestSanitizeToOutputFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "invalid.json")
	target := filepath.Join(env.baseDir, "repaired.json")

	out, _, err := runCLI(t, env, "", "sanitize", path, "-o", target)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	requireContains(t, out, "repairs applied")

	if _, _, err := runCLI(t, env, "", "validate", target); err != nil {
		t.Fatalf("repaired document should validate: %v", err)
	}
}

func TestSanitizeWriteLeavesCleanFileAlone(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "simple.json")

	out, _, err := runCLI(t, env, "", "sanitize", "--write", path)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	requireContains(t, out, "nothing to repair")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(testsupport.Fixture(t, "simple.json")) {
		t.Fatal("clean document was rewritten")
	}
}

func TestSanitizeStdinToStdout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, errOut, err := runCLI(t, env, string(testsupport.Fixture(t, "invalid.json")), "sanitize", "-")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	requireContains(t, out, `"OTIO_SCHEMA": "Timeline.1"`)
	requireContains(t, errOut, "repairs applied")
	if strings.Contains(out, "repairs applied") {
		t.Fatal("summary leaked into document output")
	}
}

func TestSanitizeWriteRejectsStdin(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "{}", "sanitize", "--write", "-"); err == nil {
		t.Fatal("expected error for --write with stdin")
	}
}

func TestSanitizeJSONReport(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "invalid.json")

	out, _, err := runCLI(t, env, "", "sanitize", "--json", path)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	var view sanitizeView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !view.Changed || len(view.Actions) != 12 || len(view.Errors) != 0 {
		t.Fatalf("unexpected report: %+v", view)
	}
}

func TestFmtOverridesPrecisionAndLayout(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "simple.json")

	out, _, err := runCLI(t, env, "", "fmt", "--precision", "0", "--pretty=false", path)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected one compact line, got %q", out)
	}
	requireContains(t, out, `"rate":24.0`)
}

func TestFmtRoundTripsByDefault(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "forward_compat.json")

	out, _, err := runCLI(t, env, "", "fmt", path)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if out != string(testsupport.Fixture(t, "forward_compat.json")) {
		t.Fatalf("fmt changed the document:\n%s", out)
	}
}

func TestFmtRejectsBadPrecision(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "simple.json")
	if _, _, err := runCLI(t, env, "", "fmt", "--precision", "40", path); err == nil {
		t.Fatal("expected error for out-of-range precision")
	}
}

func TestInspectJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "simple.json")

	out, _, err := runCLI(t, env, "", "inspect", "--json", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var view inspectView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(view.Tracks) != 2 || view.Clips != 3 || view.Issues != 0 || view.DurationSeconds != 6 {
		t.Fatalf("unexpected summary: %+v", view)
	}
	if view.Tracks[1].Kind != "Audio" || view.Tracks[1].Items != 1 {
		t.Fatalf("unexpected audio track: %+v", view.Tracks[1])
	}
}

func TestInspectTable(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFixture(t, "simple.json")

	out, _, err := runCLI(t, env, "", "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "144@24 (6.000s)")
	requireContains(t, out, "V1")
}

func TestParseErrorNamesDocument(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "broken.json")
	if err := os.WriteFile(path, []byte(`{"OTIO_SCHEMA":"Timeline.1","tracks":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, env, "", "validate", path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	requireContains(t, err.Error(), "broken.json")
	requireContains(t, err.Error(), "tracks")
}
