package testsupport

import (
	"embed"
	"path"
	"testing"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture returns the bytes of a named document under testdata/.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}
