package jsonvalue_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"timelinekit/internal/jsonvalue"
)

func TestParsePreservesOrderAndNumberText(t *testing.T) {
	in := `{"zeta":1.50,"alpha":{"b":[1e3,true,null],"a":"x"},"mid":-0}`
	v, err := jsonvalue.Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	keys := obj.Keys()
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected key order: got %v want %v", keys, want)
		}
	}

	var buf bytes.Buffer
	if err := jsonvalue.Write(&buf, v, ""); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != in {
		t.Fatalf("compact rewrite changed document:\n got %s\nwant %s", got, in)
	}
}

func TestWritePretty(t *testing.T) {
	v, err := jsonvalue.Parse([]byte(`{"a":[1,{}],"b":{},"c":[]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	if err := jsonvalue.Write(&buf, v, "  "); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "{\n  \"a\": [\n    1,\n    {}\n  ],\n  \"b\": {},\n  \"c\": []\n}"
	if buf.String() != want {
		t.Fatalf("unexpected pretty output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := jsonvalue.Write(&buf, "a<b>&c", ""); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != `"a<b>&c"` {
		t.Fatalf("unexpected escaping: %s", buf.String())
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":1}}`, `[1,]`, `{"a" 1}`, `{} {}`} {
		if _, err := jsonvalue.Parse([]byte(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestObjectSetDeleteKeepsOrder(t *testing.T) {
	obj := jsonvalue.NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("c", 3)
	obj.Set("a", 10)
	if !obj.Delete("b") {
		t.Fatal("expected delete to report presence")
	}
	if obj.Delete("missing") {
		t.Fatal("delete of missing key reported true")
	}
	keys := obj.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if v, _ := obj.Get("a"); v != 10 {
		t.Fatalf("expected replaced value 10, got %v", v)
	}
}

func TestCloneAndEqual(t *testing.T) {
	v, err := jsonvalue.Parse([]byte(`{"a":[1,{"b":"c"}],"n":2.0}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	clone := jsonvalue.Clone(v)
	if !jsonvalue.Equal(v, clone) {
		t.Fatal("clone should equal original")
	}
	clone.(*jsonvalue.Object).Set("n", json.Number("2"))
	if jsonvalue.Equal(v, clone) {
		t.Fatal("numbers with different text should differ")
	}
	if !jsonvalue.Equal((*jsonvalue.Object)(nil), jsonvalue.NewObject()) {
		t.Fatal("nil and empty objects should compare equal")
	}
}
