package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type frame struct {
	array bool
	count int
}

// Writer emits JSON incrementally. With an empty indent the output is
// compact; otherwise each element sits on its own line and keys are
// followed by ": ".
type Writer struct {
	buf    bytes.Buffer
	indent string
	stack  []frame
	err    error
}

// NewWriter returns a writer using indent per nesting level.
func NewWriter(indent string) *Writer {
	return &Writer{indent: indent}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Err returns the first error recorded while writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) newline() {
	if w.indent == "" {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(strings.Repeat(w.indent, len(w.stack)))
}

// beforeValue emits the separator owed to an array element.
func (w *Writer) beforeValue() {
	if len(w.stack) == 0 {
		return
	}
	top := &w.stack[len(w.stack)-1]
	if !top.array {
		return
	}
	if top.count > 0 {
		w.buf.WriteByte(',')
	}
	top.count++
	w.newline()
}

// BeginObject opens an object.
func (w *Writer) BeginObject() {
	w.beforeValue()
	w.buf.WriteByte('{')
	w.stack = append(w.stack, frame{})
}

// EndObject closes the innermost object.
func (w *Writer) EndObject() {
	w.end('}')
}

// BeginArray opens an array.
func (w *Writer) BeginArray() {
	w.beforeValue()
	w.buf.WriteByte('[')
	w.stack = append(w.stack, frame{array: true})
}

// EndArray closes the innermost array.
func (w *Writer) EndArray() {
	w.end(']')
}

func (w *Writer) end(delim byte) {
	if len(w.stack) == 0 {
		w.fail(fmt.Errorf("unbalanced %q", delim))
		return
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if top.count > 0 {
		w.newline()
	}
	w.buf.WriteByte(delim)
}

// Key writes an object key; the next call must write its value.
func (w *Writer) Key(key string) {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].array {
		w.fail(fmt.Errorf("key %q outside object", key))
		return
	}
	top := &w.stack[len(w.stack)-1]
	if top.count > 0 {
		w.buf.WriteByte(',')
	}
	top.count++
	w.newline()
	w.quote(key)
	w.buf.WriteByte(':')
	if w.indent != "" {
		w.buf.WriteByte(' ')
	}
}

// String writes a quoted string. HTML characters are not escaped.
func (w *Writer) String(s string) {
	w.beforeValue()
	w.quote(s)
}

// Bool writes true or false.
func (w *Writer) Bool(b bool) {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatBool(b))
}

// Null writes null.
func (w *Writer) Null() {
	w.beforeValue()
	w.buf.WriteString("null")
}

// RawNumber writes already formatted numeric text.
func (w *Writer) RawNumber(text string) {
	w.beforeValue()
	w.buf.WriteString(text)
}

func (w *Writer) quote(s string) {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		w.fail(err)
		return
	}
	w.buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
}

// Value writes an arbitrary JSON tree.
func (w *Writer) Value(v any) {
	switch val := v.(type) {
	case nil:
		w.Null()
	case bool:
		w.Bool(val)
	case string:
		w.String(val)
	case json.Number:
		if !json.Valid([]byte(val)) {
			w.fail(fmt.Errorf("invalid number literal %q", string(val)))
			return
		}
		w.RawNumber(string(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			w.fail(fmt.Errorf("unsupported number %v", val))
			return
		}
		w.RawNumber(strconv.FormatFloat(val, 'g', -1, 64))
	case int:
		w.RawNumber(strconv.Itoa(val))
	case *Object:
		w.BeginObject()
		val.Range(func(k string, item any) bool {
			w.Key(k)
			w.Value(item)
			return true
		})
		w.EndObject()
	case []any:
		w.BeginArray()
		for _, item := range val {
			w.Value(item)
		}
		w.EndArray()
	default:
		w.fail(fmt.Errorf("unsupported json value of type %T", v))
	}
}

// Write appends v to buf using indent.
func Write(buf *bytes.Buffer, v any, indent string) error {
	w := NewWriter(indent)
	w.Value(v)
	if w.Err() != nil {
		return w.Err()
	}
	buf.Write(w.Bytes())
	return nil
}
