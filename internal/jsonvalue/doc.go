// Package jsonvalue holds JSON documents as an ordered tree.
//
// A value is one of nil, bool, json.Number, string, *Object or []any.
// Objects remember key insertion order and numbers keep their original
// text, so a value decoded here and written back out is byte-for-byte the
// same modulo whitespace. Metadata and unknown wire fields are stored in
// this form.
package jsonvalue
