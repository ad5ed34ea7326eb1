// Package catalog stores canonical timeline documents in SQLite so later
// runs can compare output against a known-good serialization.
//
// Entries are keyed by a caller-chosen name and carry the canonical bytes,
// their SHA-256 digest, the precision they were written at, and the number
// of validation issues the tree had when it was stored. Writes retry while
// the database is busy so concurrent CLI invocations do not fail spuriously.
package catalog
