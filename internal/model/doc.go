// Package model defines the in-memory editorial timeline.
//
// A Timeline owns a Stack of Tracks; each Track owns an ordered list of
// Items, which is a closed set of variants (Clip, Gap, Transition). Clips,
// Tracks and Stacks carry Markers; Clips carry Effects and an optional
// ExternalReference. Ownership is strictly parent to child and no entity
// holds a reference back to its parent, so the tree is acyclic as long as
// callers do not insert the same pointer twice.
//
// Every schema object embeds Common, which holds the schema version read
// from the wire, the user metadata, and the overflow bag of unrecognised
// wire fields that the codec re-emits untouched.
//
// The package also answers read-only timing questions (item durations,
// track extents, which item covers a time). It never edits a timeline.
package model
