// Package codec maps timeline documents between their JSON wire form and
// the in-memory model.
//
// # Wire form
//
// Every schema object carries an "OTIO_SCHEMA" discriminator of the form
// "Name.Version". Parse dispatches on the name and records the version on
// the entity so Serialize writes the same discriminator back. Fields the
// parser does not recognise are kept, in document order, in the entity's
// overflow bag and re-emitted after the declared fields; ParseOptions can
// drop or reject them instead.
//
// # Determinism
//
// Serialize writes keys in a fixed order: discriminator, declared fields,
// overflow fields. RationalTime values and rates pass through FormatFloat,
// which is the only place rounding happens; the tree itself is never
// modified. Metadata numbers keep the text they were parsed from.
//
// # Errors
//
// Parse stops at the first problem and returns a *ParseError carrying the
// JSON path of the offending node.
package codec
