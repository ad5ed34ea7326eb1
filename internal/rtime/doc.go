// Package rtime provides the temporal value types shared by the timeline
// model: RationalTime (a value counted at a rate) and TimeRange (a start plus
// a duration).
//
// Values of different rates are never coerced to a common rate on storage.
// Arithmetic and comparisons rebase both operands to the larger of the two
// rates and operate on float64 values there, so no precision is lost beyond
// ordinary double semantics. A rate of zero or below is representable (wire
// data is accepted as-is) but IsValid reports false and every operation that
// would divide by it returns the receiver unchanged.
package rtime
