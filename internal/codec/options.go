package codec

import (
	"fmt"
	"strings"
)

// UnknownFieldPolicy decides what Parse does with unrecognised wire fields.
type UnknownFieldPolicy int

const (
	// PreserveUnknown keeps them in the entity's overflow bag.
	PreserveUnknown UnknownFieldPolicy = iota
	// DropUnknown discards them.
	DropUnknown
	// RejectUnknown fails the parse.
	RejectUnknown
)

func (p UnknownFieldPolicy) String() string {
	switch p {
	case DropUnknown:
		return "drop"
	case RejectUnknown:
		return "reject"
	default:
		return "preserve"
	}
}

// ParseUnknownFieldPolicy reads a policy name as used in configuration.
func ParseUnknownFieldPolicy(name string) (UnknownFieldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "preserve":
		return PreserveUnknown, nil
	case "drop":
		return DropUnknown, nil
	case "reject":
		return RejectUnknown, nil
	default:
		return PreserveUnknown, fmt.Errorf("unknown field policy %q (want preserve, drop or reject)", name)
	}
}

// ParseOptions tunes Parse.
type ParseOptions struct {
	UnknownFields UnknownFieldPolicy
}

// Precision is the number of decimal digits RationalTime numbers are
// rounded to on output. The zero value means no rounding.
type Precision struct {
	digits int
	set    bool
}

// Digits returns a precision of n decimal digits. Negative n means no
// rounding.
func Digits(n int) Precision {
	if n < 0 {
		return Precision{}
	}
	return Precision{digits: n, set: true}
}

// FullPrecision leaves numbers unrounded.
func FullPrecision() Precision {
	return Precision{}
}

// Digits reports the digit count and whether rounding is requested.
func (p Precision) Digits() (int, bool) {
	return p.digits, p.set
}

func (p Precision) String() string {
	if !p.set {
		return "full"
	}
	return fmt.Sprintf("%d", p.digits)
}

// SerializeOptions tunes Serialize.
type SerializeOptions struct {
	Precision Precision
	Pretty    bool
}
