package rtime

import (
	"fmt"
	"math"
)

// tolerance is the relative slack used by the tolerant comparisons.
const tolerance = 1e-9

// RationalTime is value/rate seconds.
type RationalTime struct {
	Value float64
	Rate  float64
}

// New constructs a RationalTime.
func New(value, rate float64) RationalTime {
	return RationalTime{Value: value, Rate: rate}
}

// IsValid reports whether the rate is strictly positive and both fields are
// finite numbers.
func (t RationalTime) IsValid() bool {
	return t.Rate > 0 && !math.IsInf(t.Rate, 0) && !math.IsNaN(t.Value) && !math.IsInf(t.Value, 0)
}

// Seconds converts to seconds. Invalid rates yield NaN.
func (t RationalTime) Seconds() float64 {
	if t.Rate <= 0 {
		return math.NaN()
	}
	return t.Value / t.Rate
}

// RescaledTo expresses t at the given rate. When either rate is unusable
// the receiver is returned unchanged.
func (t RationalTime) RescaledTo(rate float64) RationalTime {
	if t.Rate == rate || t.Rate <= 0 || rate <= 0 {
		return t
	}
	return RationalTime{Value: t.Value * rate / t.Rate, Rate: rate}
}

// Add returns t+o at the larger of the two rates.
func (t RationalTime) Add(o RationalTime) RationalTime {
	a, b, rate := rebase(t, o)
	return RationalTime{Value: a + b, Rate: rate}
}

// Sub returns t-o at the larger of the two rates.
func (t RationalTime) Sub(o RationalTime) RationalTime {
	a, b, rate := rebase(t, o)
	return RationalTime{Value: a - b, Rate: rate}
}

// Compare returns -1, 0 or +1 after rebasing both operands to the larger
// rate.
func (t RationalTime) Compare(o RationalTime) int {
	a, b, _ := rebase(t, o)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports exact equality after rebasing.
func (t RationalTime) Equal(o RationalTime) bool {
	return t.Compare(o) == 0
}

// Less reports t < o.
func (t RationalTime) Less(o RationalTime) bool {
	return t.Compare(o) < 0
}

// AlmostLessOrEqual reports t <= o allowing for a relative tolerance of
// about one part in a billion, which absorbs the rounding introduced by
// rebasing across rates.
func (t RationalTime) AlmostLessOrEqual(o RationalTime) bool {
	a, b, _ := rebase(t, o)
	if a <= b {
		return true
	}
	slack := tolerance * math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return a-b <= slack
}

// IsNegative reports whether the value is below zero.
func (t RationalTime) IsNegative() bool {
	return t.Value < 0
}

// Max returns the later of t and o, keeping the winner's own rate.
func Max(t, o RationalTime) RationalTime {
	if t.Less(o) {
		return o
	}
	return t
}

// Min returns the earlier of t and o, keeping the winner's own rate.
func Min(t, o RationalTime) RationalTime {
	if o.Less(t) {
		return o
	}
	return t
}

func (t RationalTime) String() string {
	return fmt.Sprintf("%g@%g", t.Value, t.Rate)
}

// rebase returns both values expressed at the larger of the two rates.
// Operands with an unusable rate are passed through unscaled.
func rebase(t, o RationalTime) (float64, float64, float64) {
	rate := math.Max(t.Rate, o.Rate)
	if t.Rate <= 0 || o.Rate <= 0 || t.Rate == o.Rate {
		return t.Value, o.Value, rate
	}
	return t.RescaledTo(rate).Value, o.RescaledTo(rate).Value, rate
}
