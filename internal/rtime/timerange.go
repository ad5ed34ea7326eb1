package rtime

import "fmt"

// TimeRange is a start time plus a duration. The two need not share a rate.
type TimeRange struct {
	StartTime RationalTime
	Duration  RationalTime
}

// NewRange constructs a TimeRange.
func NewRange(start, duration RationalTime) TimeRange {
	return TimeRange{StartTime: start, Duration: duration}
}

// IsValid reports whether both rates are usable and the duration is not
// negative.
func (r TimeRange) IsValid() bool {
	return r.StartTime.IsValid() && r.Duration.IsValid() && !r.Duration.IsNegative()
}

// EndExclusive returns start+duration.
func (r TimeRange) EndExclusive() RationalTime {
	return r.StartTime.Add(r.Duration)
}

// Contains reports whether other lies inside r, tolerating rounding noise
// from rate conversion.
func (r TimeRange) Contains(other TimeRange) bool {
	if !r.StartTime.AlmostLessOrEqual(other.StartTime) {
		return false
	}
	return other.EndExclusive().AlmostLessOrEqual(r.EndExclusive())
}

// Clamp returns other limited to the bounds of r, expressed at the rate of
// r's start time. A range lying wholly outside r collapses to a zero-length
// range at the nearest bound.
func (r TimeRange) Clamp(other TimeRange) TimeRange {
	rate := r.StartTime.Rate
	lo := r.StartTime
	hi := r.EndExclusive().RescaledTo(rate)

	start := other.StartTime.RescaledTo(rate)
	end := other.EndExclusive().RescaledTo(rate)

	start = Min(Max(start, lo), hi)
	end = Min(Max(end, start), hi)

	return TimeRange{
		StartTime: New(start.RescaledTo(rate).Value, rate),
		Duration:  New(end.RescaledTo(rate).Value-start.RescaledTo(rate).Value, rate),
	}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s +%s]", r.StartTime, r.Duration)
}
