package model

import "timelinekit/internal/rtime"

// timedDuration returns the non-negative duration of a time-occupying item.
// Transitions report ok=false with known=true: they are skipped, not unknown.
func timedDuration(it Item) (d rtime.RationalTime, occupies bool, known bool) {
	if IsTransition(it) {
		return rtime.RationalTime{}, false, true
	}
	d, ok := it.Duration()
	if !ok || !d.IsValid() {
		return rtime.RationalTime{}, true, false
	}
	if d.IsNegative() {
		d = rtime.New(0, d.Rate)
	}
	return d, true, true
}

func (t *Track) baseRate() float64 {
	for _, it := range t.Children {
		if d, occupies, known := timedDuration(it); occupies && known {
			return d.Rate
		}
	}
	return DefaultRate
}

// StartOf returns the track time at which child i begins. Negative
// durations count as zero and children without timing are skipped.
func (t *Track) StartOf(i int) rtime.RationalTime {
	acc := rtime.New(0, t.baseRate())
	for idx, it := range t.Children {
		if idx >= i {
			break
		}
		if d, occupies, known := timedDuration(it); occupies && known {
			acc = acc.Add(d)
		}
	}
	return acc
}

// Duration is the sum of the children's durations.
func (t *Track) Duration() rtime.RationalTime {
	return t.StartOf(len(t.Children))
}

// RangeOf returns the span of child i in track time.
func (t *Track) RangeOf(i int) (rtime.TimeRange, bool) {
	if i < 0 || i >= len(t.Children) {
		return rtime.TimeRange{}, false
	}
	d, occupies, known := timedDuration(t.Children[i])
	if !known {
		return rtime.TimeRange{}, false
	}
	start := t.StartOf(i)
	if !occupies {
		d = rtime.New(0, start.Rate)
	}
	return rtime.NewRange(start, d), true
}

// ItemAt returns the index of the child covering time, if any.
func (t *Track) ItemAt(time rtime.RationalTime) (int, bool) {
	pos := rtime.New(0, t.baseRate())
	for i, it := range t.Children {
		d, occupies, known := timedDuration(it)
		if !occupies || !known {
			continue
		}
		end := pos.Add(d)
		if !time.Less(pos) && time.Less(end) {
			return i, true
		}
		pos = end
	}
	return 0, false
}

// timingKnown reports whether every time-occupying child has a usable
// duration.
func (t *Track) timingKnown() bool {
	for _, it := range t.Children {
		if _, _, known := timedDuration(it); !known {
			return false
		}
	}
	return true
}

// EffectiveRange is the source range if set, otherwise [0, Duration).
// ok is false when the extent cannot be computed.
func (t *Track) EffectiveRange() (rtime.TimeRange, bool) {
	if t.SourceRange != nil {
		return *t.SourceRange, true
	}
	if !t.timingKnown() {
		return rtime.TimeRange{}, false
	}
	d := t.Duration()
	return rtime.NewRange(rtime.New(0, d.Rate), d), true
}

// Duration is the length of the longest track, honouring each track's
// source range.
func (s *Stack) Duration() rtime.RationalTime {
	longest := rtime.New(0, DefaultRate)
	for i, tr := range s.Children {
		d := tr.Duration()
		if tr.SourceRange != nil && tr.SourceRange.Duration.IsValid() {
			d = tr.SourceRange.Duration
		}
		if i == 0 || longest.Less(d) {
			longest = d
		}
	}
	return longest
}

// EffectiveRange is the source range if set, otherwise [0, Duration).
func (s *Stack) EffectiveRange() (rtime.TimeRange, bool) {
	if s.SourceRange != nil {
		return *s.SourceRange, true
	}
	for _, tr := range s.Children {
		if tr.SourceRange == nil && !tr.timingKnown() {
			return rtime.TimeRange{}, false
		}
	}
	d := s.Duration()
	return rtime.NewRange(rtime.New(0, d.Rate), d), true
}

// Duration is the length of the top-level stack.
func (tl *Timeline) Duration() rtime.RationalTime {
	if tl.Tracks == nil {
		return rtime.New(0, DefaultRate)
	}
	return tl.Tracks.Duration()
}
