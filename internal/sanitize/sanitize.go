// Package sanitize repairs recoverable timeline violations in place.
//
// Every repair moves a value into the range the validator accepts, so a
// second run over a sanitized tree finds nothing to do.
package sanitize

import (
	"fmt"

	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
	"timelinekit/internal/validate"
)

// Options tunes a sanitize run.
type Options struct {
	// DefaultRate replaces non-positive rates. Zero means model.DefaultRate.
	DefaultRate float64
	// DropZeroLength removes clips and gaps whose duration is zero after
	// negative durations have been clamped.
	DropZeroLength bool
	// MergeAdjacentGaps folds each run of neighbouring gaps into its first
	// gap.
	MergeAdjacentGaps bool
}

// Timeline repairs tl in place. Passes run in a fixed order so that later
// passes see the timing the earlier ones fixed: rates, durations, the
// optional zero-length removal, transition placement, the optional gap merge,
// transition offsets and finally markers. Entities reachable more than once
// are reported in Report.Errors and skipped by every pass.
func Timeline(tl *model.Timeline, opts Options) Report {
	if tl == nil {
		return Report{}
	}
	if opts.DefaultRate <= 0 {
		opts.DefaultRate = model.DefaultRate
	}
	s := &sanitizer{
		opts:    opts,
		aliased: make(map[any]struct{}),
		origin:  make(map[*model.Track][]int),
	}
	s.findAliases(tl)
	s.fixRates(tl)
	s.fixDurations(tl)
	if opts.DropZeroLength {
		s.dropZeroLength(tl)
	}
	s.removeTransitions(tl)
	if opts.MergeAdjacentGaps {
		s.mergeGaps(tl)
	}
	s.clampOffsets(tl)
	s.clampMarkers(tl)
	return s.report
}

type sanitizer struct {
	opts    Options
	report  Report
	aliased map[any]struct{}
	// origin maps a track's current child positions to the positions they
	// had in the input, once children have been removed from it.
	origin map[*model.Track][]int
}

func (s *sanitizer) act(kind ActionKind, path model.Path, format string, args ...any) {
	s.report.Actions = append(s.report.Actions, Action{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)})
}

func (s *sanitizer) skip(e any) bool {
	_, ok := s.aliased[e]
	return ok
}

func (s *sanitizer) originOf(tr *model.Track, i int) int {
	if idx, ok := s.origin[tr]; ok {
		return idx[i]
	}
	return i
}

// childPath names child i of tr by its position in the input document.
func (s *sanitizer) childPath(tr *model.Track, trPath model.Path, i int) model.Path {
	return trPath.Field("children").Index(s.originOf(tr, i))
}

// filterChildren keeps the children of tr for which keep returns true. keep
// sees the children before any of them are removed.
func (s *sanitizer) filterChildren(tr *model.Track, keep func(i int, it model.Item) bool) {
	kept := tr.Children[:0:0]
	var origin []int
	for i, it := range tr.Children {
		if !keep(i, it) {
			continue
		}
		kept = append(kept, it)
		origin = append(origin, s.originOf(tr, i))
	}
	if len(kept) != len(tr.Children) {
		tr.Children = kept
		s.origin[tr] = origin
	}
}

// findAliases marks every entity reached along more than one path.
func (s *sanitizer) findAliases(tl *model.Timeline) {
	seen := make(map[any]struct{})
	visit := func(e any, path model.Path) bool {
		if _, ok := seen[e]; ok {
			s.aliased[e] = struct{}{}
			s.report.Errors = append(s.report.Errors, Error{
				Kind:    validate.KindStructuralCycle,
				Path:    path,
				Message: "entity is reachable more than once",
			})
			return false
		}
		seen[e] = struct{}{}
		return true
	}
	markers := func(list []*model.Marker, path model.Path) {
		for i, m := range list {
			if m != nil {
				visit(m, path.Field("markers").Index(i))
			}
		}
	}

	st := tl.Tracks
	if st == nil || !visit(st, "tracks") {
		return
	}
	for i, tr := range st.Children {
		trPath := model.Path("tracks").Field("children").Index(i)
		if tr == nil || !visit(tr, trPath) {
			continue
		}
		for j, it := range tr.Children {
			itPath := trPath.Field("children").Index(j)
			if it == nil || !visit(it, itPath) {
				continue
			}
			if c, ok := it.(*model.Clip); ok {
				if c.MediaReference != nil {
					visit(c.MediaReference, itPath.Field("media_reference"))
				}
				for k, fx := range c.Effects {
					if fx != nil {
						visit(fx, itPath.Field("effects").Index(k))
					}
				}
				markers(c.Markers, itPath)
			}
		}
		markers(tr.Markers, trPath)
	}
	markers(st.Markers, "tracks")
}

// rangeVisitor receives a range the sanitizer may modify.
type rangeVisitor func(r *rtime.TimeRange, path model.Path)

func (s *sanitizer) markerRanges(list []*model.Marker, path model.Path, fn rangeVisitor) {
	for i, m := range list {
		if m == nil || s.skip(m) {
			continue
		}
		fn(&m.MarkedRange, path.Field("markers").Index(i).Field("marked_range"))
	}
}

// eachRange calls fn for every TimeRange outside aliased subtrees, in
// document order.
func (s *sanitizer) eachRange(tl *model.Timeline, fn rangeVisitor) {
	st := tl.Tracks
	if st == nil || s.skip(st) {
		return
	}
	s.eachTrack(tl, func(tr *model.Track, trPath model.Path) {
		for j, it := range tr.Children {
			if it == nil || s.skip(it) {
				continue
			}
			itPath := s.childPath(tr, trPath, j)
			switch v := it.(type) {
			case *model.Clip:
				if v.SourceRange != nil {
					fn(v.SourceRange, itPath.Field("source_range"))
				}
				if ref := v.MediaReference; ref != nil && ref.AvailableRange != nil && !s.skip(ref) {
					fn(ref.AvailableRange, itPath.Field("media_reference").Field("available_range"))
				}
				s.markerRanges(v.Markers, itPath, fn)
			case *model.Gap:
				if v.SourceRange != nil {
					fn(v.SourceRange, itPath.Field("source_range"))
				}
			}
		}
		if tr.SourceRange != nil {
			fn(tr.SourceRange, trPath.Field("source_range"))
		}
		s.markerRanges(tr.Markers, trPath, fn)
	})
	if st.SourceRange != nil {
		fn(st.SourceRange, model.Path("tracks").Field("source_range"))
	}
	s.markerRanges(st.Markers, "tracks", fn)
}

func (s *sanitizer) eachTrack(tl *model.Timeline, fn func(tr *model.Track, path model.Path)) {
	st := tl.Tracks
	if st == nil || s.skip(st) {
		return
	}
	for i, tr := range st.Children {
		if tr == nil || s.skip(tr) {
			continue
		}
		fn(tr, model.Path("tracks").Field("children").Index(i))
	}
}

func (s *sanitizer) eachTransition(tl *model.Timeline, fn func(tr *model.Track, i int, t *model.Transition, path model.Path)) {
	s.eachTrack(tl, func(tr *model.Track, trPath model.Path) {
		for i, it := range tr.Children {
			t, ok := it.(*model.Transition)
			if !ok || t == nil || s.skip(t) {
				continue
			}
			fn(tr, i, t, s.childPath(tr, trPath, i))
		}
	})
}

func (s *sanitizer) fixRate(t *rtime.RationalTime, path model.Path) {
	if t.IsValid() {
		return
	}
	before := t.Rate
	t.Rate = s.opts.DefaultRate
	s.act(ActionRateReplaced, path, "rate %v replaced with %v", before, t.Rate)
}

func (s *sanitizer) fixRates(tl *model.Timeline) {
	if tl.GlobalStartTime != nil {
		s.fixRate(tl.GlobalStartTime, "global_start_time")
	}
	s.eachRange(tl, func(r *rtime.TimeRange, path model.Path) {
		s.fixRate(&r.StartTime, path.Field("start_time"))
		s.fixRate(&r.Duration, path.Field("duration"))
	})
	s.eachTransition(tl, func(_ *model.Track, _ int, t *model.Transition, path model.Path) {
		s.fixRate(&t.InOffset, path.Field("in_offset"))
		s.fixRate(&t.OutOffset, path.Field("out_offset"))
	})
}

func (s *sanitizer) fixDurations(tl *model.Timeline) {
	s.eachRange(tl, func(r *rtime.TimeRange, path model.Path) {
		if !r.Duration.IsNegative() {
			return
		}
		before := r.Duration
		r.Duration = rtime.New(0, r.Duration.Rate)
		s.act(ActionDurationClamped, path.Field("duration"), "duration %s clamped to %s", before, r.Duration)
	})
}

// removeTransitions drops every transition that lacks a clip or gap on
// either side. Only transitions are removed, so a transition that was legal
// keeps its neighbours and a single pass reaches the fixpoint.
func (s *sanitizer) removeTransitions(tl *model.Timeline) {
	s.eachTrack(tl, func(tr *model.Track, trPath model.Path) {
		s.filterChildren(tr, func(i int, it model.Item) bool {
			t, ok := it.(*model.Transition)
			if !ok || t == nil || s.skip(t) || validate.LegalTransitionPosition(tr, i) {
				return true
			}
			s.act(ActionTransitionRemoved, s.childPath(tr, trPath, i), "removed transition %q", t.Name)
			return false
		})
	})
}

// dropZeroLength removes clips and gaps with a known zero duration. It runs
// before transition placement so that a transition left without a neighbour
// is removed in the same pass.
func (s *sanitizer) dropZeroLength(tl *model.Timeline) {
	s.eachTrack(tl, func(tr *model.Track, trPath model.Path) {
		s.filterChildren(tr, func(i int, it model.Item) bool {
			switch v := it.(type) {
			case *model.Clip:
				if v == nil {
					return true
				}
			case *model.Gap:
				if v == nil {
					return true
				}
			default:
				return true
			}
			if s.skip(it) {
				return true
			}
			d, ok := it.Duration()
			if !ok || !d.IsValid() || d.Value != 0 {
				return true
			}
			s.act(ActionZeroLengthDropped, s.childPath(tr, trPath, i), "removed zero-length %s", itemLabel(it))
			return false
		})
	})
}

// mergeGaps folds runs of adjacent gaps into the first gap of each run. It
// runs after transition placement, which can leave two gaps side by side.
func (s *sanitizer) mergeGaps(tl *model.Timeline) {
	s.eachTrack(tl, func(tr *model.Track, trPath model.Path) {
		var head *model.Gap
		var headPath model.Path
		s.filterChildren(tr, func(i int, it model.Item) bool {
			g, ok := it.(*model.Gap)
			if !ok || g == nil || s.skip(g) || g.SourceRange == nil {
				head = nil
				return true
			}
			if head == nil {
				head, headPath = g, s.childPath(tr, trPath, i)
				return true
			}
			before := head.SourceRange.Duration
			head.SourceRange.Duration = before.Add(g.SourceRange.Duration).RescaledTo(before.Rate)
			s.act(ActionGapsMerged, headPath.Field("source_range").Field("duration"),
				"merged gap at %s, duration %s is now %s", s.childPath(tr, trPath, i), before, head.SourceRange.Duration)
			return false
		})
	})
}

func itemLabel(it model.Item) string {
	switch v := it.(type) {
	case *model.Clip:
		return fmt.Sprintf("clip %q", v.Name)
	case *model.Gap:
		return fmt.Sprintf("gap %q", v.Name)
	}
	return it.SchemaName()
}

func (s *sanitizer) clampOffset(off *rtime.RationalTime, neighbour model.Item, path model.Path) {
	if off.IsNegative() {
		before := *off
		*off = rtime.New(0, off.Rate)
		s.act(ActionOffsetClamped, path, "offset %s clamped to %s", before, *off)
		return
	}
	capacity, ok := validate.NeighbourCapacity(neighbour)
	if !ok || off.AlmostLessOrEqual(capacity) {
		return
	}
	before := *off
	*off = capacity.RescaledTo(off.Rate)
	s.act(ActionOffsetClamped, path, "offset %s clamped to %s", before, *off)
}

func (s *sanitizer) clampOffsets(tl *model.Timeline) {
	s.eachTransition(tl, func(tr *model.Track, i int, t *model.Transition, path model.Path) {
		if !validate.LegalTransitionPosition(tr, i) {
			return
		}
		s.clampOffset(&t.InOffset, tr.Children[i-1], path.Field("in_offset"))
		s.clampOffset(&t.OutOffset, tr.Children[i+1], path.Field("out_offset"))
	})
}

func (s *sanitizer) clampMarkerList(list []*model.Marker, parent rtime.TimeRange, ok bool, path model.Path) {
	if !ok || !parent.IsValid() {
		return
	}
	for i, m := range list {
		if m == nil || s.skip(m) || !m.MarkedRange.IsValid() || parent.Contains(m.MarkedRange) {
			continue
		}
		before := m.MarkedRange
		m.MarkedRange = parent.Clamp(m.MarkedRange)
		s.act(ActionMarkerClamped, path.Field("markers").Index(i).Field("marked_range"),
			"marked range %s clamped to %s", before, m.MarkedRange)
	}
}

func (s *sanitizer) clampMarkers(tl *model.Timeline) {
	s.eachTrack(tl, func(tr *model.Track, trPath model.Path) {
		for j, it := range tr.Children {
			c, ok := it.(*model.Clip)
			if !ok || c == nil || s.skip(c) {
				continue
			}
			parent, ok := c.EffectiveRange()
			s.clampMarkerList(c.Markers, parent, ok, s.childPath(tr, trPath, j))
		}
		parent, ok := tr.EffectiveRange()
		s.clampMarkerList(tr.Markers, parent, ok, trPath)
	})
	if st := tl.Tracks; st != nil && !s.skip(st) {
		parent, ok := st.EffectiveRange()
		s.clampMarkerList(st.Markers, parent, ok, "tracks")
	}
}
