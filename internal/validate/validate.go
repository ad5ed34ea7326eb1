// Package validate checks a timeline tree against its structural and
// temporal rules without modifying it.
package validate

import (
	"fmt"

	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
)

// Kind identifies the rule an Issue violates.
type Kind string

const (
	KindInvalidRate           Kind = "invalid_rate"
	KindNegativeDuration      Kind = "negative_duration"
	KindTransitionPosition    Kind = "transition_position"
	KindTransitionOffset      Kind = "transition_offset"
	KindMarkerOutOfRange      Kind = "marker_out_of_range"
	KindInvalidAvailableRange Kind = "invalid_available_range"
	KindStructuralCycle       Kind = "structural_cycle"
)

// Issue is a single rule violation.
type Issue struct {
	Kind    Kind
	Path    model.Path
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", i.Kind, i.Path, i.Message)
}

// Timeline returns every violation found in tl, in traversal order. It never
// stops early and never mutates the tree, so it is safe on shared read-only
// snapshots.
func Timeline(tl *model.Timeline) []Issue {
	if tl == nil {
		return nil
	}
	w := &walker{seen: make(map[any]struct{})}
	w.timeline(tl)
	return w.issues
}

type walker struct {
	issues []Issue
	seen   map[any]struct{}
}

func (w *walker) add(kind Kind, path model.Path, format string, args ...any) {
	w.issues = append(w.issues, Issue{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)})
}

// enter records e as visited. It reports false, after recording an issue,
// when e was already reached along another path.
func (w *walker) enter(e any, path model.Path) bool {
	if _, ok := w.seen[e]; ok {
		w.add(KindStructuralCycle, path, "entity is reachable more than once")
		return false
	}
	w.seen[e] = struct{}{}
	return true
}

func (w *walker) rate(t rtime.RationalTime, path model.Path) bool {
	if t.IsValid() {
		return true
	}
	w.add(KindInvalidRate, path, "rate %v must be greater than zero", t.Rate)
	return false
}

// timeRange checks rates and sign and reports whether r is usable for
// containment tests.
func (w *walker) timeRange(r rtime.TimeRange, path model.Path) bool {
	ok := w.rate(r.StartTime, path.Field("start_time"))
	ok = w.rate(r.Duration, path.Field("duration")) && ok
	if r.Duration.IsNegative() {
		w.add(KindNegativeDuration, path.Field("duration"), "duration %s is negative", r.Duration)
		ok = false
	}
	return ok
}

func (w *walker) optionalRange(r *rtime.TimeRange, path model.Path) {
	if r != nil {
		w.timeRange(*r, path)
	}
}

func (w *walker) timeline(tl *model.Timeline) {
	if tl.GlobalStartTime != nil {
		w.rate(*tl.GlobalStartTime, model.Path("global_start_time"))
	}
	if tl.Tracks != nil {
		w.stack(tl.Tracks, model.Path("tracks"))
	}
}

func (w *walker) stack(st *model.Stack, path model.Path) {
	if !w.enter(st, path) {
		return
	}
	for i, tr := range st.Children {
		if tr != nil {
			w.track(tr, path.Field("children").Index(i))
		}
	}
	w.optionalRange(st.SourceRange, path.Field("source_range"))
	parent, ok := st.EffectiveRange()
	w.markers(st.Markers, parent, ok && parent.IsValid(), path)
}

func (w *walker) track(tr *model.Track, path model.Path) {
	if !w.enter(tr, path) {
		return
	}
	for i, it := range tr.Children {
		if it == nil {
			continue
		}
		itemPath := path.Field("children").Index(i)
		if !w.enter(it, itemPath) {
			continue
		}
		switch v := it.(type) {
		case *model.Clip:
			w.clip(v, itemPath)
		case *model.Gap:
			w.optionalRange(v.SourceRange, itemPath.Field("source_range"))
		case *model.Transition:
			w.transition(tr, i, v, itemPath)
		}
	}
	w.optionalRange(tr.SourceRange, path.Field("source_range"))
	parent, ok := tr.EffectiveRange()
	w.markers(tr.Markers, parent, ok && parent.IsValid(), path)
}

func (w *walker) clip(c *model.Clip, path model.Path) {
	w.optionalRange(c.SourceRange, path.Field("source_range"))
	if ref := c.MediaReference; ref != nil && w.enter(ref, path.Field("media_reference")) {
		w.availableRange(ref, path.Field("media_reference").Field("available_range"))
	}
	for i, fx := range c.Effects {
		if fx != nil {
			w.enter(fx, path.Field("effects").Index(i))
		}
	}
	parent, ok := c.EffectiveRange()
	w.markers(c.Markers, parent, ok && parent.IsValid(), path)
}

func (w *walker) availableRange(ref *model.ExternalReference, path model.Path) {
	r := ref.AvailableRange
	if r == nil {
		return
	}
	w.rate(r.StartTime, path.Field("start_time"))
	w.rate(r.Duration, path.Field("duration"))
	if r.Duration.IsNegative() {
		w.add(KindInvalidAvailableRange, path.Field("duration"), "available duration %s is negative", r.Duration)
	}
}

// LegalTransitionPosition reports whether the child at i may be a
// transition: it needs a non-transition neighbour on each side.
func LegalTransitionPosition(tr *model.Track, i int) bool {
	if i <= 0 || i >= len(tr.Children)-1 {
		return false
	}
	return !model.IsTransition(tr.Children[i-1]) && !model.IsTransition(tr.Children[i+1])
}

// NeighbourCapacity is the duration an offset into the neighbour may use.
// ok is false when the neighbour has no usable duration.
func NeighbourCapacity(it model.Item) (rtime.RationalTime, bool) {
	if it == nil {
		return rtime.RationalTime{}, false
	}
	d, ok := it.Duration()
	if !ok || !d.IsValid() {
		return rtime.RationalTime{}, false
	}
	if d.IsNegative() {
		d = rtime.New(0, d.Rate)
	}
	return d, true
}

func (w *walker) transition(tr *model.Track, i int, t *model.Transition, path model.Path) {
	inOK := w.rate(t.InOffset, path.Field("in_offset"))
	outOK := w.rate(t.OutOffset, path.Field("out_offset"))

	if !LegalTransitionPosition(tr, i) {
		w.add(KindTransitionPosition, path, "transition needs a clip or gap on both sides")
		return
	}
	if inOK {
		w.offset(t.InOffset, tr.Children[i-1], path.Field("in_offset"), "previous")
	}
	if outOK {
		w.offset(t.OutOffset, tr.Children[i+1], path.Field("out_offset"), "next")
	}
}

func (w *walker) offset(off rtime.RationalTime, neighbour model.Item, path model.Path, side string) {
	if off.IsNegative() {
		w.add(KindTransitionOffset, path, "offset %s is negative", off)
		return
	}
	capacity, ok := NeighbourCapacity(neighbour)
	if !ok {
		return
	}
	if !off.AlmostLessOrEqual(capacity) {
		w.add(KindTransitionOffset, path, "offset %s exceeds %s neighbour duration %s", off, side, capacity)
	}
}

func (w *walker) markers(list []*model.Marker, parent rtime.TimeRange, parentKnown bool, path model.Path) {
	for i, m := range list {
		if m == nil {
			continue
		}
		mp := path.Field("markers").Index(i)
		if !w.enter(m, mp) {
			continue
		}
		rangePath := mp.Field("marked_range")
		if !w.timeRange(m.MarkedRange, rangePath) || !parentKnown {
			continue
		}
		if !parent.Contains(m.MarkedRange) {
			w.add(KindMarkerOutOfRange, rangePath, "marked range %s is outside %s", m.MarkedRange, parent)
		}
	}
}
