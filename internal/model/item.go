package model

import "timelinekit/internal/rtime"

// Item is a child of a Track. The set of implementations is closed: *Clip,
// *Gap and *Transition.
type Item interface {
	Entity
	// Duration reports the track time the item occupies. ok is false when
	// the item carries no timing information.
	Duration() (d rtime.RationalTime, ok bool)
	isItem()
}

// Clip plays a segment of media.
type Clip struct {
	Common
	Name           string
	SourceRange    *rtime.TimeRange
	MediaReference *ExternalReference
	Effects        []*Effect
	Markers        []*Marker
}

// NewClip returns a clip.
func NewClip(name string, source *rtime.TimeRange, ref *ExternalReference) *Clip {
	return &Clip{Common: newCommon(SchemaClip), Name: name, SourceRange: source, MediaReference: ref}
}

func (*Clip) SchemaName() string { return SchemaClip }
func (*Clip) isItem()            {}

// Duration is the source range duration, falling back to the media's
// available range.
func (c *Clip) Duration() (rtime.RationalTime, bool) {
	if r, ok := c.EffectiveRange(); ok {
		return r.Duration, true
	}
	return rtime.RationalTime{}, false
}

// EffectiveRange is the trimmed range of the clip's media.
func (c *Clip) EffectiveRange() (rtime.TimeRange, bool) {
	if c.SourceRange != nil {
		return *c.SourceRange, true
	}
	if c.MediaReference != nil && c.MediaReference.AvailableRange != nil {
		return *c.MediaReference.AvailableRange, true
	}
	return rtime.TimeRange{}, false
}

// Gap occupies time without media.
type Gap struct {
	Common
	Name        string
	SourceRange *rtime.TimeRange
}

// NewGap returns a gap of the given duration starting at zero.
func NewGap(duration rtime.RationalTime) *Gap {
	r := rtime.NewRange(rtime.New(0, duration.Rate), duration)
	return &Gap{Common: newCommon(SchemaGap), SourceRange: &r}
}

func (*Gap) SchemaName() string { return SchemaGap }
func (*Gap) isItem()            {}

// Duration is the source range duration.
func (g *Gap) Duration() (rtime.RationalTime, bool) {
	if g.SourceRange == nil {
		return rtime.RationalTime{}, false
	}
	return g.SourceRange.Duration, true
}

// Transition blends its two neighbours. It overlaps them rather than taking
// track time of its own.
type Transition struct {
	Common
	Name           string
	TransitionType string
	InOffset       rtime.RationalTime
	OutOffset      rtime.RationalTime
}

// NewTransition returns a transition.
func NewTransition(name string, in, out rtime.RationalTime) *Transition {
	return &Transition{Common: newCommon(SchemaTransition), Name: name, TransitionType: "SMPTE_Dissolve", InOffset: in, OutOffset: out}
}

func (*Transition) SchemaName() string { return SchemaTransition }
func (*Transition) isItem()            {}

// Duration is zero at the in-offset rate.
func (t *Transition) Duration() (rtime.RationalTime, bool) {
	return rtime.New(0, t.InOffset.Rate), true
}

// IsTransition reports whether it is a *Transition.
func IsTransition(it Item) bool {
	_, ok := it.(*Transition)
	return ok
}
