package model

import "timelinekit/internal/rtime"

// Timeline is the root of a document.
type Timeline struct {
	Common
	Name            string
	GlobalStartTime *rtime.RationalTime
	Tracks          *Stack
}

// NewTimeline returns an empty timeline.
func NewTimeline(name string) *Timeline {
	return &Timeline{Common: newCommon(SchemaTimeline), Name: name, Tracks: NewStack("tracks")}
}

func (*Timeline) SchemaName() string { return SchemaTimeline }

// Stack layers tracks in parallel.
type Stack struct {
	Common
	Name        string
	Children    []*Track
	SourceRange *rtime.TimeRange
	Markers     []*Marker
}

// NewStack returns an empty stack.
func NewStack(name string) *Stack {
	return &Stack{Common: newCommon(SchemaStack), Name: name}
}

func (*Stack) SchemaName() string { return SchemaStack }

// Track sequences items one after another.
type Track struct {
	Common
	Name        string
	Kind        TrackKind
	Children    []Item
	SourceRange *rtime.TimeRange
	Markers     []*Marker
}

// NewTrack returns an empty track.
func NewTrack(name string, kind TrackKind) *Track {
	return &Track{Common: newCommon(SchemaTrack), Name: name, Kind: kind}
}

func (*Track) SchemaName() string { return SchemaTrack }

// Append adds items to the end of the track.
func (t *Track) Append(items ...Item) {
	t.Children = append(t.Children, items...)
}
