package model

// Schema names used as wire discriminators.
const (
	SchemaTimeline          = "Timeline"
	SchemaStack             = "Stack"
	SchemaTrack             = "Track"
	SchemaClip              = "Clip"
	SchemaGap               = "Gap"
	SchemaTransition        = "Transition"
	SchemaMarker            = "Marker"
	SchemaEffect            = "Effect"
	SchemaExternalReference = "ExternalReference"
	SchemaRationalTime      = "RationalTime"
	SchemaTimeRange         = "TimeRange"
)

// CurrentVersions holds the version written for newly constructed objects.
var CurrentVersions = map[string]int{
	SchemaTimeline:          1,
	SchemaStack:             1,
	SchemaTrack:             1,
	SchemaClip:              2,
	SchemaGap:               1,
	SchemaTransition:        1,
	SchemaMarker:            2,
	SchemaEffect:            1,
	SchemaExternalReference: 1,
	SchemaRationalTime:      1,
	SchemaTimeRange:         1,
}

// DefaultRate is the rate used when a timing value has to be synthesised
// and nothing better is known.
const DefaultRate = 24.0

// TrackKind classifies a track.
type TrackKind string

const (
	TrackKindVideo TrackKind = "Video"
	TrackKindAudio TrackKind = "Audio"
)

// Valid reports whether k is one of the known kinds.
func (k TrackKind) Valid() bool {
	return k == TrackKindVideo || k == TrackKindAudio
}
