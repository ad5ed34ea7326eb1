package model

import "timelinekit/internal/rtime"

// Marker annotates a range of its parent.
type Marker struct {
	Common
	Name        string
	Color       string
	MarkedRange rtime.TimeRange
}

// NewMarker returns a marker with the default colour.
func NewMarker(name string, marked rtime.TimeRange) *Marker {
	return &Marker{Common: newCommon(SchemaMarker), Name: name, Color: "RED", MarkedRange: marked}
}

func (*Marker) SchemaName() string { return SchemaMarker }

// Effect is an opaque processing annotation on a clip.
type Effect struct {
	Common
	Name       string
	EffectName string
}

// NewEffect returns an effect.
func NewEffect(name, effectName string) *Effect {
	return &Effect{Common: newCommon(SchemaEffect), Name: name, EffectName: effectName}
}

func (*Effect) SchemaName() string { return SchemaEffect }

// ExternalReference points at media outside the document.
type ExternalReference struct {
	Common
	Name           string
	TargetURL      string
	AvailableRange *rtime.TimeRange
}

// NewExternalReference returns a reference to url.
func NewExternalReference(url string, available *rtime.TimeRange) *ExternalReference {
	return &ExternalReference{Common: newCommon(SchemaExternalReference), TargetURL: url, AvailableRange: available}
}

func (*ExternalReference) SchemaName() string { return SchemaExternalReference }
