package codec

import (
	"strings"

	"timelinekit/internal/model"
)

func (d *decoder) timeline(v any, path model.Path) (*model.Timeline, error) {
	o, err := d.object(v, path, "Timeline object")
	if err != nil {
		return nil, err
	}
	version, err := o.expectSchema(model.SchemaTimeline)
	if err != nil {
		return nil, err
	}
	tl := &model.Timeline{}
	if tl.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if tl.GlobalStartTime, err = o.optionalTime("global_start_time"); err != nil {
		return nil, err
	}
	if raw, ok := o.field("tracks"); ok {
		if tl.Tracks, err = d.stack(raw, path.Field("tracks")); err != nil {
			return nil, err
		}
	} else {
		tl.Tracks = model.NewStack("tracks")
	}
	if tl.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return tl, nil
}

func (d *decoder) stack(v any, path model.Path) (*model.Stack, error) {
	o, err := d.object(v, path, "Stack object")
	if err != nil {
		return nil, err
	}
	version, err := o.expectSchema(model.SchemaStack)
	if err != nil {
		return nil, err
	}
	st := &model.Stack{}
	if st.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	children, childPath, err := o.array("children")
	if err != nil {
		return nil, err
	}
	for i, raw := range children {
		tr, err := d.track(raw, childPath.Index(i))
		if err != nil {
			return nil, err
		}
		st.Children = append(st.Children, tr)
	}
	if st.SourceRange, err = o.optionalRange("source_range"); err != nil {
		return nil, err
	}
	if st.Markers, err = d.markers(o); err != nil {
		return nil, err
	}
	if st.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return st, nil
}

func parseTrackKind(s string) (model.TrackKind, bool) {
	switch strings.ToLower(s) {
	case "video":
		return model.TrackKindVideo, true
	case "audio":
		return model.TrackKindAudio, true
	default:
		return "", false
	}
}

func (d *decoder) track(v any, path model.Path) (*model.Track, error) {
	o, err := d.object(v, path, "Track object")
	if err != nil {
		return nil, err
	}
	version, err := o.expectSchema(model.SchemaTrack)
	if err != nil {
		return nil, err
	}
	tr := &model.Track{}
	if tr.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	kind, err := o.requiredString("kind")
	if err != nil {
		return nil, err
	}
	var ok bool
	if tr.Kind, ok = parseTrackKind(kind); !ok {
		return nil, &ParseError{Path: path.Field("kind"), Msg: "unknown track kind", Expected: "Video or Audio", Actual: kind}
	}
	children, childPath, err := o.array("children")
	if err != nil {
		return nil, err
	}
	for i, raw := range children {
		it, err := d.item(raw, childPath.Index(i))
		if err != nil {
			return nil, err
		}
		tr.Children = append(tr.Children, it)
	}
	if tr.SourceRange, err = o.optionalRange("source_range"); err != nil {
		return nil, err
	}
	if tr.Markers, err = d.markers(o); err != nil {
		return nil, err
	}
	if tr.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return tr, nil
}

// item dispatches a track child on its discriminator.
func (d *decoder) item(v any, path model.Path) (model.Item, error) {
	o, err := d.object(v, path, "Clip, Gap or Transition object")
	if err != nil {
		return nil, err
	}
	name, version, err := o.schemaTag()
	if err != nil {
		return nil, err
	}
	switch name {
	case model.SchemaClip:
		return d.clip(o, version)
	case model.SchemaGap:
		return d.gap(o, version)
	case model.SchemaTransition:
		return d.transition(o, version)
	default:
		return nil, &ParseError{Path: path.Field(SchemaKey), Msg: "unknown item schema", Expected: "Clip, Gap or Transition", Actual: name}
	}
}

func (d *decoder) clip(o *object, version int) (*model.Clip, error) {
	c := &model.Clip{}
	var err error
	if c.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if c.SourceRange, err = o.optionalRange("source_range"); err != nil {
		return nil, err
	}
	if raw, ok := o.field("media_reference"); ok {
		if c.MediaReference, err = d.externalReference(raw, o.path.Field("media_reference")); err != nil {
			return nil, err
		}
	}
	effects, effectsPath, err := o.array("effects")
	if err != nil {
		return nil, err
	}
	for i, raw := range effects {
		fx, err := d.effect(raw, effectsPath.Index(i))
		if err != nil {
			return nil, err
		}
		c.Effects = append(c.Effects, fx)
	}
	if c.Markers, err = d.markers(o); err != nil {
		return nil, err
	}
	if c.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *decoder) gap(o *object, version int) (*model.Gap, error) {
	g := &model.Gap{}
	var err error
	if g.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if g.SourceRange, err = o.optionalRange("source_range"); err != nil {
		return nil, err
	}
	if g.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return g, nil
}

func (d *decoder) transition(o *object, version int) (*model.Transition, error) {
	t := &model.Transition{}
	var err error
	if t.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if t.TransitionType, err = o.optionalString("transition_type"); err != nil {
		return nil, err
	}
	if t.InOffset, err = o.requiredTime("in_offset"); err != nil {
		return nil, err
	}
	if t.OutOffset, err = o.requiredTime("out_offset"); err != nil {
		return nil, err
	}
	if t.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *decoder) markers(parent *object) ([]*model.Marker, error) {
	list, path, err := parent.array("markers")
	if err != nil {
		return nil, err
	}
	var out []*model.Marker
	for i, raw := range list {
		m, err := d.marker(raw, path.Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (d *decoder) marker(v any, path model.Path) (*model.Marker, error) {
	o, err := d.object(v, path, "Marker object")
	if err != nil {
		return nil, err
	}
	version, err := o.expectSchema(model.SchemaMarker)
	if err != nil {
		return nil, err
	}
	m := &model.Marker{}
	if m.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if m.Color, err = o.optionalString("color"); err != nil {
		return nil, err
	}
	if m.MarkedRange, err = o.requiredRange("marked_range"); err != nil {
		return nil, err
	}
	if m.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *decoder) effect(v any, path model.Path) (*model.Effect, error) {
	o, err := d.object(v, path, "Effect object")
	if err != nil {
		return nil, err
	}
	version, err := o.expectSchema(model.SchemaEffect)
	if err != nil {
		return nil, err
	}
	fx := &model.Effect{}
	if fx.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if fx.EffectName, err = o.optionalString("effect_name"); err != nil {
		return nil, err
	}
	if fx.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return fx, nil
}

func (d *decoder) externalReference(v any, path model.Path) (*model.ExternalReference, error) {
	o, err := d.object(v, path, "ExternalReference object")
	if err != nil {
		return nil, err
	}
	version, err := o.expectSchema(model.SchemaExternalReference)
	if err != nil {
		return nil, err
	}
	ref := &model.ExternalReference{}
	if ref.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if ref.TargetURL, err = o.requiredString("target_url"); err != nil {
		return nil, err
	}
	if ref.AvailableRange, err = o.optionalRange("available_range"); err != nil {
		return nil, err
	}
	if ref.Common, err = o.common(version); err != nil {
		return nil, err
	}
	return ref, nil
}
