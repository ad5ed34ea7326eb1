package codec

import (
	"fmt"

	"timelinekit/internal/jsonvalue"
	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
)

const prettyIndent = "  "

// Serialize encodes tl. Two calls on the same tree with the same options
// return identical bytes.
func Serialize(tl *model.Timeline, opts SerializeOptions) ([]byte, error) {
	if tl == nil {
		return nil, fmt.Errorf("serialize: nil timeline")
	}
	indent := ""
	if opts.Pretty {
		indent = prettyIndent
	}
	e := &encoder{w: jsonvalue.NewWriter(indent), precision: opts.Precision}
	e.timeline(tl, "")
	if e.err != nil {
		return nil, e.err
	}
	if err := e.w.Err(); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	out := make([]byte, len(e.w.Bytes()))
	copy(out, e.w.Bytes())
	return out, nil
}

type encoder struct {
	w         *jsonvalue.Writer
	precision Precision
	err       error
}

func (e *encoder) fail(path model.Path, format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf("serialize %s: %s", path, fmt.Sprintf(format, args...))
	}
}

// schema opens an object and writes its discriminator.
func (e *encoder) schema(name string, c *model.Common) {
	version := c.Version
	if version == 0 {
		version = model.CurrentVersions[name]
	}
	e.w.BeginObject()
	e.w.Key(SchemaKey)
	e.w.String(fmt.Sprintf("%s.%d", name, version))
}

// finish writes metadata and the overflow bag, then closes the object.
// Overflow keys that collide with declared ones are skipped.
func (e *encoder) finish(c *model.Common, declared ...string) {
	e.w.Key("metadata")
	if c.Metadata == nil {
		e.w.Value(jsonvalue.NewObject())
	} else {
		e.w.Value(c.Metadata)
	}
	if c.Extra.Len() > 0 {
		taken := map[string]struct{}{SchemaKey: {}, "metadata": {}}
		for _, k := range declared {
			taken[k] = struct{}{}
		}
		c.Extra.Range(func(k string, v any) bool {
			if _, ok := taken[k]; ok {
				return true
			}
			e.w.Key(k)
			e.w.Value(v)
			return true
		})
	}
	e.w.EndObject()
}

func (e *encoder) number(path model.Path, v float64) {
	s, err := FormatFloat(v, e.precision)
	if err != nil {
		e.fail(path, "%v", err)
		s = "0.0"
	}
	e.w.RawNumber(s)
}

func (e *encoder) rationalTime(t rtime.RationalTime, path model.Path) {
	e.w.BeginObject()
	e.w.Key(SchemaKey)
	e.w.String(fmt.Sprintf("%s.%d", model.SchemaRationalTime, model.CurrentVersions[model.SchemaRationalTime]))
	e.w.Key("rate")
	e.number(path.Field("rate"), t.Rate)
	e.w.Key("value")
	e.number(path.Field("value"), t.Value)
	e.w.EndObject()
}

func (e *encoder) timeRange(r rtime.TimeRange, path model.Path) {
	e.w.BeginObject()
	e.w.Key(SchemaKey)
	e.w.String(fmt.Sprintf("%s.%d", model.SchemaTimeRange, model.CurrentVersions[model.SchemaTimeRange]))
	e.w.Key("start_time")
	e.rationalTime(r.StartTime, path.Field("start_time"))
	e.w.Key("duration")
	e.rationalTime(r.Duration, path.Field("duration"))
	e.w.EndObject()
}

func (e *encoder) optionalRange(key string, r *rtime.TimeRange, path model.Path) {
	e.w.Key(key)
	if r == nil {
		e.w.Null()
		return
	}
	e.timeRange(*r, path.Field(key))
}

func (e *encoder) timeline(tl *model.Timeline, path model.Path) {
	e.schema(model.SchemaTimeline, &tl.Common)
	e.w.Key("name")
	e.w.String(tl.Name)
	e.w.Key("global_start_time")
	if tl.GlobalStartTime == nil {
		e.w.Null()
	} else {
		e.rationalTime(*tl.GlobalStartTime, path.Field("global_start_time"))
	}
	e.w.Key("tracks")
	stack := tl.Tracks
	if stack == nil {
		stack = model.NewStack("tracks")
	}
	e.stack(stack, path.Field("tracks"))
	e.finish(&tl.Common, "name", "global_start_time", "tracks")
}

func (e *encoder) stack(st *model.Stack, path model.Path) {
	e.schema(model.SchemaStack, &st.Common)
	e.w.Key("name")
	e.w.String(st.Name)
	e.w.Key("children")
	e.w.BeginArray()
	for i, tr := range st.Children {
		if tr == nil {
			e.fail(path.Field("children").Index(i), "nil track")
			e.w.Null()
			continue
		}
		e.track(tr, path.Field("children").Index(i))
	}
	e.w.EndArray()
	e.optionalRange("source_range", st.SourceRange, path)
	e.markers(st.Markers, path)
	e.finish(&st.Common, "name", "children", "source_range", "markers")
}

func (e *encoder) track(tr *model.Track, path model.Path) {
	e.schema(model.SchemaTrack, &tr.Common)
	e.w.Key("name")
	e.w.String(tr.Name)
	e.w.Key("kind")
	kind := tr.Kind
	if !kind.Valid() {
		e.fail(path.Field("kind"), "unknown track kind %q", string(kind))
	}
	e.w.String(string(kind))
	e.w.Key("children")
	e.w.BeginArray()
	for i, it := range tr.Children {
		e.item(it, path.Field("children").Index(i))
	}
	e.w.EndArray()
	e.optionalRange("source_range", tr.SourceRange, path)
	e.markers(tr.Markers, path)
	e.finish(&tr.Common, "name", "kind", "children", "source_range", "markers")
}

func (e *encoder) item(it model.Item, path model.Path) {
	switch v := it.(type) {
	case *model.Clip:
		if v != nil {
			e.clip(v, path)
			return
		}
	case *model.Gap:
		if v != nil {
			e.gap(v, path)
			return
		}
	case *model.Transition:
		if v != nil {
			e.transition(v, path)
			return
		}
	}
	e.fail(path, "nil or unsupported item %T", it)
	e.w.Null()
}

func (e *encoder) clip(c *model.Clip, path model.Path) {
	e.schema(model.SchemaClip, &c.Common)
	e.w.Key("name")
	e.w.String(c.Name)
	e.optionalRange("source_range", c.SourceRange, path)
	e.w.Key("media_reference")
	if c.MediaReference == nil {
		e.w.Null()
	} else {
		e.externalReference(c.MediaReference, path.Field("media_reference"))
	}
	e.w.Key("effects")
	e.w.BeginArray()
	for i, fx := range c.Effects {
		if fx == nil {
			e.fail(path.Field("effects").Index(i), "nil effect")
			e.w.Null()
			continue
		}
		e.effect(fx)
	}
	e.w.EndArray()
	e.markers(c.Markers, path)
	e.finish(&c.Common, "name", "source_range", "media_reference", "effects", "markers")
}

func (e *encoder) gap(g *model.Gap, path model.Path) {
	e.schema(model.SchemaGap, &g.Common)
	e.w.Key("name")
	e.w.String(g.Name)
	e.optionalRange("source_range", g.SourceRange, path)
	e.finish(&g.Common, "name", "source_range")
}

func (e *encoder) transition(t *model.Transition, path model.Path) {
	e.schema(model.SchemaTransition, &t.Common)
	e.w.Key("name")
	e.w.String(t.Name)
	e.w.Key("transition_type")
	e.w.String(t.TransitionType)
	e.w.Key("in_offset")
	e.rationalTime(t.InOffset, path.Field("in_offset"))
	e.w.Key("out_offset")
	e.rationalTime(t.OutOffset, path.Field("out_offset"))
	e.finish(&t.Common, "name", "transition_type", "in_offset", "out_offset")
}

func (e *encoder) markers(list []*model.Marker, path model.Path) {
	e.w.Key("markers")
	e.w.BeginArray()
	for i, m := range list {
		mp := path.Field("markers").Index(i)
		if m == nil {
			e.fail(mp, "nil marker")
			e.w.Null()
			continue
		}
		e.schema(model.SchemaMarker, &m.Common)
		e.w.Key("name")
		e.w.String(m.Name)
		e.w.Key("color")
		e.w.String(m.Color)
		e.w.Key("marked_range")
		e.timeRange(m.MarkedRange, mp.Field("marked_range"))
		e.finish(&m.Common, "name", "color", "marked_range")
	}
	e.w.EndArray()
}

func (e *encoder) effect(fx *model.Effect) {
	e.schema(model.SchemaEffect, &fx.Common)
	e.w.Key("name")
	e.w.String(fx.Name)
	e.w.Key("effect_name")
	e.w.String(fx.EffectName)
	e.finish(&fx.Common, "name", "effect_name")
}

func (e *encoder) externalReference(ref *model.ExternalReference, path model.Path) {
	e.schema(model.SchemaExternalReference, &ref.Common)
	e.w.Key("name")
	e.w.String(ref.Name)
	e.w.Key("target_url")
	e.w.String(ref.TargetURL)
	e.optionalRange("available_range", ref.AvailableRange, path)
	e.finish(&ref.Common, "name", "target_url", "available_range")
}
