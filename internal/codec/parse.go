package codec

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"timelinekit/internal/jsonvalue"
	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
)

// SchemaKey is the discriminator field.
const SchemaKey = "OTIO_SCHEMA"

// Parse decodes a timeline document.
func Parse(data []byte, opts ParseOptions) (*model.Timeline, error) {
	root, err := jsonvalue.Parse(data)
	if err != nil {
		return nil, &ParseError{Msg: "malformed json", Err: err}
	}
	d := &decoder{opts: opts}
	return d.timeline(root, "")
}

type decoder struct {
	opts ParseOptions
}

// object is a JSON object being consumed field by field. Keys that are read
// are marked so the remainder can be routed to the overflow bag.
type object struct {
	d    *decoder
	obj  *jsonvalue.Object
	path model.Path
	seen map[string]struct{}
}

func (d *decoder) object(v any, path model.Path, expected string) (*object, error) {
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		return nil, typeMismatch(path, expected, jsonvalue.TypeName(v))
	}
	return &object{d: d, obj: obj, path: path, seen: map[string]struct{}{SchemaKey: {}}}, nil
}

// splitSchema splits "Clip.2" into its name and version. Versions start at
// 1; the zero version is reserved for objects built in memory.
func splitSchema(path model.Path, tag string) (string, int, error) {
	name, ver, ok := strings.Cut(tag, ".")
	if !ok || name == "" {
		return "", 0, malformed(path, "malformed schema tag %q", tag)
	}
	version, err := strconv.Atoi(ver)
	if err != nil || version < 1 {
		return "", 0, malformed(path, "malformed schema version in %q", tag)
	}
	return name, version, nil
}

// schemaTag returns the discriminator, which must be present.
func (o *object) schemaTag() (string, int, error) {
	path := o.path.Field(SchemaKey)
	v, ok := o.obj.Get(SchemaKey)
	if !ok {
		return "", 0, &ParseError{Path: path, Msg: "missing schema discriminator"}
	}
	tag, ok := v.(string)
	if !ok {
		return "", 0, typeMismatch(path, "string", jsonvalue.TypeName(v))
	}
	return splitSchema(path, tag)
}

// expectSchema checks the discriminator names want and returns the version.
func (o *object) expectSchema(want string) (int, error) {
	name, version, err := o.schemaTag()
	if err != nil {
		return 0, err
	}
	if name != want {
		return 0, &ParseError{Path: o.path.Field(SchemaKey), Msg: "unexpected schema", Expected: want, Actual: name}
	}
	return version, nil
}

// optionalSchema checks the discriminator only when present.
func (o *object) optionalSchema(want string) error {
	if !o.obj.Has(SchemaKey) {
		return nil
	}
	_, err := o.expectSchema(want)
	return err
}

// field returns the value under key; null counts as absent.
func (o *object) field(key string) (any, bool) {
	o.seen[key] = struct{}{}
	v, ok := o.obj.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (o *object) requiredField(key string) (any, error) {
	v, ok := o.field(key)
	if !ok {
		return nil, &ParseError{Path: o.path.Field(key), Msg: "missing required field"}
	}
	return v, nil
}

func (o *object) optionalString(key string) (string, error) {
	v, ok := o.field(key)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(o.path.Field(key), "string", jsonvalue.TypeName(v))
	}
	return s, nil
}

func (o *object) requiredString(key string) (string, error) {
	v, err := o.requiredField(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(o.path.Field(key), "string", jsonvalue.TypeName(v))
	}
	return s, nil
}

func (o *object) number(key string) (float64, error) {
	v, err := o.requiredField(key)
	if err != nil {
		return 0, err
	}
	path := o.path.Field(key)
	n, ok := v.(json.Number)
	if !ok {
		return 0, typeMismatch(path, "number", jsonvalue.TypeName(v))
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, &ParseError{Path: path, Msg: "number out of range", Err: errors.Unwrap(err)}
	}
	return f, nil
}

func (o *object) array(key string) ([]any, model.Path, error) {
	path := o.path.Field(key)
	v, ok := o.field(key)
	if !ok {
		return nil, path, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, path, typeMismatch(path, "array", jsonvalue.TypeName(v))
	}
	return arr, path, nil
}

func (o *object) metadata() (*jsonvalue.Object, error) {
	v, ok := o.field("metadata")
	if !ok {
		return jsonvalue.NewObject(), nil
	}
	meta, ok := v.(*jsonvalue.Object)
	if !ok {
		return nil, typeMismatch(o.path.Field("metadata"), "object", jsonvalue.TypeName(v))
	}
	return meta, nil
}

// rest applies the unknown-field policy to every key not yet read.
func (o *object) rest() (*jsonvalue.Object, error) {
	var extra *jsonvalue.Object
	var err error
	o.obj.Range(func(key string, v any) bool {
		if _, ok := o.seen[key]; ok {
			return true
		}
		switch o.d.opts.UnknownFields {
		case DropUnknown:
		case RejectUnknown:
			err = &ParseError{Path: o.path.Field(key), Msg: "unknown field"}
			return false
		default:
			if extra == nil {
				extra = jsonvalue.NewObject()
			}
			extra.Set(key, v)
		}
		return true
	})
	return extra, err
}

// closed rejects any key not yet read, regardless of policy. Used for the
// value types whose shape is fixed.
func (o *object) closed() error {
	var err error
	o.obj.Range(func(key string, _ any) bool {
		if _, ok := o.seen[key]; !ok {
			err = &ParseError{Path: o.path.Field(key), Msg: "unexpected field"}
			return false
		}
		return true
	})
	return err
}

// common reads metadata and the overflow bag.
func (o *object) common(version int) (model.Common, error) {
	meta, err := o.metadata()
	if err != nil {
		return model.Common{}, err
	}
	extra, err := o.rest()
	if err != nil {
		return model.Common{}, err
	}
	return model.Common{Version: version, Metadata: meta, Extra: extra}, nil
}

func (d *decoder) rationalTime(v any, path model.Path) (rtime.RationalTime, error) {
	o, err := d.object(v, path, "RationalTime object")
	if err != nil {
		return rtime.RationalTime{}, err
	}
	if err := o.optionalSchema(model.SchemaRationalTime); err != nil {
		return rtime.RationalTime{}, err
	}
	value, err := o.number("value")
	if err != nil {
		return rtime.RationalTime{}, err
	}
	rate, err := o.number("rate")
	if err != nil {
		return rtime.RationalTime{}, err
	}
	if err := o.closed(); err != nil {
		return rtime.RationalTime{}, err
	}
	return rtime.New(value, rate), nil
}

func (d *decoder) timeRange(v any, path model.Path) (rtime.TimeRange, error) {
	o, err := d.object(v, path, "TimeRange object")
	if err != nil {
		return rtime.TimeRange{}, err
	}
	if err := o.optionalSchema(model.SchemaTimeRange); err != nil {
		return rtime.TimeRange{}, err
	}
	startRaw, err := o.requiredField("start_time")
	if err != nil {
		return rtime.TimeRange{}, err
	}
	start, err := d.rationalTime(startRaw, path.Field("start_time"))
	if err != nil {
		return rtime.TimeRange{}, err
	}
	durRaw, err := o.requiredField("duration")
	if err != nil {
		return rtime.TimeRange{}, err
	}
	dur, err := d.rationalTime(durRaw, path.Field("duration"))
	if err != nil {
		return rtime.TimeRange{}, err
	}
	if err := o.closed(); err != nil {
		return rtime.TimeRange{}, err
	}
	return rtime.NewRange(start, dur), nil
}

func (o *object) requiredTime(key string) (rtime.RationalTime, error) {
	v, err := o.requiredField(key)
	if err != nil {
		return rtime.RationalTime{}, err
	}
	return o.d.rationalTime(v, o.path.Field(key))
}

func (o *object) optionalTime(key string) (*rtime.RationalTime, error) {
	v, ok := o.field(key)
	if !ok {
		return nil, nil
	}
	t, err := o.d.rationalTime(v, o.path.Field(key))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (o *object) requiredRange(key string) (rtime.TimeRange, error) {
	v, err := o.requiredField(key)
	if err != nil {
		return rtime.TimeRange{}, err
	}
	return o.d.timeRange(v, o.path.Field(key))
}

func (o *object) optionalRange(key string) (*rtime.TimeRange, error) {
	v, ok := o.field(key)
	if !ok {
		return nil, nil
	}
	r, err := o.d.timeRange(v, o.path.Field(key))
	if err != nil {
		return nil, err
	}
	return &r, nil
}
