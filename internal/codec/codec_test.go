package codec_test

import (
	"bytes"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"timelinekit/internal/codec"
	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
	"timelinekit/internal/testsupport"
)

func mustParse(t *testing.T, data []byte, opts codec.ParseOptions) *model.Timeline {
	t.Helper()
	tl, err := codec.Parse(data, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tl
}

func mustSerialize(t *testing.T, tl *model.Timeline, opts codec.SerializeOptions) []byte {
	t.Helper()
	out, err := codec.Serialize(tl, opts)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return out
}

func TestPrettyRoundTripIsByteIdentical(t *testing.T) {
	for _, name := range []string{"simple.json", "forward_compat.json"} {
		t.Run(name, func(t *testing.T) {
			in := testsupport.Fixture(t, name)
			tl := mustParse(t, in, codec.ParseOptions{})
			out := mustSerialize(t, tl, codec.SerializeOptions{Pretty: true})
			want := bytes.TrimSuffix(in, []byte("\n"))
			if !bytes.Equal(out, want) {
				t.Fatalf("round trip changed the document:\n%s", out)
			}
		})
	}
}

func TestParseSerializeParseIsStable(t *testing.T) {
	in := testsupport.Fixture(t, "simple.json")
	first := mustParse(t, in, codec.ParseOptions{})
	compact := mustSerialize(t, first, codec.SerializeOptions{})
	if bytes.Contains(compact, []byte("\n")) {
		t.Fatal("compact output should be a single line")
	}
	second := mustParse(t, compact, codec.ParseOptions{})
	if !reflect.DeepEqual(first, second) {
		t.Fatal("re-parsed tree differs from the original")
	}
	again := mustSerialize(t, second, codec.SerializeOptions{})
	if !bytes.Equal(compact, again) {
		t.Fatalf("serialization is not deterministic:\n%s\n%s", compact, again)
	}
}

func TestParseBuildsExpectedTree(t *testing.T) {
	tl := mustParse(t, testsupport.Fixture(t, "simple.json"), codec.ParseOptions{})
	if tl.Name != "simple" {
		t.Fatalf("unexpected name %q", tl.Name)
	}
	if tl.GlobalStartTime == nil || tl.GlobalStartTime.Value != 86400 || tl.GlobalStartTime.Rate != 24 {
		t.Fatalf("unexpected global start time %v", tl.GlobalStartTime)
	}
	if got := len(tl.Tracks.Children); got != 2 {
		t.Fatalf("expected 2 tracks, got %d", got)
	}
	video := tl.Tracks.Children[0]
	if video.Kind != model.TrackKindVideo || len(video.Children) != 4 {
		t.Fatalf("unexpected video track: kind=%s children=%d", video.Kind, len(video.Children))
	}
	clip, ok := video.Children[0].(*model.Clip)
	if !ok {
		t.Fatalf("expected first child to be a clip, got %T", video.Children[0])
	}
	if clip.Version != 2 || clip.MediaReference == nil || clip.MediaReference.TargetURL != "file:///media/intro.mov" {
		t.Fatalf("unexpected clip %+v", clip)
	}
	if len(clip.Effects) != 1 || clip.Effects[0].EffectName != "Blur" {
		t.Fatalf("unexpected effects %+v", clip.Effects)
	}
	if _, ok := video.Children[1].(*model.Transition); !ok {
		t.Fatalf("expected a transition at index 1, got %T", video.Children[1])
	}
	if got := video.Duration(); got.Value != 144 || got.Rate != 24 {
		t.Fatalf("unexpected track duration %s", got)
	}
	if keys := tl.Metadata.Keys(); len(keys) != 1 || keys[0] != "project" {
		t.Fatalf("unexpected metadata keys %v", keys)
	}
}

func TestForwardCompatFieldsArePreserved(t *testing.T) {
	tl := mustParse(t, testsupport.Fixture(t, "forward_compat.json"), codec.ParseOptions{})
	if !tl.Extra.Has("future_root") {
		t.Fatal("timeline overflow missing future_root")
	}
	clip := tl.Tracks.Children[0].Children[0].(*model.Clip)
	if keys := clip.Extra.Keys(); len(keys) != 2 || keys[0] != "future_field" || keys[1] != "enabled" {
		t.Fatalf("unexpected clip overflow keys %v", keys)
	}
	if clip.Metadata.Has("future_field") {
		t.Fatal("unknown field leaked into metadata")
	}
}

func TestUnknownFieldPolicies(t *testing.T) {
	in := testsupport.Fixture(t, "forward_compat.json")

	dropped := mustParse(t, in, codec.ParseOptions{UnknownFields: codec.DropUnknown})
	out := mustSerialize(t, dropped, codec.SerializeOptions{Pretty: true})
	if bytes.Contains(out, []byte("future_")) {
		t.Fatal("drop policy kept unknown fields")
	}
	simple := bytes.TrimSuffix(testsupport.Fixture(t, "simple.json"), []byte("\n"))
	if !bytes.Equal(out, simple) {
		t.Fatal("dropping unknown fields should yield the plain document")
	}

	_, err := codec.Parse(in, codec.ParseOptions{UnknownFields: codec.RejectUnknown})
	var perr *codec.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != "tracks.children[0].children[0].future_field" {
		t.Fatalf("unexpected path %q", perr.Path)
	}
}

func TestParseUnknownFieldPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want codec.UnknownFieldPolicy
	}{
		{"", codec.PreserveUnknown},
		{"Preserve", codec.PreserveUnknown},
		{"drop", codec.DropUnknown},
		{" reject ", codec.RejectUnknown},
	}
	for _, tt := range tests {
		got, err := codec.ParseUnknownFieldPolicy(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseUnknownFieldPolicy(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := codec.ParseUnknownFieldPolicy("ignore"); err == nil {
		t.Fatal("expected error for unknown policy name")
	}
}

const clipTemplate = `{"OTIO_SCHEMA":"Timeline.1","tracks":{"OTIO_SCHEMA":"Stack.1","children":[
{"OTIO_SCHEMA":"Track.1","kind":"Video","children":[%s]}]}}`

func withClip(clip string) []byte {
	return []byte(strings.Replace(clipTemplate, "%s", clip, 1))
}

func TestParseErrorPaths(t *testing.T) {
	tests := []struct {
		name string
		doc  []byte
		path model.Path
	}{
		{
			name: "missing discriminator on root",
			doc:  []byte(`{"name":"x"}`),
			path: "OTIO_SCHEMA",
		},
		{
			name: "wrong root schema",
			doc:  []byte(`{"OTIO_SCHEMA":"Clip.2"}`),
			path: "OTIO_SCHEMA",
		},
		{
			name: "tracks is not an object",
			doc:  []byte(`{"OTIO_SCHEMA":"Timeline.1","tracks":[]}`),
			path: "tracks",
		},
		{
			name: "non numeric duration",
			doc:  withClip(`{"OTIO_SCHEMA":"Clip.2","source_range":{"start_time":{"value":0,"rate":24},"duration":{"value":"x","rate":24}}}`),
			path: "tracks.children[0].children[0].source_range.duration.value",
		},
		{
			name: "rational time missing rate",
			doc:  withClip(`{"OTIO_SCHEMA":"Clip.2","source_range":{"start_time":{"value":0,"rate":24},"duration":{"value":1}}}`),
			path: "tracks.children[0].children[0].source_range.duration.rate",
		},
		{
			name: "rational time with extra field",
			doc:  withClip(`{"OTIO_SCHEMA":"Gap.1","source_range":{"start_time":{"value":0,"rate":24,"scale":1},"duration":{"value":1,"rate":24}}}`),
			path: "tracks.children[0].children[0].source_range.start_time.scale",
		},
		{
			name: "unknown item schema",
			doc:  withClip(`{"OTIO_SCHEMA":"Sequence.1"}`),
			path: "tracks.children[0].children[0].OTIO_SCHEMA",
		},
		{
			name: "malformed schema tag",
			doc:  withClip(`{"OTIO_SCHEMA":"Clip"}`),
			path: "tracks.children[0].children[0].OTIO_SCHEMA",
		},
		{
			name: "zero item version",
			doc:  withClip(`{"OTIO_SCHEMA":"Clip.0"}`),
			path: "tracks.children[0].children[0].OTIO_SCHEMA",
		},
		{
			name: "zero root version",
			doc:  []byte(`{"OTIO_SCHEMA":"Timeline.0"}`),
			path: "OTIO_SCHEMA",
		},
		{
			name: "transition without offsets",
			doc:  withClip(`{"OTIO_SCHEMA":"Transition.1","in_offset":{"value":1,"rate":24}}`),
			path: "tracks.children[0].children[0].out_offset",
		},
		{
			name: "reference without url",
			doc:  withClip(`{"OTIO_SCHEMA":"Clip.2","media_reference":{"OTIO_SCHEMA":"ExternalReference.1"}}`),
			path: "tracks.children[0].children[0].media_reference.target_url",
		},
		{
			name: "marker range missing",
			doc:  withClip(`{"OTIO_SCHEMA":"Clip.2","markers":[{"OTIO_SCHEMA":"Marker.2","name":"m"}]}`),
			path: "tracks.children[0].children[0].markers[0].marked_range",
		},
		{
			name: "metadata not an object",
			doc:  withClip(`{"OTIO_SCHEMA":"Gap.1","metadata":[1]}`),
			path: "tracks.children[0].children[0].metadata",
		},
		{
			name: "track kind unknown",
			doc:  []byte(`{"OTIO_SCHEMA":"Timeline.1","tracks":{"OTIO_SCHEMA":"Stack.1","children":[{"OTIO_SCHEMA":"Track.1","kind":"Subtitle"}]}}`),
			path: "tracks.children[0].kind",
		},
		{
			name: "track kind missing",
			doc:  []byte(`{"OTIO_SCHEMA":"Timeline.1","tracks":{"OTIO_SCHEMA":"Stack.1","children":[{"OTIO_SCHEMA":"Track.1"}]}}`),
			path: "tracks.children[0].kind",
		},
		{
			name: "number out of range",
			doc:  withClip(`{"OTIO_SCHEMA":"Gap.1","source_range":{"start_time":{"value":1e400,"rate":24},"duration":{"value":1,"rate":24}}}`),
			path: "tracks.children[0].children[0].source_range.start_time.value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Parse(tt.doc, codec.ParseOptions{})
			var perr *codec.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Path != tt.path {
				t.Fatalf("got path %q want %q (%v)", perr.Path, tt.path, err)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := codec.Parse([]byte(`{"OTIO_SCHEMA":`), codec.ParseOptions{})
	var perr *codec.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Err == nil {
		t.Fatal("expected underlying decode error")
	}
	if !strings.HasPrefix(err.Error(), "parse $:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestParseAcceptsLenientShapes(t *testing.T) {
	doc := []byte(`{"OTIO_SCHEMA":"Timeline.1","name":null,"tracks":{"OTIO_SCHEMA":"Stack.1","children":[
{"OTIO_SCHEMA":"Track.1","kind":"audio","children":[
{"OTIO_SCHEMA":"Gap.1","source_range":{"OTIO_SCHEMA":"TimeRange.1","start_time":{"value":0,"rate":0},"duration":{"value":-3,"rate":24}}}]}]}}`)
	tl := mustParse(t, doc, codec.ParseOptions{})
	tr := tl.Tracks.Children[0]
	if tr.Kind != model.TrackKindAudio {
		t.Fatalf("expected kind to be normalised, got %q", tr.Kind)
	}
	gap := tr.Children[0].(*model.Gap)
	if gap.SourceRange.StartTime.Rate != 0 || gap.SourceRange.Duration.Value != -3 {
		t.Fatalf("parse should not repair timing, got %s", gap.SourceRange)
	}
	if tl.Metadata == nil || tl.Metadata.Len() != 0 {
		t.Fatal("absent metadata should decode as an empty object")
	}
}

func TestSerializeNewTimeline(t *testing.T) {
	tl := model.NewTimeline("fresh")
	tr := model.NewTrack("V1", model.TrackKindVideo)
	tr.Append(model.NewGap(rtime.New(24, 24)))
	tl.Tracks.Children = append(tl.Tracks.Children, tr)

	out := mustSerialize(t, tl, codec.SerializeOptions{})
	want := `{"OTIO_SCHEMA":"Timeline.1","name":"fresh","global_start_time":null,` +
		`"tracks":{"OTIO_SCHEMA":"Stack.1","name":"tracks","children":[` +
		`{"OTIO_SCHEMA":"Track.1","name":"V1","kind":"Video","children":[` +
		`{"OTIO_SCHEMA":"Gap.1","name":"","source_range":{"OTIO_SCHEMA":"TimeRange.1",` +
		`"start_time":{"OTIO_SCHEMA":"RationalTime.1","rate":24.0,"value":0.0},` +
		`"duration":{"OTIO_SCHEMA":"RationalTime.1","rate":24.0,"value":24.0}},"metadata":{}}],` +
		`"source_range":null,"markers":[],"metadata":{}}],"source_range":null,"markers":[],"metadata":{}},` +
		`"metadata":{}}`
	if string(out) != want {
		t.Fatalf("unexpected output:\n got %s\nwant %s", out, want)
	}
}

func TestSerializeRejectsBadTrees(t *testing.T) {
	tl := model.NewTimeline("bad")
	tr := model.NewTrack("V1", model.TrackKind("Subtitle"))
	tl.Tracks.Children = append(tl.Tracks.Children, tr)
	if _, err := codec.Serialize(tl, codec.SerializeOptions{}); err == nil {
		t.Fatal("expected error for invalid track kind")
	}

	tr.Kind = model.TrackKindVideo
	tr.Children = append(tr.Children, (*model.Clip)(nil))
	if _, err := codec.Serialize(tl, codec.SerializeOptions{}); err == nil {
		t.Fatal("expected error for nil clip")
	}

	tr.Children = []model.Item{model.NewTransition("t", rtime.New(1, 0), rtime.New(1, 24))}
	tr.Children[0].(*model.Transition).InOffset.Value = posInf()
	if _, err := codec.Serialize(tl, codec.SerializeOptions{}); err == nil {
		t.Fatal("expected error for non-finite value")
	}
}

func posInf() float64 {
	f, _ := strconv.ParseFloat("+Inf", 64)
	return f
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		v    float64
		p    codec.Precision
		want string
	}{
		{24, codec.FullPrecision(), "24.0"},
		{0, codec.FullPrecision(), "0.0"},
		{negZero(), codec.FullPrecision(), "0.0"},
		{23.976023976023978, codec.FullPrecision(), "23.976023976023978"},
		{-12.5, codec.FullPrecision(), "-12.5"},
		{1e-7, codec.FullPrecision(), "1e-7"},
		{1e21, codec.FullPrecision(), "1e+21"},
		{1.005, codec.Digits(2), "1.0"},
		{0.125, codec.Digits(2), "0.12"},
		{0.375, codec.Digits(2), "0.38"},
		{2.5, codec.Digits(0), "2.0"},
		{3.5, codec.Digits(0), "4.0"},
		{-0.001, codec.Digits(2), "0.0"},
		{48000, codec.Digits(3), "48000.0"},
		{23.976023976023978, codec.Digits(3), "23.976"},
		{100, codec.Digits(-1), "100.0"},
	}
	for _, tt := range tests {
		got, err := codec.FormatFloat(tt.v, tt.p)
		if err != nil {
			t.Fatalf("FormatFloat(%v, %s): %v", tt.v, tt.p, err)
		}
		if got != tt.want {
			t.Errorf("FormatFloat(%v, %s) = %q, want %q", tt.v, tt.p, got, tt.want)
		}
	}
	if _, err := codec.FormatFloat(posInf(), codec.FullPrecision()); err == nil {
		t.Fatal("expected error for infinity")
	}
}

func negZero() float64 {
	f, _ := strconv.ParseFloat("-0", 64)
	return f
}

func TestPrecisionContract(t *testing.T) {
	values := []float64{1.005, 0.125, 2.675, 1.0 / 3.0, 23.976023976023978, 86400}
	tl := model.NewTimeline("precision")
	tr := model.NewTrack("V1", model.TrackKindVideo)
	for _, v := range values {
		tr.Append(model.NewGap(rtime.New(v, v+24)))
	}
	tl.Tracks.Children = append(tl.Tracks.Children, tr)

	const digits = 2
	out := mustSerialize(t, tl, codec.SerializeOptions{Precision: codec.Digits(digits)})
	back := mustParse(t, out, codec.ParseOptions{})

	round := func(v float64) float64 {
		f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', digits, 64), 64)
		return f
	}
	for i, v := range values {
		got := back.Tracks.Children[0].Children[i].(*model.Gap).SourceRange.Duration
		if got.Value != round(v) || got.Rate != round(v+24) {
			t.Errorf("value %v: got %s want %v@%v", v, got, round(v), round(v+24))
		}
	}
	if orig := tr.Children[0].(*model.Gap).SourceRange.Duration.Value; orig != 1.005 {
		t.Fatalf("serialization must not modify the tree, got %v", orig)
	}
}
