package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"timelinekit/internal/codec"
	"timelinekit/internal/model"
	"timelinekit/internal/rtime"
)

func writeGapTrack(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	tl := model.NewTimeline("gaps")
	track := model.NewTrack("V1", model.TrackKindVideo)
	track.Append(
		model.NewGap(rtime.New(12, 24)),
		model.NewGap(rtime.New(0, 24)),
		model.NewGap(rtime.New(12, 24)),
	)
	tl.Tracks.Children = append(tl.Tracks.Children, track)
	data, err := codec.Serialize(tl, codec.SerializeOptions{Pretty: true})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	path := filepath.Join(env.baseDir, "gaps.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func sanitizeReport(t *testing.T, env *cliTestEnv, args ...string) sanitizeView {
	t.Helper()
	out, _, err := runCLI(t, env, "", append([]string{"sanitize", "--json"}, args...)...)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	var view sanitizeView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	return view
}

func TestSanitizeTrackCleanupFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeGapTrack(t, env)
	target := filepath.Join(env.baseDir, "out.json")

	if view := sanitizeReport(t, env, path, "-o", target); view.Changed {
		t.Fatalf("default run changed the document: %+v", view)
	}

	view := sanitizeReport(t, env, "--drop-zero-length", "--merge-gaps", path, "-o", target)
	if len(view.Actions) != 2 {
		t.Fatalf("got %d actions want 2: %+v", len(view.Actions), view.Actions)
	}
	if view.Actions[0].Kind != "zero_length_dropped" || view.Actions[0].Path != "tracks.children[0].children[1]" {
		t.Fatalf("got first action %+v", view.Actions[0])
	}
	if view.Actions[1].Kind != "gaps_merged" || view.Actions[1].Path != "tracks.children[0].children[0].source_range.duration" {
		t.Fatalf("got second action %+v", view.Actions[1])
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	tl, err := codec.Parse(data, codec.ParseOptions{})
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if got := len(tl.Tracks.Children[0].Children); got != 1 {
		t.Fatalf("got %d children want 1", got)
	}
}

func TestSanitizeCleanupFromConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Sanitize.MergeAdjacentGaps = true
	writeTestConfig(t, env.configPath, env.cfg)
	path := writeGapTrack(t, env)
	target := filepath.Join(env.baseDir, "out.json")

	view := sanitizeReport(t, env, path, "-o", target)
	if len(view.Actions) != 2 || view.Actions[0].Kind != "gaps_merged" {
		t.Fatalf("got actions %+v want 2 merges", view.Actions)
	}

	view = sanitizeReport(t, env, "--merge-gaps=false", path, "-o", target)
	if view.Changed {
		t.Fatalf("flag did not override config: %+v", view.Actions)
	}
}
