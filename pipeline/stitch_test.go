package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func seedRenderInputs(env *testEnv) {
	env.store.segments[tkey("sec-1", "en", "B1")] = []AudioSegment{
		{Position: 0, FileID: "a0", DurationMs: 900},
		{Position: 1, FileID: "a1", DurationMs: 700},
	}
	env.store.frames["sec-1"] = []SceneFrame{
		{FileID: "f0", DisplayPercentage: 0.0},
	}
}

// scratchEntries lists what is left under the scratch root, split into
// leftover render directories and final video files.
func scratchEntries(t *testing.T, root string) (renderDirs, finalFiles []string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read scratch root: %v", err)
	}
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "render-"):
			renderDirs = append(renderDirs, e.Name())
		case strings.HasPrefix(e.Name(), "final_video-"):
			finalFiles = append(finalFiles, e.Name())
		}
	}
	return renderDirs, finalFiles
}

func TestRenderVideo(t *testing.T) {
	scratch := t.TempDir()
	env := newTestEnv(scratch)
	seedRenderInputs(env)

	finalPath, err := env.pipeline.RenderVideo(context.Background(), "sec-1", "en", "B1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(finalPath); err != nil {
		t.Fatalf("final video missing: %v", err)
	}

	// One audio concat, one still segment per timeline entry, one final mux.
	if len(env.runner.commands) != 4 {
		t.Errorf("ran %d commands, want 4", len(env.runner.commands))
	}
	for i, cmd := range env.runner.commands {
		if cmd[0] != "ffmpeg" {
			t.Errorf("command %d invoked %q", i, cmd[0])
		}
	}

	renderDirs, _ := scratchEntries(t, scratch)
	if len(renderDirs) != 0 {
		t.Errorf("scratch directories left behind: %v", renderDirs)
	}
}

func TestRenderVideoNoAudio(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.store.frames["sec-1"] = []SceneFrame{{FileID: "f0"}}

	_, err := env.pipeline.RenderVideo(context.Background(), "sec-1", "en", "B1")
	if !errors.Is(err, ErrMissingAudioSegments) {
		t.Errorf("got %v, want ErrMissingAudioSegments", err)
	}
}

func TestRenderVideoNoFrames(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.store.segments[tkey("sec-1", "en", "B1")] = []AudioSegment{{Position: 0, FileID: "a0", DurationMs: 900}}

	_, err := env.pipeline.RenderVideo(context.Background(), "sec-1", "en", "B1")
	if !errors.Is(err, ErrMissingSceneFrames) {
		t.Errorf("got %v, want ErrMissingSceneFrames", err)
	}
}

func TestRenderVideoMissingDownloadedAsset(t *testing.T) {
	env := newTestEnv(t.TempDir())
	seedRenderInputs(env)
	env.objects.failRef = "f0"

	_, err := env.pipeline.RenderVideo(context.Background(), "sec-1", "en", "B1")
	var missing *MissingAssetError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want a MissingAssetError", err)
	}
	if len(env.runner.commands) != 0 {
		t.Errorf("ran %d commands despite a missing asset", len(env.runner.commands))
	}
}

func TestRenderVideoCleansUpOnFailure(t *testing.T) {
	scratch := t.TempDir()
	env := newTestEnv(scratch)
	seedRenderInputs(env)
	env.runner.failOn = "final_audio.mp3"

	_, err := env.pipeline.RenderVideo(context.Background(), "sec-1", "en", "B1")
	var subErr *SubprocessError
	if !errors.As(err, &subErr) {
		t.Fatalf("got %v, want a SubprocessError", err)
	}

	renderDirs, finalFiles := scratchEntries(t, scratch)
	if len(renderDirs) != 0 {
		t.Errorf("scratch directories left behind after failure: %v", renderDirs)
	}
	if len(finalFiles) != 0 {
		t.Errorf("final video files left behind after failure: %v", finalFiles)
	}
}

func TestRenderVideoSegmentDurations(t *testing.T) {
	env := newTestEnv(t.TempDir())
	seedRenderInputs(env)

	if _, err := env.pipeline.RenderVideo(context.Background(), "sec-1", "en", "B1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Segment render commands carry -t <seconds>; with boundaries at 900ms and
	// 1600ms the still durations are 0.9s and 0.7s.
	wantDurations := map[string]bool{"0.900": false, "0.700": false}
	for _, cmd := range env.runner.commands {
		for i, arg := range cmd {
			if arg == "-t" && i+1 < len(cmd) {
				if _, ok := wantDurations[cmd[i+1]]; ok {
					wantDurations[cmd[i+1]] = true
				}
			}
		}
	}
	for dur, seen := range wantDurations {
		if !seen {
			t.Errorf("no segment rendered with duration %ss", dur)
		}
	}
}
