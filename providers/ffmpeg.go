package providers

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"LinguaReel-server/pipeline"
)

// ExecRunner invokes the local media toolchain (ffmpeg/ffprobe) as
// subprocesses, capturing stderr for diagnostics on failure.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &pipeline.SubprocessError{
			Cmd:    name,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

// FFProbe measures exact playable audio duration by decoding the container
// metadata, not by estimating from byte size.
type FFProbe struct{}

func (FFProbe) DurationMs(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, &pipeline.SubprocessError{
			Cmd:    "ffprobe",
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", stdout.String(), err)
	}
	return int(math.Round(seconds * 1000)), nil
}
