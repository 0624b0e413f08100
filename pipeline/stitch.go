package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const downloadParallelism = 8

// RenderVideo stitches a section's persisted audio segments and scene frames
// into one video file and returns its local path. Uploading and registering
// the artifact is the orchestrator's job; rendering stays separate so it can
// be tested against a fake toolchain.
//
// All intermediate files live in a scratch directory owned exclusively by
// this invocation (uuid-named, so concurrent renders never collide) and are
// removed on every exit path. The returned final file is written next to the
// scratch directory and survives it.
func (p *Pipeline) RenderVideo(ctx context.Context, sectionID, languageID, cefrLevel string) (string, error) {
	log.Printf("[render] starting video generation for section %s (%s/%s)", sectionID, languageID, cefrLevel)

	segments, err := p.store.ListAudioSegments(ctx, sectionID, languageID, cefrLevel)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", ErrMissingAudioSegments
	}
	frames, err := p.store.ListSceneFrames(ctx, sectionID)
	if err != nil {
		return "", err
	}
	if len(frames) == 0 {
		return "", ErrMissingSceneFrames
	}

	timeline, err := MapTimeline(segments, frames)
	if err != nil {
		return "", err
	}
	log.Printf("[render] %d segments, %d frames, %d timeline entries", len(segments), len(frames), len(timeline))

	scratch := filepath.Join(p.scratchRoot(), "render-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(scratch, "audio"), 0o755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(scratch, "frames"), 0o755); err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	finalPath := filepath.Join(p.scratchRoot(), fmt.Sprintf("final_video-%s.mp4", uuid.NewString()))
	if err := p.renderInto(ctx, scratch, finalPath, segments, timeline); err != nil {
		os.Remove(finalPath)
		return "", err
	}

	log.Printf("[render] video assembly complete: %s", finalPath)
	return finalPath, nil
}

func (p *Pipeline) renderInto(ctx context.Context, scratch, finalPath string, segments []AudioSegment, timeline []TimelineEntry) error {
	if err := p.downloadAssets(ctx, scratch, segments, timeline); err != nil {
		return err
	}

	audioPath, err := p.stitchAudio(ctx, scratch, segments)
	if err != nil {
		return err
	}

	segmentPaths, err := p.renderFrameSegments(ctx, scratch, timeline)
	if err != nil {
		return err
	}

	listPath := filepath.Join(scratch, "segments.txt")
	if err := writeConcatList(listPath, segmentPaths); err != nil {
		return err
	}
	log.Printf("[render] combining %d video segments with audio", len(segmentPaths))
	return p.runner.Run(ctx, "ffmpeg",
		"-y", "-f", "concat", "-safe", "0",
		"-i", listPath,
		"-i", audioPath,
		"-c:v", "libx264", "-c:a", "aac",
		finalPath,
	)
}

// downloadAssets pulls every referenced audio file and every distinct frame
// into the scratch directory, then verifies each expected local file exists.
// A missing file is fatal before any subprocess runs.
func (p *Pipeline) downloadAssets(ctx context.Context, scratch string, segments []AudioSegment, timeline []TimelineEntry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadParallelism)

	for _, seg := range segments {
		g.Go(func() error {
			return p.objects.Download(gctx, seg.FileID, p.audioPath(scratch, seg.FileID))
		})
	}
	// Multiple timeline entries may share a frame; download each file once.
	seen := make(map[string]bool)
	for _, entry := range timeline {
		if seen[entry.FrameFileID] {
			continue
		}
		seen[entry.FrameFileID] = true
		g.Go(func() error {
			return p.objects.Download(gctx, entry.FrameFileID, p.framePath(scratch, entry.FrameFileID))
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("asset download: %w", err)
	}

	for _, seg := range segments {
		if _, err := os.Stat(p.audioPath(scratch, seg.FileID)); err != nil {
			return &MissingAssetError{Path: p.audioPath(scratch, seg.FileID)}
		}
	}
	for fileID := range seen {
		if _, err := os.Stat(p.framePath(scratch, fileID)); err != nil {
			return &MissingAssetError{Path: p.framePath(scratch, fileID)}
		}
	}
	return nil
}

// stitchAudio losslessly concatenates the segment files, in position order,
// into one track. Segments share codec and container (narration always
// produces the same format), so stream copy is valid.
func (p *Pipeline) stitchAudio(ctx context.Context, scratch string, segments []AudioSegment) (string, error) {
	paths := make([]string, len(segments))
	for i, seg := range segments {
		paths[i] = p.audioPath(scratch, seg.FileID)
	}
	listPath := filepath.Join(scratch, "audio_list.txt")
	if err := writeConcatList(listPath, paths); err != nil {
		return "", err
	}

	audioPath := filepath.Join(scratch, "final_audio.mp3")
	log.Printf("[render] concatenating %d audio segments", len(segments))
	err := p.runner.Run(ctx, "ffmpeg",
		"-y", "-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		audioPath,
	)
	if err != nil {
		return "", err
	}
	return audioPath, nil
}

// renderFrameSegments encodes one fixed-duration still-image segment per
// timeline entry. Entries are independent, so encoding runs under bounded
// parallelism (one worker per core by default).
func (p *Pipeline) renderFrameSegments(ctx context.Context, scratch string, timeline []TimelineEntry) ([]string, error) {
	parallelism := p.opts.RenderParallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	paths := make([]string, len(timeline))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	previous := 0
	for i, entry := range timeline {
		durationSec := float64(entry.BoundaryMs-previous) / 1000
		previous = entry.BoundaryMs

		framePath := p.framePath(scratch, entry.FrameFileID)
		segmentPath := filepath.Join(scratch, fmt.Sprintf("segment_%d.mp4", i))
		paths[i] = segmentPath

		g.Go(func() error {
			return p.runner.Run(gctx, "ffmpeg",
				"-y", "-loop", "1",
				"-i", framePath,
				"-t", strconv.FormatFloat(durationSec, 'f', 3, 64),
				"-vf", "format=yuv420p",
				"-c:v", "libx264",
				segmentPath,
			)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (p *Pipeline) audioPath(scratch, fileID string) string {
	return filepath.Join(scratch, "audio", fileID+".mp3")
}

func (p *Pipeline) framePath(scratch, fileID string) string {
	return filepath.Join(scratch, "frames", fileID+".webp")
}

func writeConcatList(listPath string, paths []string) error {
	lines := make([]string, len(paths))
	for i, path := range paths {
		lines[i] = fmt.Sprintf("file '%s'", path)
	}
	return os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o644)
}
