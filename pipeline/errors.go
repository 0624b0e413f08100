package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrTranslationNotFound aborts a run before any provider call is made.
	ErrTranslationNotFound = errors.New("translation not found")

	// ErrNoFrames is returned by MapTimeline when the frame list is empty.
	ErrNoFrames = errors.New("no scene frames available")

	// ErrMissingAudioSegments / ErrMissingSceneFrames abort rendering when
	// the section has no persisted media to stitch.
	ErrMissingAudioSegments = errors.New("no audio segments found for section")
	ErrMissingSceneFrames   = errors.New("no scene frames found for section")

	// ErrImageTimeout means the poll attempt ceiling was exhausted. Kept
	// distinct from provider failures so callers can decide to retry the
	// whole run later.
	ErrImageTimeout = errors.New("image generation timed out")
)

// NarrationError wraps a failure while narrating one unit. The whole
// section's generation aborts; already-persisted positions are skipped on
// the next run.
type NarrationError struct {
	Position int
	Err      error
}

func (e *NarrationError) Error() string {
	return fmt.Sprintf("narration failed at position %d: %v", e.Position, e.Err)
}

func (e *NarrationError) Unwrap() error { return e.Err }

// SceneParseError means the model's output did not conform to the expected
// JSON shape.
type SceneParseError struct {
	Raw string
	Err error
}

func (e *SceneParseError) Error() string {
	return fmt.Sprintf("scene description did not parse: %v", e.Err)
}

func (e *SceneParseError) Unwrap() error { return e.Err }

// ImageError wraps a provider-side image generation failure.
type ImageError struct {
	Prompt string
	Err    error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// MissingAssetError means an expected downloaded file is absent on disk.
// Rendering aborts before any subprocess is invoked.
type MissingAssetError struct {
	Path string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("expected asset missing on disk: %s", e.Path)
}

// SubprocessError carries the media tool's stderr for diagnostics.
type SubprocessError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *SubprocessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Cmd, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Cmd, e.Err)
}

func (e *SubprocessError) Unwrap() error { return e.Err }
