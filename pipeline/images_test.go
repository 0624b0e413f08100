package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateImageInlineResult(t *testing.T) {
	env := newTestEnv(t.TempDir())

	data, err := env.pipeline.generateImage(context.Background(), "a harbor at dawn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "img:a harbor at dawn" {
		t.Errorf("got %q", data)
	}
}

func TestGenerateImageFetchesResultURL(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.images.statuses["job-1"] = []ImageJob{
		{State: JobPending},
		{State: JobPending},
		{State: JobSucceeded, ResultURL: "https://img.example/out.webp"},
	}

	data, err := env.pipeline.generateImage(context.Background(), "a harbor at dawn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "fetched:https://img.example/out.webp" {
		t.Errorf("got %q", data)
	}
	if env.images.polls["job-1"] != 3 {
		t.Errorf("polled %d times, want 3", env.images.polls["job-1"])
	}
}

func TestGenerateImageProviderFailure(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.images.statuses["job-1"] = []ImageJob{
		{State: JobFailed, Err: "NSFW content detected"},
	}

	_, err := env.pipeline.generateImage(context.Background(), "a harbor at dawn")
	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Fatalf("got %v, want an ImageError", err)
	}
	if !strings.Contains(imgErr.Error(), "NSFW content detected") {
		t.Errorf("error does not carry the provider message: %v", imgErr)
	}
}

func TestGenerateImagePollCeiling(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.images.statuses["job-1"] = []ImageJob{{State: JobPending}}

	_, err := env.pipeline.generateImage(context.Background(), "a harbor at dawn")
	if !errors.Is(err, ErrImageTimeout) {
		t.Fatalf("got %v, want ErrImageTimeout", err)
	}
	if got := env.images.polls["job-1"]; got != env.pipeline.opts.PollMaxAttempts {
		t.Errorf("polled %d times, want the attempt ceiling %d", got, env.pipeline.opts.PollMaxAttempts)
	}
}

func TestGenerateImageSucceededWithoutResult(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.images.statuses["job-1"] = []ImageJob{{State: JobSucceeded}}

	_, err := env.pipeline.generateImage(context.Background(), "a harbor at dawn")
	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Errorf("got %v, want an ImageError", err)
	}
}

func TestGenerateSectionFrames(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.store.translations[tkey("sec-1", "en", "B1")] = "A quiet harbor.\n\nThe fleet sails out."

	if err := env.pipeline.GenerateSectionFrames(context.Background(), "sec-1", "en", "B1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames, _ := env.store.ListSceneFrames(context.Background(), "sec-1")
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].DisplayPercentage != 0 {
		t.Errorf("first frame percentage = %v, want 0", frames[0].DisplayPercentage)
	}
	if frames[1].DisplayPercentage <= frames[0].DisplayPercentage {
		t.Errorf("frame percentages not increasing: %v, %v", frames[0].DisplayPercentage, frames[1].DisplayPercentage)
	}
	for i, frame := range frames {
		if frame.Position != i {
			t.Errorf("frame %d position = %d", i, frame.Position)
		}
		if frame.FileID == "" {
			t.Errorf("frame %d has empty file id", i)
		}
	}
	if len(env.images.submits) != 2 {
		t.Errorf("submitted %d image jobs, want 2", len(env.images.submits))
	}
}

func TestGenerateSectionFramesResumesAfterPartialRun(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.store.translations[tkey("sec-1", "en", "B1")] = "A quiet harbor.\n\nThe fleet sails out."
	// Position 0 already persisted by an earlier, interrupted run.
	env.store.frames["sec-1"] = []SceneFrame{
		{Position: 0, FileID: "existing", DisplayPercentage: 0},
	}

	if err := env.pipeline.GenerateSectionFrames(context.Background(), "sec-1", "en", "B1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(env.llm.prompts) != 1 {
		t.Errorf("called the model %d times, want only the missing paragraph", len(env.llm.prompts))
	}
	if len(env.images.submits) != 1 {
		t.Errorf("submitted %d image jobs, want only the missing paragraph", len(env.images.submits))
	}

	frames, _ := env.store.ListSceneFrames(context.Background(), "sec-1")
	if len(frames) != 2 {
		t.Fatalf("got %d frames after resume, want 2", len(frames))
	}
	if frames[0].FileID != "existing" {
		t.Errorf("position 0 was regenerated: file id %q", frames[0].FileID)
	}
	if frames[1].Position != 1 {
		t.Errorf("resumed frame position = %d, want 1", frames[1].Position)
	}
}

func TestGenerateSectionFramesRerunIsNoOp(t *testing.T) {
	env := newTestEnv(t.TempDir())
	env.store.translations[tkey("sec-1", "en", "B1")] = "A quiet harbor.\n\nThe fleet sails out."

	if err := env.pipeline.GenerateSectionFrames(context.Background(), "sec-1", "en", "B1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.pipeline.GenerateSectionFrames(context.Background(), "sec-1", "en", "B1"); err != nil {
		t.Fatalf("unexpected error on re-run: %v", err)
	}

	frames, _ := env.store.ListSceneFrames(context.Background(), "sec-1")
	if len(frames) != 2 {
		t.Errorf("got %d frames after re-run, want 2", len(frames))
	}
	if len(env.images.submits) != 2 {
		t.Errorf("submitted %d image jobs across both runs, want 2", len(env.images.submits))
	}
	if len(env.llm.prompts) != 2 {
		t.Errorf("called the model %d times across both runs, want 2", len(env.llm.prompts))
	}
}

func TestGenerateImagesFromScenes(t *testing.T) {
	env := newTestEnv(t.TempDir())
	scenes := []SceneDescription{
		{Text: "A quiet harbor.", Description: "harbor scene", DisplayPercentage: 0},
		{Text: "The fleet sails out.", Description: "fleet scene", DisplayPercentage: 0.5},
	}

	images, err := env.pipeline.GenerateImagesFromScenes(context.Background(), scenes, "sec-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	for i, img := range images {
		if img.Position != i {
			t.Errorf("image %d position = %d", i, img.Position)
		}
		if img.Prompt != scenes[i].Description {
			t.Errorf("image %d prompt = %q, want %q", i, img.Prompt, scenes[i].Description)
		}
		if img.DisplayPercentage != scenes[i].DisplayPercentage {
			t.Errorf("image %d percentage = %v", i, img.DisplayPercentage)
		}
		if len(img.ImageData) == 0 {
			t.Errorf("image %d has no data", i)
		}
	}
}

func TestGenerateSectionFramesMissingTranslation(t *testing.T) {
	env := newTestEnv(t.TempDir())
	err := env.pipeline.GenerateSectionFrames(context.Background(), "sec-1", "en", "B1")
	if !errors.Is(err, ErrTranslationNotFound) {
		t.Errorf("got %v, want ErrTranslationNotFound", err)
	}
	if len(env.images.submits) != 0 {
		t.Errorf("submitted %d jobs for a missing translation", len(env.images.submits))
	}
}
