package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// GenerateImagesFromScenes submits every scene description to the image
// provider and collects the resulting bytes. Jobs are asynchronous and cheap
// to enqueue, so submissions run in parallel without an explicit cap; the
// provider queues them itself. Results are keyed by scene index.
func (p *Pipeline) GenerateImagesFromScenes(ctx context.Context, scenes []SceneDescription, sectionID string) ([]GeneratedImage, error) {
	if len(scenes) == 0 {
		return nil, nil
	}
	log.Printf("[images] generating %d images for section %s", len(scenes), sectionID)

	images := make([]GeneratedImage, len(scenes))
	g, gctx := errgroup.WithContext(ctx)
	for i := range scenes {
		g.Go(func() error {
			data, err := p.generateImage(gctx, scenes[i].Description)
			if err != nil {
				return err
			}
			images[i] = GeneratedImage{
				SectionID:         sectionID,
				Position:          i,
				Prompt:            scenes[i].Description,
				DisplayPercentage: scenes[i].DisplayPercentage,
				ImageData:         data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// generateImage runs one submit/poll/fetch cycle against the provider.
func (p *Pipeline) generateImage(ctx context.Context, prompt string) ([]byte, error) {
	jobID, err := p.images.Submit(ctx, prompt)
	if err != nil {
		return nil, &ImageError{Prompt: prompt, Err: err}
	}

	for attempt := 0; attempt < p.opts.PollMaxAttempts; attempt++ {
		job, err := p.images.Poll(ctx, jobID)
		if err != nil {
			return nil, &ImageError{Prompt: prompt, Err: err}
		}

		switch job.State {
		case JobSucceeded:
			if len(job.ResultData) > 0 {
				return job.ResultData, nil
			}
			if job.ResultURL == "" {
				return nil, &ImageError{Prompt: prompt, Err: errors.New("job succeeded without a result")}
			}
			data, err := p.fetcher.Fetch(ctx, job.ResultURL)
			if err != nil {
				return nil, &ImageError{Prompt: prompt, Err: fmt.Errorf("fetch result: %w", err)}
			}
			return data, nil
		case JobFailed:
			return nil, &ImageError{Prompt: prompt, Err: fmt.Errorf("provider error: %s", job.Err)}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.opts.PollInterval):
		}
	}
	return nil, ErrImageTimeout
}

// GenerateSectionFrames produces one illustration per paragraph of a
// section's translation. Paragraph positions that already have a persisted
// frame are skipped before any provider call, so a retried run regenerates
// only the missing positions instead of duplicating rows and paid calls.
func (p *Pipeline) GenerateSectionFrames(ctx context.Context, sectionID, languageID, cefrLevel string) error {
	content, err := p.store.GetTranslation(ctx, sectionID, languageID, cefrLevel)
	if err != nil {
		return err
	}
	units := SplitParagraphs(content)
	if len(units) == 0 {
		return nil
	}
	log.Printf("[images] generating frames for %d paragraphs in section %s", len(units), sectionID)

	g, gctx := errgroup.WithContext(ctx)
	for i := range units {
		g.Go(func() error {
			return p.generateFrame(gctx, sectionID, units, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("[images] frames complete for section %s", sectionID)
	return nil
}

func (p *Pipeline) generateFrame(ctx context.Context, sectionID string, units []TextUnit, i int) error {
	exists, err := p.store.HasSceneFrame(ctx, sectionID, i)
	if err != nil {
		return fmt.Errorf("frame existence check: %w", err)
	}
	if exists {
		log.Printf("[images] frame %d already exists, skipping", i)
		return nil
	}

	scene, err := p.describeScene(ctx, units, i)
	if err != nil {
		return err
	}
	data, err := p.generateImage(ctx, scene.Description)
	if err != nil {
		return err
	}

	fileID, err := p.objects.Put(ctx, data, fmt.Sprintf("frame-%d.webp", i), "image/webp")
	if err != nil {
		return fmt.Errorf("frame upload: %w", err)
	}
	frame := SceneFrame{Position: i, FileID: fileID, DisplayPercentage: scene.DisplayPercentage}
	asset := FileAsset{
		ID:       fileID,
		Name:     fmt.Sprintf("frame-%d.webp", i),
		Size:     int64(len(data)),
		MimeType: "image/webp",
	}
	if err := p.store.CreateSceneFrame(ctx, sectionID, frame, asset); err != nil {
		return fmt.Errorf("frame insert: %w", err)
	}
	return nil
}
