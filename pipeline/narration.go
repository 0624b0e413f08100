package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenerateSectionAudio narrates every sentence of the section's translation
// for the given language and CEFR level, persisting one audio segment per
// position. Positions that already have a segment are skipped, which is what
// makes a re-run after a partial failure resume instead of duplicating work.
// Any single-unit failure aborts the whole section (no gapped timelines).
func (p *Pipeline) GenerateSectionAudio(ctx context.Context, sectionID, languageID, cefrLevel string) error {
	log.Printf("[narration] generating audio for section %s (%s/%s)", sectionID, languageID, cefrLevel)

	content, err := p.store.GetTranslation(ctx, sectionID, languageID, cefrLevel)
	if err != nil {
		return err
	}

	units := ExtractUnits(content)
	log.Printf("[narration] %d sentences to process", len(units))
	if len(units) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range units {
		g.Go(func() error {
			if err := p.narrateUnit(gctx, sectionID, languageID, cefrLevel, units, i); err != nil {
				return &NarrationError{Position: i, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("[narration] audio generation complete for section %s", sectionID)
	return nil
}

func (p *Pipeline) narrateUnit(ctx context.Context, sectionID, languageID, cefrLevel string, units []TextUnit, i int) error {
	exists, err := p.store.HasAudioSegment(ctx, sectionID, languageID, cefrLevel, i)
	if err != nil {
		return fmt.Errorf("existence check: %w", err)
	}
	if exists {
		log.Printf("[narration] position %d already exists, skipping", i)
		return nil
	}

	previousText := ""
	if i > 0 {
		previousText = units[i-1].Text
	}
	nextText := ""
	if i < len(units)-1 {
		nextText = units[i+1].Text
	}

	var audioData []byte
	err = p.gate.Do(ctx, func() error {
		var synthErr error
		audioData, synthErr = p.tts.Synthesize(ctx, units[i].Text, previousText, nextText)
		return synthErr
	})
	if err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}

	durationMs, err := p.measureDuration(ctx, audioData)
	if err != nil {
		return fmt.Errorf("duration probe: %w", err)
	}

	fileID, err := p.objects.Put(ctx, audioData, fmt.Sprintf("audio-%d.mp3", i), "audio/mpeg")
	if err != nil {
		return fmt.Errorf("audio upload: %w", err)
	}

	seg := AudioSegment{Position: i, FileID: fileID, DurationMs: durationMs}
	asset := FileAsset{
		ID:       fileID,
		Name:     fmt.Sprintf("audio-%d.mp3", i),
		Size:     int64(len(audioData)),
		MimeType: "audio/mpeg",
	}
	if err := p.store.CreateAudioSegment(ctx, sectionID, languageID, cefrLevel, seg, asset); err != nil {
		return fmt.Errorf("segment insert: %w", err)
	}

	log.Printf("[narration] stored audio for sentence %d (%dms)", i+1, durationMs)
	return nil
}

// measureDuration decodes the audio to get its exact playable length; byte
// size is not a usable estimate across sentences.
func (p *Pipeline) measureDuration(ctx context.Context, audioData []byte) (int, error) {
	root := p.scratchRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, err
	}
	tmpPath := filepath.Join(root, fmt.Sprintf("probe-%s.mp3", uuid.NewString()))
	if err := os.WriteFile(tmpPath, audioData, 0o644); err != nil {
		return 0, err
	}
	defer os.Remove(tmpPath)
	return p.prober.DurationMs(ctx, tmpPath)
}

func (p *Pipeline) scratchRoot() string {
	if p.opts.ScratchDir != "" {
		return p.opts.ScratchDir
	}
	return os.TempDir()
}
