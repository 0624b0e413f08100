package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// GenerateSectionVideo runs the full chain for one (section, language,
// level) triple: narration, frames, rendering, then upload and registration
// with the video host. Stages are idempotent where they persist (audio is
// resumed, not regenerated), so re-invoking after a failure picks up where
// the previous run stopped.
func (p *Pipeline) GenerateSectionVideo(ctx context.Context, sectionID, languageID, cefrLevel string) (VideoAsset, error) {
	if err := p.GenerateSectionAudio(ctx, sectionID, languageID, cefrLevel); err != nil {
		return VideoAsset{}, err
	}

	// Frames are keyed per (section, position) and the stage skips what
	// already exists, so an unconditional call fills any gaps left by an
	// interrupted run.
	if err := p.GenerateSectionFrames(ctx, sectionID, languageID, cefrLevel); err != nil {
		return VideoAsset{}, err
	}

	localPath, err := p.RenderVideo(ctx, sectionID, languageID, cefrLevel)
	if err != nil {
		return VideoAsset{}, err
	}
	defer os.Remove(localPath)

	return p.PublishVideo(ctx, sectionID, languageID, cefrLevel, localPath)
}

// PublishVideo uploads a rendered video to object storage, has the host
// ingest it from a presigned URL, and records the playable asset.
func (p *Pipeline) PublishVideo(ctx context.Context, sectionID, languageID, cefrLevel, localPath string) (VideoAsset, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return VideoAsset{}, fmt.Errorf("read rendered video: %w", err)
	}

	fileID, err := p.objects.Put(ctx, data, filepath.Base(localPath), "video/mp4")
	if err != nil {
		return VideoAsset{}, fmt.Errorf("video upload: %w", err)
	}

	sourceURL, err := p.objects.PresignedURL(ctx, fileID, p.opts.PresignTTL)
	if err != nil {
		return VideoAsset{}, fmt.Errorf("presign video: %w", err)
	}

	log.Printf("[publish] registering video with host for section %s", sectionID)
	hostAsset, err := p.host.CreateAsset(ctx, sourceURL, languageID)
	if err != nil {
		return VideoAsset{}, fmt.Errorf("host asset: %w", err)
	}

	video := VideoAsset{
		SectionID:      sectionID,
		LanguageID:     languageID,
		CefrLevel:      cefrLevel,
		FileID:         fileID,
		HostAssetID:    hostAsset.AssetID,
		HostPlaybackID: hostAsset.PlaybackID,
	}
	if err := p.store.CreateSectionVideo(ctx, video); err != nil {
		return VideoAsset{}, fmt.Errorf("video insert: %w", err)
	}

	log.Printf("[publish] section %s video ready (playback %s)", sectionID, hostAsset.PlaybackID)
	return video, nil
}
