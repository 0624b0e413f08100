package models

import (
	"context"
	"errors"
	"time"

	"LinguaReel-server/pipeline"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store adapts gorm persistence to what the pipeline needs. File rows and
// their referencing segment/frame rows commit in one transaction so a failed
// insert never leaves an orphaned file reference.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) GetTranslation(ctx context.Context, sectionID, languageID, cefrLevel string) (string, error) {
	var t SectionTranslation
	err := s.DB.WithContext(ctx).Where(
		"book_section_id = ? AND language_id = ? AND cefr_level = ?",
		sectionID, languageID, cefrLevel,
	).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pipeline.ErrTranslationNotFound
	}
	if err != nil {
		return "", err
	}
	return t.Content, nil
}

func (s *Store) HasAudioSegment(ctx context.Context, sectionID, languageID, cefrLevel string, position int) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&SectionAudio{}).Where(
		"book_section_id = ? AND language_id = ? AND cefr_level = ? AND position = ?",
		sectionID, languageID, cefrLevel, position,
	).Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateAudioSegment(ctx context.Context, sectionID, languageID, cefrLevel string, seg pipeline.AudioSegment, asset pipeline.FileAsset) error {
	now := time.Now()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&File{
			ID:        asset.ID,
			Name:      asset.Name,
			Size:      asset.Size,
			Type:      asset.MimeType,
			CreatedAt: now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&SectionAudio{
			ID:            uuid.NewString(),
			BookSectionID: sectionID,
			LanguageID:    languageID,
			CefrLevel:     cefrLevel,
			Position:      seg.Position,
			FileID:        seg.FileID,
			DurationMs:    seg.DurationMs,
			CreatedAt:     now,
		}).Error
	})
}

func (s *Store) ListAudioSegments(ctx context.Context, sectionID, languageID, cefrLevel string) ([]pipeline.AudioSegment, error) {
	var rows []SectionAudio
	err := s.DB.WithContext(ctx).Where(
		"book_section_id = ? AND language_id = ? AND cefr_level = ?",
		sectionID, languageID, cefrLevel,
	).Order("position ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	segments := make([]pipeline.AudioSegment, len(rows))
	for i, row := range rows {
		segments[i] = pipeline.AudioSegment{
			Position:   row.Position,
			FileID:     row.FileID,
			DurationMs: row.DurationMs,
		}
	}
	return segments, nil
}

func (s *Store) HasSceneFrame(ctx context.Context, sectionID string, position int) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&SectionFrame{}).Where(
		"book_section_id = ? AND position = ?",
		sectionID, position,
	).Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateSceneFrame(ctx context.Context, sectionID string, frame pipeline.SceneFrame, asset pipeline.FileAsset) error {
	now := time.Now()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&File{
			ID:        asset.ID,
			Name:      asset.Name,
			Size:      asset.Size,
			Type:      asset.MimeType,
			CreatedAt: now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&SectionFrame{
			ID:                uuid.NewString(),
			BookSectionID:     sectionID,
			Position:          frame.Position,
			FileID:            frame.FileID,
			DisplayPercentage: frame.DisplayPercentage,
			CreatedAt:         now,
		}).Error
	})
}

func (s *Store) ListSceneFrames(ctx context.Context, sectionID string) ([]pipeline.SceneFrame, error) {
	var rows []SectionFrame
	err := s.DB.WithContext(ctx).Where("book_section_id = ?", sectionID).
		Order("position ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	frames := make([]pipeline.SceneFrame, len(rows))
	for i, row := range rows {
		frames[i] = pipeline.SceneFrame{
			Position:          row.Position,
			FileID:            row.FileID,
			DisplayPercentage: row.DisplayPercentage,
		}
	}
	return frames, nil
}

func (s *Store) CreateSectionVideo(ctx context.Context, video pipeline.VideoAsset) error {
	return s.DB.WithContext(ctx).Create(&SectionVideo{
		ID:             uuid.NewString(),
		BookSectionID:  video.SectionID,
		LanguageID:     video.LanguageID,
		CefrLevel:      video.CefrLevel,
		FileID:         video.FileID,
		HostAssetID:    video.HostAssetID,
		HostPlaybackID: video.HostPlaybackID,
		CreatedAt:      time.Now(),
	}).Error
}
