package models

import "time"

// SectionAudio is one narrated sentence of a section's translation. Rows are
// created once by audio generation and never mutated; the unique index over
// (section, language, level, position) is what makes re-runs resumable.
type SectionAudio struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BookSectionID string    `gorm:"uniqueIndex:idx_section_audio_key;type:varchar(64)" json:"bookSectionId"`
	LanguageID    string    `gorm:"uniqueIndex:idx_section_audio_key;type:varchar(8)" json:"languageId"`
	CefrLevel     string    `gorm:"uniqueIndex:idx_section_audio_key;type:varchar(4)" json:"cefrLevel"`
	Position      int       `gorm:"uniqueIndex:idx_section_audio_key" json:"position"`
	FileID        string    `gorm:"type:varchar(64)" json:"fileId"`
	DurationMs    int       `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (SectionAudio) TableName() string {
	return "section_audio"
}
