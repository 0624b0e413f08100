package models

import "time"

// SectionFrame is one generated illustration for a section, pinned to a
// normalized position in the section text. Frames are language-independent:
// one frame set serves every language/level of a section. Rows are created
// once per paragraph position and never mutated; the unique index over
// (section, position) is what makes re-runs resumable.
type SectionFrame struct {
	ID                string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BookSectionID     string    `gorm:"uniqueIndex:idx_section_frame_key;type:varchar(64)" json:"bookSectionId"`
	Position          int       `gorm:"uniqueIndex:idx_section_frame_key" json:"position"`
	FileID            string    `gorm:"type:varchar(64)" json:"fileId"`
	DisplayPercentage float64   `json:"displayPercentage"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (SectionFrame) TableName() string {
	return "section_frame"
}
