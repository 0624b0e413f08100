package models

import "time"

// SectionVideo is a rendered, host-registered narration video for one
// (section, language, level) triple.
type SectionVideo struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BookSectionID  string    `gorm:"uniqueIndex:idx_section_video_key;type:varchar(64)" json:"bookSectionId"`
	LanguageID     string    `gorm:"uniqueIndex:idx_section_video_key;type:varchar(8)" json:"languageId"`
	CefrLevel      string    `gorm:"uniqueIndex:idx_section_video_key;type:varchar(4)" json:"cefrLevel"`
	FileID         string    `gorm:"type:varchar(64)" json:"fileId"`
	HostAssetID    string    `json:"hostAssetId"`
	HostPlaybackID string    `json:"hostPlaybackId"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (SectionVideo) TableName() string {
	return "section_video"
}
