package models

import "time"

// File maps an object-storage key to its metadata. Audio segments, scene
// frames and final videos reference files; storage owns the bytes.
type File struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func (File) TableName() string {
	return "file"
}
