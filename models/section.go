package models

import (
	"time"

	"gorm.io/gorm"
)

// BookSection is a chapter-like subdivision of a source book. Translation and
// video generation both operate on one section at a time.
type BookSection struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BookID    string    `gorm:"index" json:"bookId"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	Content   string    `gorm:"type:longtext" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BookSection) TableName() string {
	return "book_section"
}

// SectionTranslation holds a section's text translated into one language at
// one CEFR level. The pipeline reads it; the translation job writes it.
type SectionTranslation struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	BookSectionID string    `gorm:"uniqueIndex:idx_translation_key;type:varchar(64)" json:"bookSectionId"`
	LanguageID    string    `gorm:"uniqueIndex:idx_translation_key;type:varchar(8)" json:"languageId"`
	CefrLevel     string    `gorm:"uniqueIndex:idx_translation_key;type:varchar(4)" json:"cefrLevel"`
	Content       string    `gorm:"type:longtext" json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (SectionTranslation) TableName() string {
	return "book_section_translation"
}

func GetSectionByID(db *gorm.DB, sectionID string) (*BookSection, error) {
	var section BookSection
	if err := db.First(&section, "id = ?", sectionID).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func ListSections(db *gorm.DB, bookID string) ([]BookSection, error) {
	var sections []BookSection
	q := db.Order("position ASC")
	if bookID != "" {
		q = q.Where("book_id = ?", bookID)
	}
	if err := q.Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func UpsertTranslation(db *gorm.DB, t *SectionTranslation) error {
	now := time.Now()
	var existing SectionTranslation
	err := db.Where(
		"book_section_id = ? AND language_id = ? AND cefr_level = ?",
		t.BookSectionID, t.LanguageID, t.CefrLevel,
	).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		t.CreatedAt = now
		t.UpdatedAt = now
		return db.Create(t).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&existing).Updates(map[string]interface{}{
		"content":    t.Content,
		"updated_at": now,
	}).Error
}
