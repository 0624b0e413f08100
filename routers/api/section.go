package api

import (
	"net/http"

	"LinguaReel-server/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListSections: GET /v1/api/sections?book_id=...
func ListSections(c *gin.Context) {
	sections, err := models.ListSections(models.DB, c.Query("book_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// GetSection: GET /v1/api/sections/:section_id
func GetSection(c *gin.Context) {
	section, err := models.GetSectionByID(models.DB, c.Param("section_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "section not found: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": section})
}

type upsertTranslationRequest struct {
	LanguageID string `json:"language_id" binding:"required"`
	CefrLevel  string `json:"cefr_level" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// UpsertTranslation: PUT /v1/api/sections/:section_id/translations
// Seeds or replaces the translated text the pipeline narrates.
func UpsertTranslation(c *gin.Context) {
	sectionID := c.Param("section_id")

	var req upsertTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := models.GetSectionByID(models.DB, sectionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "section not found: " + err.Error()})
		return
	}

	t := models.SectionTranslation{
		ID:            uuid.NewString(),
		BookSectionID: sectionID,
		LanguageID:    req.LanguageID,
		CefrLevel:     req.CefrLevel,
		Content:       req.Content,
	}
	if err := models.UpsertTranslation(models.DB, &t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"translation": t})
}
