package api

import (
	"net/http"

	"LinguaReel-server/models"

	"github.com/gin-gonic/gin"
)

// ListSectionAudio: GET /v1/api/sections/:section_id/audio?language_id=&cefr_level=
func ListSectionAudio(c *gin.Context) {
	var rows []models.SectionAudio
	err := models.DB.Where(
		"book_section_id = ? AND language_id = ? AND cefr_level = ?",
		c.Param("section_id"), c.Query("language_id"), c.Query("cefr_level"),
	).Order("position ASC").Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio": rows})
}

// ListSectionFrames: GET /v1/api/sections/:section_id/frames
func ListSectionFrames(c *gin.Context) {
	var rows []models.SectionFrame
	err := models.DB.Where("book_section_id = ?", c.Param("section_id")).
		Order("position ASC").Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"frames": rows})
}

// ListSectionVideos: GET /v1/api/sections/:section_id/videos
func ListSectionVideos(c *gin.Context) {
	var rows []models.SectionVideo
	err := models.DB.Where("book_section_id = ?", c.Param("section_id")).Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": rows})
}
