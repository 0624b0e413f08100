package api

import (
	"net/http"

	"LinguaReel-server/models"
	"LinguaReel-server/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type generateRequest struct {
	LanguageID string `json:"language_id" binding:"required"`
	CefrLevel  string `json:"cefr_level" binding:"required"`
}

// GenerateSectionAudio: POST /v1/api/sections/:section_id/audio
func GenerateSectionAudio(c *gin.Context) {
	enqueueGeneration(c, models.TaskTypeSectionAudio, "section audio generation task created")
}

// GenerateSectionFrames: POST /v1/api/sections/:section_id/frames
func GenerateSectionFrames(c *gin.Context) {
	enqueueGeneration(c, models.TaskTypeSectionFrames, "scene frame generation task created")
}

// GenerateSectionVideo: POST /v1/api/sections/:section_id/video
// Runs the full pipeline: narration, frames, render, publish.
func GenerateSectionVideo(c *gin.Context) {
	enqueueGeneration(c, models.TaskTypeSectionVideo, "section video generation task created")
}

func enqueueGeneration(c *gin.Context, taskType, message string) {
	sectionID := c.Param("section_id")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := models.GetSectionByID(models.DB, sectionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "section not found: " + err.Error()})
		return
	}

	task := models.Task{
		ID:        uuid.NewString(),
		SectionID: sectionID,
		Type:      taskType,
		Status:    models.TaskStatusPending,
		Progress:  0,
		Message:   message,
		Parameters: models.TaskParameters{
			LanguageID: req.LanguageID,
			CefrLevel:  req.CefrLevel,
		},
	}
	if err := models.CreateTask(models.DB, &task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := service.EnqueueTask(task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task": task})
}
