package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusSuccess    = "finished"
	TaskStatusFailed     = "failed"

	// Pipeline task types. generate_video runs the full chain
	// (audio -> frames -> render -> publish); the others run one stage.
	TaskTypeSectionAudio  = "generate_audio"
	TaskTypeSectionFrames = "generate_frames"
	TaskTypeRenderVideo   = "render_video"
	TaskTypeSectionVideo  = "generate_video"
)

type Task struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SectionID  string         `gorm:"index;type:varchar(64)" json:"sectionId"`
	Type       string         `json:"type"`
	Status     string         `json:"status"`
	Progress   int            `json:"progress"`
	Message    string         `json:"message"`
	Parameters TaskParameters `gorm:"type:json" json:"parameters"`
	Result     TaskResult     `gorm:"type:json" json:"result"`
	Error      string         `json:"error"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type TaskParameters struct {
	LanguageID string `json:"language_id"`
	CefrLevel  string `json:"cefr_level"`
}

type TaskResult struct {
	ResourceType string `json:"resource_type"` // e.g. "video"
	ResourceID   string `json:"resource_id"`   // file id in object storage
	PlaybackID   string `json:"playback_id"`
}

// driver.Valuer: Go struct -> JSON column.
func (p TaskParameters) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// sql.Scanner: JSON column -> Go struct.
func (p *TaskParameters) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, p)
}

func (r TaskResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *TaskResult) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("failed to unmarshal JSON value:", value))
	}
	return json.Unmarshal(bytes, r)
}

func (Task) TableName() string {
	return "task"
}

func CreateTask(db *gorm.DB, t *Task) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return db.Create(t).Error
}

func GetTaskByID(db *gorm.DB, id string) (*Task, error) {
	var t Task
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatus transitions the task and stamps started/finished times.
func (t *Task) UpdateStatus(db *gorm.DB, status string, result *TaskResult, message string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if message != "" {
		updates["message"] = message
	}
	if result != nil {
		b, _ := json.Marshal(result)
		updates["result"] = b
	}
	switch status {
	case TaskStatusProcessing:
		updates["started_at"] = now
	case TaskStatusSuccess, TaskStatusFailed:
		updates["finished_at"] = now
		if status == TaskStatusSuccess {
			updates["progress"] = 100
		}
	}
	return db.Model(t).Updates(updates).Error
}

// UpdateProgress records coarse stage progress (0-100) and a human message.
func (t *Task) UpdateProgress(db *gorm.DB, progress int, message string) error {
	return db.Model(t).Updates(map[string]interface{}{
		"progress":   progress,
		"message":    message,
		"updated_at": time.Now(),
	}).Error
}

func (t *Task) SetError(db *gorm.DB, err error) error {
	return db.Model(t).Updates(map[string]interface{}{
		"status":      TaskStatusFailed,
		"error":       err.Error(),
		"finished_at": time.Now(),
		"updated_at":  time.Now(),
	}).Error
}
