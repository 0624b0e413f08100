package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"LinguaReel-server/config"
	"LinguaReel-server/metrics"
	"LinguaReel-server/models"
	"LinguaReel-server/pipeline"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// Processor consumes queued generation tasks and drives the pipeline. One
// task handles one (section, language, level) triple; asynq's retry policy
// plus the pipeline's skip-if-exists checks make retried tasks resume
// instead of re-generating.
type Processor struct {
	DB       *gorm.DB
	Pipeline *pipeline.Pipeline
}

func NewProcessor(db *gorm.DB, p *pipeline.Pipeline) *Processor {
	return &Processor{DB: db, Pipeline: p}
}

func (p *Processor) StartProcessor(concurrency int) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.AppConfig.Redis.Addr,
			Password: config.AppConfig.Redis.Password,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerateTask, p.HandleGenerateTask)

	log.Printf("starting task processor with concurrency %d", concurrency)
	go func() {
		if err := srv.Run(mux); err != nil {
			log.Fatalf("could not run task processor: %v", err)
		}
	}()
}

func (p *Processor) HandleGenerateTask(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	task, err := models.GetTaskByID(p.DB, payload.TaskID)
	if err != nil {
		return fmt.Errorf("task not found: %v", err)
	}

	log.Printf("processing task %s type=%s section=%s", task.ID, task.Type, task.SectionID)
	if err := task.UpdateStatus(p.DB, models.TaskStatusProcessing, nil, ""); err != nil {
		log.Printf("status update failed: %v", err)
	}

	start := time.Now()
	result, runErr := p.runTask(ctx, task)
	metrics.StageDuration.WithLabelValues(task.Type).Observe(time.Since(start).Seconds())

	if runErr != nil {
		log.Printf("task %s failed: %v", task.ID, runErr)
		metrics.TasksProcessed.WithLabelValues(task.Type, models.TaskStatusFailed).Inc()
		if err := task.SetError(p.DB, runErr); err != nil {
			log.Printf("error update failed: %v", err)
		}
		return runErr // let asynq retry; completed positions are skipped on re-run
	}

	metrics.TasksProcessed.WithLabelValues(task.Type, models.TaskStatusSuccess).Inc()
	if err := task.UpdateStatus(p.DB, models.TaskStatusSuccess, result, ""); err != nil {
		log.Printf("status update failed: %v", err)
	}
	log.Printf("task %s completed", task.ID)
	return nil
}

func (p *Processor) runTask(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
	sectionID := task.SectionID
	languageID := task.Parameters.LanguageID
	cefrLevel := task.Parameters.CefrLevel
	if sectionID == "" || languageID == "" || cefrLevel == "" {
		return nil, fmt.Errorf("task %s missing section/language/level parameters: %w", task.ID, asynq.SkipRetry)
	}

	switch task.Type {
	case models.TaskTypeSectionAudio:
		return nil, p.Pipeline.GenerateSectionAudio(ctx, sectionID, languageID, cefrLevel)

	case models.TaskTypeSectionFrames:
		return nil, p.Pipeline.GenerateSectionFrames(ctx, sectionID, languageID, cefrLevel)

	case models.TaskTypeRenderVideo:
		localPath, err := p.Pipeline.RenderVideo(ctx, sectionID, languageID, cefrLevel)
		if err != nil {
			return nil, err
		}
		defer os.Remove(localPath)
		video, err := p.Pipeline.PublishVideo(ctx, sectionID, languageID, cefrLevel, localPath)
		if err != nil {
			return nil, err
		}
		return &models.TaskResult{
			ResourceType: "video",
			ResourceID:   video.FileID,
			PlaybackID:   video.HostPlaybackID,
		}, nil

	case models.TaskTypeSectionVideo:
		_ = task.UpdateProgress(p.DB, 10, "generating narration")
		video, err := p.Pipeline.GenerateSectionVideo(ctx, sectionID, languageID, cefrLevel)
		if err != nil {
			return nil, err
		}
		return &models.TaskResult{
			ResourceType: "video",
			ResourceID:   video.FileID,
			PlaybackID:   video.HostPlaybackID,
		}, nil

	default:
		return nil, fmt.Errorf("unknown task type %q: %w", task.Type, asynq.SkipRetry)
	}
}
