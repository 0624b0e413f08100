package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"LinguaReel-server/config"

	"github.com/hibiken/asynq"
)

const (
	TypeGenerateTask = "task:generate"
)

type TaskPayload struct {
	TaskID string `json:"task_id"`
}

var QueueClient *asynq.Client

func InitQueue() {
	QueueClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.Redis.Addr,
		Password: config.AppConfig.Redis.Password,
	})
}

// EnqueueTask queues one pipeline invocation. Retries are safe: generation
// stages skip already-persisted positions, so a retried task resumes rather
// than duplicating provider calls.
func EnqueueTask(taskID string) error {
	payload, err := json.Marshal(TaskPayload{TaskID: taskID})
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	task := asynq.NewTask(TypeGenerateTask, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute), // external generation is slow
		asynq.Retention(24*time.Hour),
	)

	info, err := QueueClient.Enqueue(task)
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}

	log.Printf("[queue] task enqueued: id=%s task_id=%s", info.ID, taskID)
	return nil
}
