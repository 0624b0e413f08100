package api

import (
	"net/http"
	"time"

	"LinguaReel-server/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// taskConn is the subset of a websocket connection the progress stream uses.
type taskConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
}

// TaskProgressWebSocket pushes task status/progress changes to the client.
// The DB is the source of truth: the processor writes progress there and
// this handler polls it, pushing only on change.
func TaskProgressWebSocket(c *gin.Context) {
	taskID := c.Param("task_id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "websocket upgrade failed"})
		return
	}
	defer conn.Close()

	streamTaskProgress(conn, func() (*models.Task, error) {
		return models.GetTaskByID(models.DB, taskID)
	}, time.Second)
}

func streamTaskProgress(conn taskConn, fetch func() (*models.Task, error), interval time.Duration) {
	t, err := fetch()
	if err != nil {
		_ = conn.WriteJSON(map[string]interface{}{"error": "task not found: " + err.Error()})
		return
	}
	_ = conn.WriteJSON(t)
	if t.Status == models.TaskStatusSuccess || t.Status == models.TaskStatusFailed {
		return
	}

	// Read pump: the client never sends data, but reading is what surfaces a
	// close frame while the task is still running. Without it a quiet task
	// would hold this goroutine until a terminal status forced a write.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prevStatus := t.Status
	prevProgress := t.Progress

	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
		}

		cur, err := fetch()
		if err != nil {
			continue
		}

		if cur.Status != prevStatus || cur.Progress != prevProgress {
			if err := conn.WriteJSON(cur); err != nil {
				return
			}
			prevStatus = cur.Status
			prevProgress = cur.Progress
		}

		if cur.Status == models.TaskStatusSuccess || cur.Status == models.TaskStatusFailed {
			_ = conn.WriteJSON(cur)
			return
		}
	}
}

// GetTaskStatus: GET /v1/api/tasks/:task_id
func GetTaskStatus(c *gin.Context) {
	taskID := c.Param("task_id")
	t, err := models.GetTaskByID(models.DB, taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}
