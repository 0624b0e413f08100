package api

import (
	"errors"
	"sync"
	"testing"
	"time"

	"LinguaReel-server/models"
)

// fakeProgressConn stands in for a websocket connection: writes are recorded,
// and ReadMessage blocks until the client side is closed.
type fakeProgressConn struct {
	mu     sync.Mutex
	writes []interface{}
	closed chan struct{}
}

func newFakeProgressConn() *fakeProgressConn {
	return &fakeProgressConn{closed: make(chan struct{})}
}

func (c *fakeProgressConn) WriteJSON(v interface{}) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeProgressConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("connection closed")
}

func (c *fakeProgressConn) lastWrite() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return nil
	}
	return c.writes[len(c.writes)-1]
}

func TestStreamTaskProgressStopsWhenClientCloses(t *testing.T) {
	conn := newFakeProgressConn()
	// The task never progresses, so no status change ever forces a write.
	fetch := func() (*models.Task, error) {
		return &models.Task{ID: "t1", Status: models.TaskStatusProcessing, Progress: 10}, nil
	}

	done := make(chan struct{})
	go func() {
		streamTaskProgress(conn, fetch, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	close(conn.closed)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after the client closed")
	}
}

func TestStreamTaskProgressStopsOnTerminalStatus(t *testing.T) {
	conn := newFakeProgressConn()
	defer close(conn.closed)

	var mu sync.Mutex
	calls := 0
	fetch := func() (*models.Task, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls >= 2 {
			return &models.Task{ID: "t1", Status: models.TaskStatusSuccess, Progress: 100}, nil
		}
		return &models.Task{ID: "t1", Status: models.TaskStatusProcessing, Progress: 10}, nil
	}

	done := make(chan struct{})
	go func() {
		streamTaskProgress(conn, fetch, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop at the terminal status")
	}

	last, ok := conn.lastWrite().(*models.Task)
	if !ok {
		t.Fatalf("last write was %T, want the task", conn.lastWrite())
	}
	if last.Status != models.TaskStatusSuccess {
		t.Errorf("last pushed status = %q, want %q", last.Status, models.TaskStatusSuccess)
	}
}

func TestStreamTaskProgressUnknownTask(t *testing.T) {
	conn := newFakeProgressConn()
	defer close(conn.closed)

	fetch := func() (*models.Task, error) {
		return nil, errors.New("record not found")
	}

	streamTaskProgress(conn, fetch, time.Millisecond)

	if len(conn.writes) != 1 {
		t.Fatalf("got %d writes, want 1 error payload", len(conn.writes))
	}
}
