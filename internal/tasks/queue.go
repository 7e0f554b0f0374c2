// Package tasks implements the generation task engine: durable submissions,
// background executors against the ARK API, crash recovery, and completion
// fan-out.
package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SweetRetry/seedkit-ai/internal/ark"
	"github.com/SweetRetry/seedkit-ai/internal/events"
	"github.com/SweetRetry/seedkit-ai/internal/store"
)

// OnComplete is invoked after a task reaches a terminal status. Used in
// headless mode to relay completions over the socket bridge instead of the
// event bus.
type OnComplete func(task *store.TaskRow)

// Queue owns the store and ARK client and spawns background executors.
// Submissions return a task ID immediately; progress is observable through
// GetTask, the bus, and completion sinks.
type Queue struct {
	store       *store.Store
	ark         *ark.Client
	bus         *events.Bus // nil in headless mode
	projectsDir string

	pollInterval time.Duration
	pollTimeout  time.Duration

	mu     sync.Mutex
	sinks  []OnComplete
	active map[string]struct{}

	wg sync.WaitGroup
}

// NewQueue creates a task queue. bus may be nil (headless MCP mode).
func NewQueue(st *store.Store, client *ark.Client, bus *events.Bus, projectsDir string) *Queue {
	return &Queue{
		store:        st,
		ark:          client,
		bus:          bus,
		projectsDir:  projectsDir,
		pollInterval: 5 * time.Second,
		pollTimeout:  600 * time.Second,
		active:       make(map[string]struct{}),
	}
}

// OnComplete registers a completion sink. A panicking sink is recovered and
// logged; it never takes down an executor.
func (q *Queue) OnComplete(cb OnComplete) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sinks = append(q.sinks, cb)
}

// SubmitImage validates and persists an image task and starts its executor.
// Returns the task ID immediately.
func (q *Queue) SubmitImage(params ImageParams) (string, error) {
	if err := params.Normalize(); err != nil {
		return "", err
	}
	task, err := q.createTask(params.ProjectID, store.KindImage, params)
	if err != nil {
		return "", err
	}
	q.emitSubmitted(task)
	q.spawn(task)
	return task.ID, nil
}

// SubmitVideo validates and persists a video task and starts its executor.
// Returns the task ID immediately.
func (q *Queue) SubmitVideo(params VideoParams) (string, error) {
	if err := params.Normalize(); err != nil {
		return "", err
	}
	task, err := q.createTask(params.ProjectID, store.KindVideo, params)
	if err != nil {
		return "", err
	}
	q.emitSubmitted(task)
	q.spawn(task)
	return task.ID, nil
}

// GetTask reads a task by ID. Returns (nil, nil) when not found.
func (q *Queue) GetTask(taskID string) (*store.TaskRow, error) {
	return q.store.GetTask(taskID)
}

// Resume restarts executors for tasks left unfinished by a previous process.
// Both pending and running tasks are picked up: a crash between insert and
// the running transition would otherwise strand the task forever.
func (q *Queue) Resume() error {
	var unfinished []*store.TaskRow
	for _, status := range []string{store.StatusPending, store.StatusRunning} {
		rows, err := q.store.ListTasksByStatus(status)
		if err != nil {
			return err
		}
		unfinished = append(unfinished, rows...)
	}
	if len(unfinished) == 0 {
		return nil
	}
	slog.Info("tasks: resuming unfinished tasks", "count", len(unfinished))
	for _, task := range unfinished {
		switch task.Kind {
		case store.KindImage, store.KindVideo:
			q.spawn(task)
		default:
			slog.Error("tasks: unknown task type during resume", "type", task.Kind, "task_id", task.ID)
		}
	}
	return nil
}

// Wait blocks until all spawned executors have finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) createTask(projectID, kind string, params any) (*store.TaskRow, error) {
	input, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	now := store.Now()
	task := &store.TaskRow{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Kind:      kind,
		Status:    store.StatusPending,
		Input:     string(input),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.store.InsertTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (q *Queue) emitSubmitted(task *store.TaskRow) {
	if q.bus == nil {
		return
	}
	q.bus.Publish(events.NewTypedEvent(events.SourceTasks, events.TaskSubmittedPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Kind:      task.Kind,
	}))
}

// spawn starts the executor for a task. Exactly one executor owns a task ID
// at a time: a second spawn for the same ID (overlapping Resume calls) is a
// no-op, so remote calls, the terminal write, and completion sinks each
// happen at most once per task.
func (q *Queue) spawn(task *store.TaskRow) {
	q.mu.Lock()
	if _, running := q.active[task.ID]; running {
		q.mu.Unlock()
		slog.Warn("tasks: executor already active, skipping spawn", "task_id", task.ID)
		return
	}
	q.active[task.ID] = struct{}{}
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer func() {
			q.mu.Lock()
			delete(q.active, task.ID)
			q.mu.Unlock()
		}()
		ctx := context.Background()

		switch task.Kind {
		case store.KindImage:
			q.runImage(ctx, task)
		case store.KindVideo:
			q.runVideo(ctx, task)
		}

		updated, err := q.store.GetTask(task.ID)
		if err != nil || updated == nil {
			slog.Error("tasks: failed to reload task after run", "task_id", task.ID, "error", err)
			return
		}
		q.notifyComplete(updated)
	}()
}

func (q *Queue) notifyComplete(task *store.TaskRow) {
	payload := completePayload(task)

	if q.bus != nil {
		q.bus.Publish(events.NewTypedEvent(events.SourceTasks, payload))
	}

	q.mu.Lock()
	sinks := make([]OnComplete, len(q.sinks))
	copy(sinks, q.sinks)
	q.mu.Unlock()

	for _, sink := range sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("tasks: completion sink panicked", "task_id", task.ID, "panic", r)
				}
			}()
			sink(task)
		}()
	}
}

// completePayload builds the completion notification for a terminal task.
// Output is the parsed output JSON; nodeId comes from the submission input.
func completePayload(task *store.TaskRow) events.TaskCompletePayload {
	payload := events.TaskCompletePayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Kind:      task.Kind,
		Status:    task.Status,
		Error:     task.Error,
	}
	if task.Output != "" {
		var out map[string]any
		if err := json.Unmarshal([]byte(task.Output), &out); err == nil {
			payload.Output = out
		}
	}
	var input struct {
		NodeID string `json:"node_id"`
	}
	if err := json.Unmarshal([]byte(task.Input), &input); err == nil {
		payload.NodeID = input.NodeID
	}
	return payload
}
