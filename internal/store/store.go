// Package store persists tasks and assets in SQLite.
//
// The database handle is owned by Store and guarded by a single mutex: every
// operation acquires it, does its work, and releases it immediately. Callers
// must never hold a reference across a slow operation (a remote call, a poll
// sleep); they re-acquire through Store for each read/write instead.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Task status values.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Task kinds.
const (
	KindImage = "image"
	KindVideo = "video"
)

// TaskRow is one row of the tasks table.
// Output is set only when status is done; Error only when status is failed.
// ArkTaskID, once set, is never cleared.
type TaskRow struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Kind      string `json:"type"` // "image" | "video"
	Status    string `json:"status"`
	Input     string `json:"input"` // JSON-serialized submission params
	Output    string `json:"output,omitempty"`
	ArkTaskID string `json:"arkTaskId,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AssetRow is one row of the assets table.
type AssetRow struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	TaskID    string `json:"taskId,omitempty"`
	Kind      string `json:"type"` // "image" | "video"
	FilePath  string `json:"filePath"`
	FileName  string `json:"fileName"`
	Prompt    string `json:"prompt,omitempty"`
	Model     string `json:"model,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Source    string `json:"source"` // "generated" | "imported"
	CreatedAt string `json:"createdAt"`
}

// Store is the mutex-guarded database handle.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// The handle is serialized behind Store.mu anyway; a single connection
	// avoids SQLITE_BUSY between the pool's connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			project_id  TEXT NOT NULL,
			type        TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending',
			input       TEXT NOT NULL,
			output      TEXT,
			ark_task_id TEXT,
			error       TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_status  ON tasks(status);

		CREATE TABLE IF NOT EXISTS assets (
			id          TEXT PRIMARY KEY,
			project_id  TEXT NOT NULL,
			task_id     TEXT,
			type        TEXT NOT NULL,
			file_path   TEXT NOT NULL,
			file_name   TEXT NOT NULL,
			prompt      TEXT,
			model       TEXT,
			width       INTEGER,
			height      INTEGER,
			file_size   INTEGER,
			source      TEXT NOT NULL DEFAULT 'generated',
			created_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assets_project ON assets(project_id);
		CREATE INDEX IF NOT EXISTS idx_assets_type ON assets(type);
		CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets(created_at);
		CREATE INDEX IF NOT EXISTS idx_assets_task_id ON assets(task_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Now returns the timestamp format used for created_at/updated_at.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// -----------------------------------------------------------------------
// Task CRUD
// -----------------------------------------------------------------------

// InsertTask persists a new task row.
func (s *Store) InsertTask(t *TaskRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, project_id, type, status, input, output, ark_task_id, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Kind, t.Status, t.Input,
		nullable(t.Output), nullable(t.ArkTaskID), nullable(t.Error),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask transitions a task's status and fills output/ark_task_id/error.
// Empty arguments leave the stored value untouched, so a handle written once
// survives every later transition.
func (s *Store) UpdateTask(id, status, output, arkTaskID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`UPDATE tasks SET
			status      = ?2,
			output      = CASE WHEN ?3 = '' THEN output ELSE ?3 END,
			ark_task_id = CASE WHEN ?4 = '' THEN ark_task_id ELSE ?4 END,
			error       = CASE WHEN ?5 = '' THEN error ELSE ?5 END,
			updated_at  = ?6
		 WHERE id = ?1`,
		id, status, output, arkTaskID, errMsg, Now(),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

const taskColumns = "id, project_id, type, status, input, output, ark_task_id, error, created_at, updated_at"

// GetTask reads a task by ID. Returns (nil, nil) when not found.
func (s *Store) GetTask(id string) (*TaskRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasksByStatus returns every task in the given status.
func (s *Store) ListTasksByStatus(status string) ([]*TaskRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT "+taskColumns+" FROM tasks WHERE status = ?", status)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// TasksForProject returns a project's tasks, newest first.
func (s *Store) TasksForProject(projectID string) ([]*TaskRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE project_id = ? ORDER BY created_at DESC", projectID)
	if err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// DeleteProjectData removes all tasks and assets for a project.
func (s *Store) DeleteProjectData(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM assets WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("delete project assets: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM tasks WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*TaskRow, error) {
	var t TaskRow
	var output, arkTaskID, errMsg sql.NullString
	err := r.Scan(&t.ID, &t.ProjectID, &t.Kind, &t.Status, &t.Input,
		&output, &arkTaskID, &errMsg, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Output = output.String
	t.ArkTaskID = arkTaskID.String
	t.Error = errMsg.String
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]*TaskRow, error) {
	var tasks []*TaskRow
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
