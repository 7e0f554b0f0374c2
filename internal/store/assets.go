package store

import (
	"database/sql"
	"fmt"
)

// AssetFilter narrows ListAssets. Zero values mean "no constraint".
type AssetFilter struct {
	ProjectID string
	Kind      string
	Limit     int
}

// AssetStats summarizes the asset library.
type AssetStats struct {
	Total      int   `json:"total"`
	Images     int   `json:"images"`
	Videos     int   `json:"videos"`
	TotalBytes int64 `json:"totalBytes"`
}

// DailyCount is one day of task submissions.
type DailyCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// UsageStats aggregates task activity for the stats panel.
type UsageStats struct {
	TotalTasks int           `json:"totalTasks"`
	Done       int           `json:"done"`
	Failed     int           `json:"failed"`
	Daily      []DailyCount  `json:"daily"` // last 30 days
	Recent     []*TaskRow    `json:"recent"`
}

// InsertAsset persists a new asset row.
func (s *Store) InsertAsset(a *AssetRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO assets (id, project_id, task_id, type, file_path, file_name, prompt, model, width, height, file_size, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, nullable(a.TaskID), a.Kind, a.FilePath, a.FileName,
		nullable(a.Prompt), nullable(a.Model), a.Width, a.Height, a.FileSize,
		a.Source, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// ListAssets returns assets matching the filter, newest first.
func (s *Store) ListAssets(f AssetFilter) ([]*AssetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, project_id, task_id, type, file_path, file_name, prompt, model, width, height, file_size, source, created_at
		FROM assets WHERE 1=1`
	var args []any
	if f.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, f.ProjectID)
	}
	if f.Kind != "" {
		query += " AND type = ?"
		args = append(args, f.Kind)
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*AssetRow
	for rows.Next() {
		var a AssetRow
		var taskID, prompt, model sql.NullString
		var width, height sql.NullInt64
		var size sql.NullInt64
		err := rows.Scan(&a.ID, &a.ProjectID, &taskID, &a.Kind, &a.FilePath, &a.FileName,
			&prompt, &model, &width, &height, &size, &a.Source, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a.TaskID = taskID.String
		a.Prompt = prompt.String
		a.Model = model.String
		a.Width = int(width.Int64)
		a.Height = int(height.Int64)
		a.FileSize = size.Int64
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}

// DeleteAsset removes an asset row. The caller deletes the file.
func (s *Store) DeleteAsset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM assets WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// GetAssetStats counts assets by kind and sums file sizes.
func (s *Store) GetAssetStats() (*AssetStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st AssetStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN type = 'image' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'video' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(file_size), 0)
		FROM assets`).Scan(&st.Total, &st.Images, &st.Videos, &st.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("asset stats: %w", err)
	}
	return &st, nil
}

// GetUsageStats aggregates task counts, a 30-day daily series, and the 20
// most recent tasks.
func (s *Store) GetUsageStats() (*UsageStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st UsageStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM tasks`).Scan(&st.TotalTasks, &st.Done, &st.Failed)
	if err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT substr(created_at, 1, 10) AS day, COUNT(*)
		FROM tasks
		WHERE created_at >= datetime('now', '-30 days')
		GROUP BY day ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("usage stats daily: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		st.Daily = append(st.Daily, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := s.db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY created_at DESC LIMIT 20")
	if err != nil {
		return nil, fmt.Errorf("usage stats recent: %w", err)
	}
	defer recent.Close()
	st.Recent, err = collectTasks(recent)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
