package tasks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/SweetRetry/seedkit-ai/internal/ark"
	"github.com/SweetRetry/seedkit-ai/internal/store"
)

// TaskOutput is the terminal output of a successful generation task.
type TaskOutput struct {
	AssetPath string `json:"assetPath"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func (q *Queue) runImage(ctx context.Context, task *store.TaskRow) {
	if err := q.executeImage(ctx, task); err != nil {
		slog.Error("tasks: image task failed", "task_id", task.ID, "error", err)
		if uerr := q.store.UpdateTask(task.ID, store.StatusFailed, "", "", err.Error()); uerr != nil {
			slog.Error("tasks: failed to record image task failure", "task_id", task.ID, "error", uerr)
		}
		return
	}
	slog.Info("tasks: image task completed", "task_id", task.ID)
}

func (q *Queue) executeImage(ctx context.Context, task *store.TaskRow) error {
	var params ImageParams
	if err := json.Unmarshal([]byte(task.Input), &params); err != nil {
		return fmt.Errorf("invalid task input JSON: %w", err)
	}
	if params.Prompt == "" {
		return errors.New("missing prompt in task input")
	}
	if params.Model == "" {
		params.Model = DefaultImageModel
	}

	if err := q.store.UpdateTask(task.ID, store.StatusRunning, "", "", ""); err != nil {
		return err
	}

	resp, err := q.ark.GenerateImage(ctx, &ark.ImageGenRequest{
		Model:          params.Model,
		Prompt:         params.Prompt,
		Size:           params.Size,
		N:              1,
		ResponseFormat: "b64_json",
		Watermark:      false,
	})
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		return errors.New("empty image generation response")
	}
	item := resp.Data[0]
	if item.B64JSON == "" {
		return errors.New("no b64_json in image response")
	}

	raw, err := base64.StdEncoding.DecodeString(item.B64JSON)
	if err != nil {
		return fmt.Errorf("failed to decode base64 image: %w", err)
	}

	fileName := uuid.New().String() + ".png"
	assetPath, err := q.writeAsset(task.ProjectID, fileName, raw)
	if err != nil {
		return err
	}

	width, height := parseDimensions(item.Size)

	output, err := json.Marshal(TaskOutput{AssetPath: assetPath, Width: width, Height: height})
	if err != nil {
		return err
	}
	if err := q.store.UpdateTask(task.ID, store.StatusDone, string(output), "", ""); err != nil {
		return err
	}

	asset := &store.AssetRow{
		ID:        uuid.New().String(),
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		Kind:      store.KindImage,
		FilePath:  assetPath,
		FileName:  fileName,
		Prompt:    params.Prompt,
		Model:     params.Model,
		Width:     width,
		Height:    height,
		FileSize:  int64(len(raw)),
		Source:    "generated",
		CreatedAt: task.CreatedAt,
	}
	if err := q.store.InsertAsset(asset); err != nil {
		slog.Error("tasks: failed to insert asset record", "task_id", task.ID, "error", err)
	}
	return nil
}

// writeAsset stores raw bytes under {projectsDir}/{projectID}/assets/{fileName}
// and returns the absolute path.
func (q *Queue) writeAsset(projectID, fileName string, raw []byte) (string, error) {
	assetDir := filepath.Join(q.projectsDir, projectID, "assets")
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return "", err
	}
	assetPath := filepath.Join(assetDir, fileName)
	if err := os.WriteFile(assetPath, raw, 0o644); err != nil {
		return "", err
	}
	return assetPath, nil
}

// parseDimensions reads a "WxH" size string; anything else falls back to the
// 2K square default.
func parseDimensions(size string) (int, int) {
	parts := strings.Split(size, "x")
	if len(parts) == 2 {
		w, werr := strconv.Atoi(parts[0])
		h, herr := strconv.Atoi(parts[1])
		if werr == nil && herr == nil {
			return w, h
		}
	}
	return 2048, 2048
}
