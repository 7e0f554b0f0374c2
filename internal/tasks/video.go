package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SweetRetry/seedkit-ai/internal/ark"
	"github.com/SweetRetry/seedkit-ai/internal/store"
)

func (q *Queue) runVideo(ctx context.Context, task *store.TaskRow) {
	if err := q.executeVideo(ctx, task); err != nil {
		slog.Error("tasks: video task failed", "task_id", task.ID, "error", err)
		if uerr := q.store.UpdateTask(task.ID, store.StatusFailed, "", "", err.Error()); uerr != nil {
			slog.Error("tasks: failed to record video task failure", "task_id", task.ID, "error", uerr)
		}
		return
	}
	slog.Info("tasks: video task completed", "task_id", task.ID)
}

func (q *Queue) executeVideo(ctx context.Context, task *store.TaskRow) error {
	var params VideoParams
	if err := json.Unmarshal([]byte(task.Input), &params); err != nil {
		return fmt.Errorf("invalid task input JSON: %w", err)
	}
	if params.Prompt == "" {
		return errors.New("missing prompt in task input")
	}
	if params.Model == "" {
		params.Model = DefaultVideoModel
	}

	if err := q.store.UpdateTask(task.ID, store.StatusRunning, "", "", ""); err != nil {
		return err
	}

	// Step 1: create the remote task, unless a previous run already did.
	// A resumed task with a persisted handle re-attaches to the remote job
	// instead of paying for a duplicate generation.
	arkTaskID := task.ArkTaskID
	if arkTaskID == "" {
		var err error
		arkTaskID, err = q.ark.CreateVideoTask(ctx, &ark.VideoGenRequest{
			Model: params.Model,
			Content: []ark.VideoContentItem{
				{Type: "text", Text: params.Prompt},
			},
			Resolution: params.Resolution,
			Ratio:      params.Ratio,
			Duration:   params.Duration,
			Watermark:  false,
		})
		if err != nil {
			return err
		}
		// Persist the handle before the first poll so a crash here still
		// finds it on resume.
		if err := q.store.UpdateTask(task.ID, store.StatusRunning, "", arkTaskID, ""); err != nil {
			return err
		}
	} else {
		slog.Info("tasks: re-attaching to remote video task", "task_id", task.ID, "ark_task_id", arkTaskID)
	}

	// Step 2: poll for completion.
	videoURL, err := q.pollVideo(ctx, arkTaskID)
	if err != nil {
		return err
	}

	// Step 3: download and store the result.
	raw, err := q.ark.Download(ctx, videoURL)
	if err != nil {
		return fmt.Errorf("failed to download video: %w", err)
	}

	fileName := uuid.New().String() + ".mp4"
	assetPath, err := q.writeAsset(task.ProjectID, fileName, raw)
	if err != nil {
		return err
	}

	output, err := json.Marshal(TaskOutput{AssetPath: assetPath, Width: 1280, Height: 720})
	if err != nil {
		return err
	}
	if err := q.store.UpdateTask(task.ID, store.StatusDone, string(output), arkTaskID, ""); err != nil {
		return err
	}

	asset := &store.AssetRow{
		ID:        uuid.New().String(),
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
		Kind:      store.KindVideo,
		FilePath:  assetPath,
		FileName:  fileName,
		Prompt:    params.Prompt,
		Model:     params.Model,
		Width:     1280,
		Height:    720,
		FileSize:  int64(len(raw)),
		Source:    "generated",
		CreatedAt: task.CreatedAt,
	}
	if err := q.store.InsertAsset(asset); err != nil {
		slog.Error("tasks: failed to insert asset record", "task_id", task.ID, "error", err)
	}
	return nil
}

// pollVideo polls the remote task until it succeeds, fails, or the overall
// poll timeout is hit. Returns the result video URL.
func (q *Queue) pollVideo(ctx context.Context, arkTaskID string) (string, error) {
	start := time.Now()
	for {
		if time.Since(start) > q.pollTimeout {
			return "", fmt.Errorf("video generation timed out after %ds (ark_task: %s)",
				int(q.pollTimeout.Seconds()), arkTaskID)
		}

		select {
		case <-time.After(q.pollInterval):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		status, err := q.ark.GetVideoTask(ctx, arkTaskID)
		if err != nil {
			return "", err
		}
		switch status.Status {
		case "succeeded":
			if status.Content == nil || status.Content.VideoURL == "" {
				return "", errors.New("succeeded but no video URL")
			}
			return status.Content.VideoURL, nil
		case "failed", "expired", "cancelled":
			msg := "unknown error"
			if status.Error != nil && status.Error.Message != "" {
				msg = status.Error.Message
			}
			return "", fmt.Errorf("video task %s: %s (ark_task: %s)", status.Status, msg, arkTaskID)
		case "":
			slog.Warn("tasks: poll returned no status", "ark_task_id", arkTaskID)
		default:
			slog.Info("tasks: polling video task", "ark_task_id", arkTaskID, "status", status.Status)
		}
	}
}
