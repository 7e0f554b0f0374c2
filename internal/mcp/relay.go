package mcp

import (
	"encoding/json"
	"log/slog"

	"github.com/SweetRetry/seedkit-ai/internal/bridge"
	"github.com/SweetRetry/seedkit-ai/internal/canvas"
	"github.com/SweetRetry/seedkit-ai/internal/store"
	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

// RegisterCompletionRelay wires a completion sink that pushes finished
// generation results onto their canvas node through the bridge. Only tasks
// that completed successfully and were submitted with a node_id are pushed.
func RegisterCompletionRelay(queue *tasks.Queue, client *bridge.Client) {
	queue.OnComplete(func(task *store.TaskRow) {
		if task.Status != store.StatusDone {
			return
		}

		var input struct {
			NodeID string `json:"node_id"`
		}
		if err := json.Unmarshal([]byte(task.Input), &input); err != nil || input.NodeID == "" {
			return
		}
		var output tasks.TaskOutput
		if err := json.Unmarshal([]byte(task.Output), &output); err != nil || output.AssetPath == "" {
			return
		}

		op := buildUpdateOp(task.Kind, input.NodeID, output)
		if _, err := client.CanvasBatch([]canvas.Operation{op}); err != nil {
			slog.Warn("mcp: failed to push result to node", "node_id", input.NodeID, "error", err)
			return
		}
		slog.Info("mcp: pushed task result to node", "node_id", input.NodeID, "task_id", task.ID)
	})
}

func buildUpdateOp(kind, nodeID string, output tasks.TaskOutput) canvas.Operation {
	width, height := output.Width, output.Height
	if kind == store.KindImage {
		if width == 0 {
			width = 2048
		}
		if height == 0 {
			height = 2048
		}
		return canvas.UpdateNodeMedia(nodeID, output.AssetPath, "", width, height)
	}
	if width == 0 {
		width = 1280
	}
	if height == 0 {
		height = 720
	}
	return canvas.UpdateNodeMedia(nodeID, "", output.AssetPath, width, height)
}
