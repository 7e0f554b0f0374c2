// Package mcp exposes the generation queue and the canvas bridge as MCP
// tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SweetRetry/seedkit-ai/internal/bridge"
	"github.com/SweetRetry/seedkit-ai/internal/canvas"
	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

const appNotRunning = "SeedCanvas app is not running. Please launch the desktop app first."

// Host owns the tool implementations. The bridge client is nil when the
// desktop app is not running; every tool reports that instead of failing
// silently.
type Host struct {
	queue  *tasks.Queue
	client *bridge.Client
}

// NewServer builds the MCP server with all tools registered. client may be
// nil (app not running).
func NewServer(queue *tasks.Queue, client *bridge.Client) *mcpsdk.Server {
	h := &Host{queue: queue, client: client}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "seedcanvas",
		Version: "0.1.0",
	}, &mcpsdk.ServerOptions{
		Instructions: serverInstructions,
	})

	server.AddTool(canvasReadTool(), h.handleCanvasRead)
	server.AddTool(canvasBatchTool(), h.handleCanvasBatch)
	server.AddTool(generateImageTool(), h.handleGenerateImage)
	server.AddTool(generateVideoTool(), h.handleGenerateVideo)
	server.AddTool(taskStatusTool(), h.handleTaskStatus)

	return server
}

// Run serves the MCP protocol over stdio until the context is cancelled.
func Run(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func jsonResult(v any) *mcpsdk.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to serialize result: " + err.Error())
	}
	return textResult(string(data))
}

func (h *Host) handleCanvasRead(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if h.client == nil {
		return errorResult(appNotRunning), nil
	}
	var params canvas.ReadParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid arguments: " + err.Error()), nil
	}

	// The bridge wire format uses camelCase ID lists.
	payload := map[string]any{
		"scope":   params.Scope,
		"nodeIds": params.NodeIDs,
		"edgeIds": params.EdgeIDs,
	}
	result, err := h.client.CanvasRead(payload)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(result), nil
}

func (h *Host) handleCanvasBatch(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if h.client == nil {
		return errorResult(appNotRunning), nil
	}
	var params canvas.BatchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid arguments: " + err.Error()), nil
	}

	// The operations array itself is the wire params.
	result, err := h.client.CanvasBatch(params.Operations)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(result), nil
}

func (h *Host) handleGenerateImage(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if h.client == nil {
		return errorResult(appNotRunning), nil
	}
	var params tasks.ImageParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid arguments: " + err.Error()), nil
	}

	taskID, err := h.queue.SubmitImage(params)
	if err != nil {
		return errorResult("Failed to submit image task: " + err.Error()), nil
	}
	return jsonResult(map[string]string{
		"taskId":  taskID,
		"status":  "submitted",
		"message": "Image generation task submitted. Use task_status to check progress.",
	}), nil
}

func (h *Host) handleGenerateVideo(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if h.client == nil {
		return errorResult(appNotRunning), nil
	}
	var params tasks.VideoParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid arguments: " + err.Error()), nil
	}

	taskID, err := h.queue.SubmitVideo(params)
	if err != nil {
		return errorResult("Failed to submit video task: " + err.Error()), nil
	}
	return jsonResult(map[string]string{
		"taskId":  taskID,
		"status":  "submitted",
		"message": "Video generation task submitted. Use task_status to check progress.",
	}), nil
}

type taskStatusParams struct {
	TaskID string `json:"task_id"`
}

func (h *Host) handleTaskStatus(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if h.client == nil {
		return errorResult(appNotRunning), nil
	}
	var params taskStatusParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("invalid arguments: " + err.Error()), nil
	}

	task, err := h.queue.GetTask(params.TaskID)
	if err != nil {
		return errorResult("Failed to query task: " + err.Error()), nil
	}
	if task == nil {
		return errorResult(fmt.Sprintf("Task '%s' not found", params.TaskID)), nil
	}

	var output any
	if task.Output != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(task.Output), &parsed); err == nil {
			output = parsed
		}
	}
	return jsonResult(map[string]any{
		"taskId":    task.ID,
		"projectId": task.ProjectID,
		"type":      task.Kind,
		"status":    task.Status,
		"output":    output,
		"error":     orNil(task.Error),
		"createdAt": task.CreatedAt,
		"updatedAt": task.UpdatedAt,
	}), nil
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func modelList(models []string) string {
	return strings.Join(models, ", ")
}
