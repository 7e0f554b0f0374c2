package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SweetRetry/seedkit-ai/internal/ark"
	"github.com/SweetRetry/seedkit-ai/internal/bridge"
	"github.com/SweetRetry/seedkit-ai/internal/events"
	"github.com/SweetRetry/seedkit-ai/internal/store"
	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

func newTestQueue(t *testing.T) *tasks.Queue {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	arkServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{
				"b64_json": base64.StdEncoding.EncodeToString([]byte("png")),
				"size":     "1728x2304",
			}},
		})
	}))
	t.Cleanup(arkServer.Close)

	return tasks.NewQueue(st, ark.NewClient(arkServer.URL, "test-key"), nil, t.TempDir())
}

// newTestBridge starts a bridge server whose canvas requests are answered by
// respond, and returns a connected client.
func newTestBridge(t *testing.T, respond func(e events.Event) string) *bridge.Client {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	socketPath := filepath.Join(t.TempDir(), "mcp.sock")
	server := bridge.NewServer(socketPath, bus)
	if err := server.Start(); err != nil {
		t.Fatalf("failed to start bridge: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	bus.Subscribe(func(e events.Event) {
		var requestID string
		if p, ok := events.ExtractPayload[events.CanvasReadRequestPayload](e); ok && e.Type == events.EventCanvasRead {
			requestID = p.RequestID
		} else if p, ok := events.ExtractPayload[events.CanvasBatchRequestPayload](e); ok {
			requestID = p.RequestID
		}
		bus.Publish(events.NewTypedEvent(events.SourceWS, events.CanvasResponsePayload{
			RequestID: requestID,
			Result:    respond(e),
		}))
	}, events.EventCanvasRead, events.EventCanvasBatch)

	client, err := bridge.Dial(socketPath)
	if err != nil {
		t.Fatalf("failed to dial bridge: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func callTool(t *testing.T, handler mcpsdk.ToolHandler, args string) *mcpsdk.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), &mcpsdk.CallToolRequest{
		Params: &mcpsdk.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	})
	if err != nil {
		t.Fatalf("tool handler returned protocol error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestToolsRequireRunningApp(t *testing.T) {
	h := &Host{queue: newTestQueue(t), client: nil}

	handlers := map[string]mcpsdk.ToolHandler{
		"canvas_read":    h.handleCanvasRead,
		"canvas_batch":   h.handleCanvasBatch,
		"generate_image": h.handleGenerateImage,
		"generate_video": h.handleGenerateVideo,
		"task_status":    h.handleTaskStatus,
	}
	for name, handler := range handlers {
		result := callTool(t, handler, `{}`)
		if !result.IsError {
			t.Errorf("%s: expected error without app connection", name)
			continue
		}
		if resultText(t, result) != appNotRunning {
			t.Errorf("%s: unexpected message: %s", name, resultText(t, result))
		}
	}
}

func TestGenerateImageAndTaskStatus(t *testing.T) {
	queue := newTestQueue(t)
	client := newTestBridge(t, func(events.Event) string { return "{}" })
	h := &Host{queue: queue, client: client}

	result := callTool(t, h.handleGenerateImage,
		`{"project_id":"p1","prompt":"a cat"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	var submitted map[string]string
	if err := json.Unmarshal([]byte(resultText(t, result)), &submitted); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	if submitted["status"] != "submitted" || submitted["taskId"] == "" {
		t.Fatalf("unexpected result: %v", submitted)
	}

	queue.Wait()

	result = callTool(t, h.handleTaskStatus, `{"task_id":"`+submitted["taskId"]+`"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	var status map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &status); err != nil {
		t.Fatalf("failed to parse status: %v", err)
	}
	if status["status"] != "done" {
		t.Errorf("expected done, got %v (error: %v)", status["status"], status["error"])
	}
	output, ok := status["output"].(map[string]any)
	if !ok {
		t.Fatalf("expected output object, got %v", status["output"])
	}
	if output["width"] != 1728.0 || output["height"] != 2304.0 {
		t.Errorf("unexpected output: %v", output)
	}
}

func TestGenerateImageValidationError(t *testing.T) {
	h := &Host{
		queue:  newTestQueue(t),
		client: newTestBridge(t, func(events.Event) string { return "{}" }),
	}

	result := callTool(t, h.handleGenerateImage, `{"project_id":"p1","prompt":""}`)
	if !result.IsError {
		t.Fatal("expected error")
	}
	if resultText(t, result) != "Failed to submit image task: prompt must not be empty" {
		t.Errorf("unexpected message: %s", resultText(t, result))
	}
}

func TestTaskStatusNotFound(t *testing.T) {
	h := &Host{
		queue:  newTestQueue(t),
		client: newTestBridge(t, func(events.Event) string { return "{}" }),
	}

	result := callTool(t, h.handleTaskStatus, `{"task_id":"missing"}`)
	if !result.IsError {
		t.Fatal("expected error")
	}
	if resultText(t, result) != "Task 'missing' not found" {
		t.Errorf("unexpected message: %s", resultText(t, result))
	}
}

func TestCanvasReadForwardsCamelCaseIDs(t *testing.T) {
	var gotParams string
	client := newTestBridge(t, func(e events.Event) string {
		if p, ok := events.ExtractPayload[events.CanvasReadRequestPayload](e); ok {
			gotParams = string(p.Params)
		}
		return `{"nodes":[{"id":"n1"}]}`
	})
	h := &Host{queue: newTestQueue(t), client: client}

	result := callTool(t, h.handleCanvasRead, `{"scope":["nodes"],"node_ids":["n1"]}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if resultText(t, result) != `{"nodes":[{"id":"n1"}]}` {
		t.Errorf("unexpected result: %s", resultText(t, result))
	}
	if !strings.Contains(gotParams, `"nodeIds":["n1"]`) {
		t.Errorf("expected camelCase wire params, got %s", gotParams)
	}
}

func TestCanvasBatchForwardsOperations(t *testing.T) {
	var gotParams string
	client := newTestBridge(t, func(e events.Event) string {
		if p, ok := events.ExtractPayload[events.CanvasBatchRequestPayload](e); ok {
			gotParams = string(p.Params)
		}
		return "applied 2 operations"
	})
	h := &Host{queue: newTestQueue(t), client: client}

	result := callTool(t, h.handleCanvasBatch, `{"operations":[
		{"op":"add_node","type":"text","title":"Note","ref":"a"},
		{"op":"add_edge","source":"a","target":"n1"}
	]}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if resultText(t, result) != "applied 2 operations" {
		t.Errorf("unexpected result: %s", resultText(t, result))
	}
	// The wire params are the bare operations array.
	if !strings.HasPrefix(strings.TrimSpace(gotParams), "[") {
		t.Errorf("expected bare operations array, got %s", gotParams)
	}
	if !strings.Contains(gotParams, `"add_edge"`) {
		t.Errorf("operations not forwarded: %s", gotParams)
	}
}

func TestCompletionRelayPushesToNode(t *testing.T) {
	queue := newTestQueue(t)

	type batchCall struct{ params string }
	calls := make(chan batchCall, 1)
	client := newTestBridge(t, func(e events.Event) string {
		if p, ok := events.ExtractPayload[events.CanvasBatchRequestPayload](e); ok {
			select {
			case calls <- batchCall{params: string(p.Params)}:
			default:
			}
		}
		return "ok"
	})

	RegisterCompletionRelay(queue, client)

	if _, err := queue.SubmitImage(tasks.ImageParams{
		ProjectID: "p1", Prompt: "a cat", NodeID: "node-7",
	}); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	queue.Wait()

	select {
	case call := <-calls:
		if !strings.Contains(call.params, `"op":"update_node"`) ||
			!strings.Contains(call.params, `"nodeId":"node-7"`) {
			t.Errorf("unexpected batch params: %s", call.params)
		}
		if !strings.Contains(call.params, `"newImageUrl"`) {
			t.Errorf("expected newImageUrl in params: %s", call.params)
		}
		if !strings.Contains(call.params, `"width":1728`) || !strings.Contains(call.params, `"height":2304`) {
			t.Errorf("expected output dimensions in params: %s", call.params)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relay push")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	server := NewServer(newTestQueue(t), nil)
	if server == nil {
		t.Fatal("expected a server")
	}
}
