package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

// =============================================================================
// TASK EVENTS
// =============================================================================

type TaskSubmittedPayload struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
	Kind      string `json:"type"`
}

func (TaskSubmittedPayload) EventType() EventType { return EventTaskSubmitted }

// TaskCompletePayload is delivered to completion sinks and to canvas clients
// when a task reaches a terminal status.
type TaskCompletePayload struct {
	TaskID    string         `json:"taskId"`
	ProjectID string         `json:"projectId"`
	Kind      string         `json:"type"`
	Status    string         `json:"status"`
	Output    map[string]any `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	NodeID    string         `json:"nodeId,omitempty"`
}

func (TaskCompletePayload) EventType() EventType { return EventTaskComplete }

// =============================================================================
// CANVAS EVENTS
// =============================================================================

// CanvasReadRequestPayload asks the canvas client to report its current state.
type CanvasReadRequestPayload struct {
	RequestID string          `json:"requestId"`
	Params    json.RawMessage `json:"params,omitempty"`
}

func (CanvasReadRequestPayload) EventType() EventType { return EventCanvasRead }

// CanvasBatchRequestPayload asks the canvas client to apply a batch of
// operations.
type CanvasBatchRequestPayload struct {
	RequestID string          `json:"requestId"`
	Params    json.RawMessage `json:"params"`
}

func (CanvasBatchRequestPayload) EventType() EventType { return EventCanvasBatch }

// CanvasResponsePayload carries the canvas client's answer back to the
// pending bridge request.
type CanvasResponsePayload struct {
	RequestID string `json:"requestId"`
	Result    string `json:"result"`
}

func (CanvasResponsePayload) EventType() EventType { return EventCanvasResponse }

// =============================================================================
// TYPED EVENT CONSTRUCTORS
// =============================================================================

func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// =============================================================================
// TYPED PAYLOAD EXTRACTORS
// =============================================================================

func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

func GetTaskCompletePayload(e Event) (TaskCompletePayload, bool) {
	return ExtractPayload[TaskCompletePayload](e)
}

func GetCanvasResponsePayload(e Event) (CanvasResponsePayload, bool) {
	return ExtractPayload[CanvasResponsePayload](e)
}
