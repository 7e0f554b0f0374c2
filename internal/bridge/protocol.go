// Package bridge carries canvas requests between the MCP tool host and the
// app process over a Unix domain socket.
//
// Protocol: newline-delimited JSON.
//
//	Request:  {"id":"req-1","method":"canvas_read","params":{...}}
//	Response: {"id":"req-1","result":"..."} or {"id":"req-1","error":"..."}
//
// A response carries exactly one of result or error.
package bridge

import "encoding/json"

// Bridge methods.
const (
	MethodCanvasRead  = "canvas_read"
	MethodCanvasBatch = "canvas_batch"
)

// Request is one frame from the tool host.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is one frame back to the tool host. Exactly one of Result and
// Error is present on the wire: pointers so that an empty-string result
// still serializes as "result":"".
type Response struct {
	ID     string  `json:"id"`
	Result *string `json:"result,omitempty"`
	Error  *string `json:"error,omitempty"`
}

func resultResponse(id, result string) Response {
	return Response{ID: id, Result: &result}
}

func errorResponse(id, errMsg string) Response {
	return Response{ID: id, Error: &errMsg}
}
