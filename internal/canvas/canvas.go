// Package canvas defines the wire contract for canvas document operations.
//
// The canvas document itself lives in the client; this package only owns the
// shapes exchanged over the bridge and the websocket channel. Field names are
// part of the protocol and must not change.
package canvas

// ReadParams selects what a canvas_read should return.
type ReadParams struct {
	// Scope entries: "all", "nodes", "edges", "selected".
	Scope []string `json:"scope"`
	// Node IDs to retrieve in detail (required when scope includes "nodes").
	NodeIDs []string `json:"node_ids,omitempty"`
	// Edge IDs to retrieve (required when scope includes "edges").
	EdgeIDs []string `json:"edge_ids,omitempty"`
}

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Operation discriminator values.
const (
	OpAddNode    = "add_node"
	OpUpdateNode = "update_node"
	OpDelete     = "delete"
	OpAddEdge    = "add_edge"
)

// Operation is a single canvas batch operation. Op selects which of the
// remaining fields apply; unused fields stay empty on the wire.
type Operation struct {
	Op string `json:"op"`

	// add_node
	NodeType       string    `json:"type,omitempty"`
	Title          string    `json:"title,omitempty"`
	Position       *Position `json:"position,omitempty"`
	InitialContent string    `json:"initialContent,omitempty"`
	URL            string    `json:"url,omitempty"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
	// Ref names a node created in this batch so a later add_edge can
	// reference it as source or target.
	Ref string `json:"ref,omitempty"`

	// update_node
	NodeID      string `json:"nodeId,omitempty"`
	NewContent  string `json:"newContent,omitempty"`
	NewImageURL string `json:"newImageUrl,omitempty"`
	NewVideoURL string `json:"newVideoUrl,omitempty"`

	// delete
	NodeIDs []string `json:"nodeIds,omitempty"`
	EdgeIDs []string `json:"edgeIds,omitempty"`

	// add_edge
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// BatchParams is an ordered list of operations applied atomically by the
// canvas client.
type BatchParams struct {
	Operations []Operation `json:"operations"`
}

// UpdateNodeMedia builds the update_node operation pushed when a generation
// task completes for a node.
func UpdateNodeMedia(nodeID, imageURL, videoURL string, width, height int) Operation {
	return Operation{
		Op:          OpUpdateNode,
		NodeID:      nodeID,
		NewImageURL: imageURL,
		NewVideoURL: videoURL,
		Width:       width,
		Height:      height,
	}
}
