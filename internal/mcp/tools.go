package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SweetRetry/seedkit-ai/internal/tasks"
)

func canvasReadTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "canvas_read",
		Description: "Query the SeedCanvas canvas to get current nodes, edges, and selection state. " +
			"Scope options: 'all' (summary of all nodes/edges), 'nodes' (detail by IDs), " +
			"'edges' (by IDs), 'selected' (currently selected nodes). " +
			"Requires the SeedCanvas app to be running.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"scope": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string", "enum": []string{"all", "nodes", "edges", "selected"}},
					"description": "What to query: \"all\", \"nodes\", \"edges\", \"selected\".",
				},
				"node_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Node IDs to retrieve in detail (required when scope includes \"nodes\").",
				},
				"edge_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Edge IDs to retrieve (required when scope includes \"edges\").",
				},
			},
			"required": []string{"scope"},
		},
	}
}

func canvasBatchTool() *mcpsdk.Tool {
	position := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "number"},
			"y": map[string]any{"type": "number"},
		},
		"required": []string{"x", "y"},
	}

	operation := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"op": map[string]any{
				"type":        "string",
				"enum":        []string{"add_node", "update_node", "delete", "add_edge"},
				"description": "Operation discriminator.",
			},
			"type": map[string]any{
				"type":        "string",
				"enum":        []string{"text", "image", "video"},
				"description": "add_node: node type.",
			},
			"title":          map[string]any{"type": "string", "description": "add_node/update_node: display title."},
			"position":       position,
			"initialContent": map[string]any{"type": "string", "description": "add_node: initial text content (text nodes)."},
			"url":            map[string]any{"type": "string", "description": "add_node: URL or local file path for image/video nodes."},
			"width":          map[string]any{"type": "integer", "description": "Display width for image/video."},
			"height":         map[string]any{"type": "integer", "description": "Display height for image/video."},
			"ref": map[string]any{
				"type":        "string",
				"description": "add_node: temporary ref name, usable as source/target in add_edge within the same batch.",
			},
			"nodeId":      map[string]any{"type": "string", "description": "update_node: the ID of the node to update."},
			"newContent":  map[string]any{"type": "string", "description": "update_node: new text content pushed as a history entry."},
			"newImageUrl": map[string]any{"type": "string", "description": "update_node: new image URL pushed as a history entry."},
			"newVideoUrl": map[string]any{"type": "string", "description": "update_node: new video URL pushed as a history entry."},
			"nodeIds": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "delete: node IDs to delete.",
			},
			"edgeIds": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "delete: edge IDs to delete.",
			},
			"source": map[string]any{"type": "string", "description": "add_edge: source node ID or ref name."},
			"target": map[string]any{"type": "string", "description": "add_edge: target node ID or ref name."},
		},
		"required": []string{"op"},
	}

	return &mcpsdk.Tool{
		Name: "canvas_batch",
		Description: "Apply batch operations to the SeedCanvas canvas. " +
			"Operations: add_node, update_node, delete, add_edge. " +
			"Atomic — all succeed or all roll back. " +
			"Requires the SeedCanvas app to be running.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operations": map[string]any{
					"type":        "array",
					"items":       operation,
					"description": "Ordered list of canvas operations to execute atomically.",
				},
			},
			"required": []string{"operations"},
		},
	}
}

func generateImageTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "generate_image",
		Description: "Generate an image using ByteDance Seed AI models. " +
			"Returns a task ID — poll with task_status until done, then place on canvas via canvas_batch. " +
			"Follow the Image Prompt Craft guidelines in server instructions. " +
			"Models: " + modelList(tasks.ImageModels) + ". " +
			"Sizes: 1K, 2K (default), 3K, 4K, or pixel dimensions like 2048x2048. " +
			"Requires the SeedCanvas app to be running.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "Project ID to associate the generated image with.",
				},
				"prompt": map[string]any{
					"type":        "string",
					"description": "Image generation prompt.",
				},
				"model": map[string]any{
					"type":        "string",
					"enum":        tasks.ImageModels,
					"description": "Model to use. Defaults to " + tasks.DefaultImageModel + ".",
				},
				"node_id": map[string]any{
					"type":        "string",
					"description": "Canvas node to push the result to on completion.",
				},
				"size": map[string]any{
					"type":        "string",
					"description": "Size tier (1K/2K/3K/4K) or pixel dimensions like 2048x2048. Defaults to 2K.",
				},
			},
			"required": []string{"project_id", "prompt"},
		},
	}
}

func generateVideoTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "generate_video",
		Description: "Generate a video using ByteDance Seed AI models. " +
			"Returns a task ID — poll with task_status until done (typically 1-5 min), then place on canvas via canvas_batch. " +
			"Follow the Video Prompt Craft guidelines in server instructions. " +
			"Models: " + modelList(tasks.VideoModels) + ". " +
			"Resolutions: 480p, 720p (default), 1080p. Ratios: 16:9 (default), 9:16, 4:3, 3:4, 1:1, 21:9, adaptive. Duration: 2-12s. " +
			"Requires the SeedCanvas app to be running.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "Project ID to associate the generated video with.",
				},
				"prompt": map[string]any{
					"type":        "string",
					"description": "Video generation prompt.",
				},
				"model": map[string]any{
					"type":        "string",
					"enum":        tasks.VideoModels,
					"description": "Model to use. Defaults to " + tasks.DefaultVideoModel + ".",
				},
				"node_id": map[string]any{
					"type":        "string",
					"description": "Canvas node to push the result to on completion.",
				},
				"resolution": map[string]any{
					"type":        "string",
					"enum":        tasks.VideoResolutions,
					"description": "Output resolution. Defaults to 720p.",
				},
				"ratio": map[string]any{
					"type":        "string",
					"enum":        tasks.VideoRatios,
					"description": "Aspect ratio. Defaults to 16:9.",
				},
				"duration": map[string]any{
					"type":        "integer",
					"minimum":     2,
					"maximum":     12,
					"description": "Clip duration in seconds (2-12). Defaults to 5.",
				},
			},
			"required": []string{"project_id", "prompt"},
		},
	}
}

func taskStatusTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "task_status",
		Description: "Check the status of a generation task (image or video). " +
			"Returns status (pending/running/done/failed), output details on completion, " +
			"or error message on failure. " +
			"Requires the SeedCanvas app to be running.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task_id": map[string]any{
					"type":        "string",
					"description": "The task ID returned by generate_image or generate_video.",
				},
			},
			"required": []string{"task_id"},
		},
	}
}
