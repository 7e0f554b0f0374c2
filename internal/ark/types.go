package ark

// ---------------------------------------------------------------------------
// Image generation
// POST {baseURL}/images/generations
// ---------------------------------------------------------------------------

// ImageGenRequest is the synchronous image generation request body.
type ImageGenRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	N      int    `json:"n,omitempty"`
	// Always "b64_json": results come back inline, never as hosted URLs.
	ResponseFormat string `json:"response_format"`
	// Always false: generated images must not carry watermarks.
	Watermark bool `json:"watermark"`
}

// ImageGenResponse is the image generation response body.
type ImageGenResponse struct {
	Data []ImageGenItem `json:"data"`
}

// ImageGenItem is a single generated image.
type ImageGenItem struct {
	B64JSON string `json:"b64_json,omitempty"`
	URL     string `json:"url,omitempty"`
	Size    string `json:"size,omitempty"` // "WxH"
}

// ---------------------------------------------------------------------------
// Video generation: async task pattern
// POST {baseURL}/contents/generations/tasks      → task id
// GET  {baseURL}/contents/generations/tasks/{id} → status + content
// ---------------------------------------------------------------------------

// VideoGenRequest is the async video generation creation body.
type VideoGenRequest struct {
	Model      string             `json:"model"`
	Content    []VideoContentItem `json:"content"`
	Resolution string             `json:"resolution,omitempty"`
	Ratio      string             `json:"ratio,omitempty"`
	Duration   int                `json:"duration,omitempty"`
	// Always false: generated videos must not carry watermarks.
	Watermark bool `json:"watermark"`
}

// VideoContentItem is one element of the video generation prompt.
type VideoContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type videoCreateResponse struct {
	ID string `json:"id"`
}

// VideoTaskStatus is a poll result for an async video task.
// Status vocabulary: queued | running | succeeded | failed | expired | cancelled.
type VideoTaskStatus struct {
	ID      string            `json:"id,omitempty"`
	Status  string            `json:"status,omitempty"`
	Content *VideoTaskContent `json:"content,omitempty"`
	Error   *VideoTaskError   `json:"error,omitempty"`
}

// VideoTaskContent carries the result URLs of a succeeded task.
type VideoTaskContent struct {
	VideoURL     string `json:"video_url,omitempty"`
	LastFrameURL string `json:"last_frame_url,omitempty"`
}

// VideoTaskError is the remote-reported failure detail.
type VideoTaskError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
