package tasks

import (
	"fmt"
	"strings"
)

// Valid values, aligned with the ARK API docs. Single source of truth for the
// gateway endpoints AND the MCP tools.

var ImageModels = []string{
	"doubao-seedream-5-0-260128",
	"doubao-seedream-5-0-lite-260128",
	"doubao-seedream-4-5-251128",
	"doubao-seedream-4-0-250828",
}

// ImageSizes holds tier strings ("2K") AND recommended pixel dimensions.
var ImageSizes = []string{
	// Tier strings
	"1K", "2K", "3K", "4K",
	// Common 2K pixel values (all models)
	"2048x2048", "1728x2304", "2304x1728",
	"2848x1600", "1600x2848",
	"2496x1664", "1664x2496",
	"3136x1344",
	// 1K (Seedream 4.0 only)
	"1024x1024", "864x1152", "1152x864",
	"1312x736", "736x1312", "832x1248", "1248x832", "1568x672",
	// 3K (Seedream 5.0 lite only)
	"3072x3072", "2592x3456", "3456x2592",
	"4096x2304", "2304x4096", "2496x3744", "3744x2496", "4704x2016",
	// 4K (Seedream 4.5 / 4.0)
	"4096x4096", "3520x4704", "4704x3520",
	"5504x3040", "3040x5504", "3328x4992", "4992x3328", "6240x2656",
}

var VideoModels = []string{
	"doubao-seedance-1-5-pro-251215",
	"doubao-seedance-1-0-pro-250528",
	"doubao-seedance-1-0-pro-fast-251015",
	"doubao-seedance-1-0-lite-t2v-250428",
	"doubao-seedance-1-0-lite-i2v-250428",
}

var VideoResolutions = []string{"480p", "720p", "1080p"}

var VideoRatios = []string{"16:9", "9:16", "4:3", "3:4", "1:1", "21:9", "adaptive"}

const (
	DefaultImageModel      = "doubao-seedream-5-0-260128"
	DefaultImageSize       = "2K"
	DefaultVideoModel      = "doubao-seedance-1-5-pro-251215"
	DefaultVideoResolution = "720p"
	DefaultVideoRatio      = "16:9"
	DefaultVideoDuration   = 5
)

// ValidationError reports a rejected submission. Submissions failing
// validation never reach the store.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// ImageParams is an image generation submission. The JSON form is stored as
// the task input, so field names are stable.
type ImageParams struct {
	ProjectID string `json:"project_id"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	NodeID    string `json:"node_id,omitempty"`
	Size      string `json:"size,omitempty"`
}

// Normalize applies defaults and validates. Called before enqueueing.
func (p *ImageParams) Normalize() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return validationErrorf("prompt must not be empty")
	}
	if p.Model == "" {
		p.Model = DefaultImageModel
	}
	if !contains(ImageModels, p.Model) {
		return validationErrorf("invalid image model %q. Valid: %s", p.Model, strings.Join(ImageModels, ", "))
	}
	if p.Size == "" {
		p.Size = DefaultImageSize
	}
	if !contains(ImageSizes, p.Size) {
		return validationErrorf("invalid image size %q. Valid: %s", p.Size, strings.Join(ImageSizes, ", "))
	}
	return nil
}

// VideoParams is a video generation submission.
type VideoParams struct {
	ProjectID  string `json:"project_id"`
	Prompt     string `json:"prompt"`
	Model      string `json:"model,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Ratio      string `json:"ratio,omitempty"`
	Duration   int    `json:"duration,omitempty"`
}

// Normalize applies defaults and validates. Called before enqueueing.
func (p *VideoParams) Normalize() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return validationErrorf("prompt must not be empty")
	}
	if p.Model == "" {
		p.Model = DefaultVideoModel
	}
	if !contains(VideoModels, p.Model) {
		return validationErrorf("invalid video model %q. Valid: %s", p.Model, strings.Join(VideoModels, ", "))
	}
	if p.Resolution == "" {
		p.Resolution = DefaultVideoResolution
	}
	if !contains(VideoResolutions, p.Resolution) {
		return validationErrorf("invalid resolution %q. Valid: %s", p.Resolution, strings.Join(VideoResolutions, ", "))
	}
	if p.Ratio == "" {
		p.Ratio = DefaultVideoRatio
	}
	if !contains(VideoRatios, p.Ratio) {
		return validationErrorf("invalid ratio %q. Valid: %s", p.Ratio, strings.Join(VideoRatios, ", "))
	}
	if p.Duration == 0 {
		p.Duration = DefaultVideoDuration
	}
	if p.Duration < 2 || p.Duration > 12 {
		return validationErrorf("duration must be 2-12 seconds, got %d", p.Duration)
	}
	return nil
}
