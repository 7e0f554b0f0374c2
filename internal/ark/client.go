// Package ark is a thin client for the ARK generation service: one synchronous
// image endpoint and one submit-then-poll video task pair.
package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoTaskID is returned when a video create call succeeds but the response
// carries no task ID.
var ErrNoTaskID = errors.New("no task ID in video create response")

// Client wraps the ARK HTTP API. It is stateless and safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// Image generation is synchronous on the remote side (~30s typical),
		// so the request timeout must comfortably exceed that.
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// GenerateImage calls POST /images/generations and returns the decoded
// response. Non-2xx statuses are hard failures carrying the response body.
func (c *Client) GenerateImage(ctx context.Context, req *ImageGenRequest) (*ImageGenResponse, error) {
	var resp ImageGenResponse
	if err := c.postJSON(ctx, c.baseURL+"/images/generations", req, &resp, "ARK image API"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateVideoTask calls POST /contents/generations/tasks and returns the
// remote task ID.
func (c *Client) CreateVideoTask(ctx context.Context, req *VideoGenRequest) (string, error) {
	var resp videoCreateResponse
	if err := c.postJSON(ctx, c.baseURL+"/contents/generations/tasks", req, &resp, "ARK video create API"); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", ErrNoTaskID
	}
	return resp.ID, nil
}

// GetVideoTask calls GET /contents/generations/tasks/{id} to poll a task.
func (c *Client) GetVideoTask(ctx context.Context, taskID string) (*VideoTaskStatus, error) {
	url := fmt.Sprintf("%s/contents/generations/tasks/%s", c.baseURL, taskID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("video task status request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if err := checkStatus(httpResp, "ARK video status API"); err != nil {
		return nil, err
	}

	var status VideoTaskStatus
	if err := json.NewDecoder(httpResp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to parse video task status response: %w", err)
	}
	return &status, nil
}

// Download fetches a result URL (e.g. the generated video) and returns its bytes.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download error %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any, apiName string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", apiName, err)
	}
	defer httpResp.Body.Close()

	if err := checkStatus(httpResp, apiName); err != nil {
		return err
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", apiName, err)
	}
	return nil
}

func checkStatus(resp *http.Response, apiName string) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s error %s: %s", apiName, resp.Status, string(body))
}
