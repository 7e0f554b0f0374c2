package ark

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header: got %q", got)
		}

		var req ImageGenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat != "b64_json" {
			t.Errorf("response_format: got %q", req.ResponseFormat)
		}
		if req.Watermark {
			t.Error("watermark must be false")
		}

		json.NewEncoder(w).Encode(ImageGenResponse{
			Data: []ImageGenItem{{B64JSON: "aGVsbG8=", Size: "2048x2048"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	resp, err := c.GenerateImage(context.Background(), &ImageGenRequest{
		Model:          "doubao-seedream-5-0-260128",
		Prompt:         "a red fox",
		N:              1,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].B64JSON != "aGVsbG8=" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGenerateImageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	_, err := c.GenerateImage(context.Background(), &ImageGenRequest{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "ARK image API error") {
		t.Errorf("error should name the API: %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error should carry the response body: %v", err)
	}
}

func TestCreateVideoTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contents/generations/tasks" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "cgt-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	id, err := c.CreateVideoTask(context.Background(), &VideoGenRequest{
		Model:   "doubao-seedance-1-5-pro-251215",
		Content: []VideoContentItem{{Type: "text", Text: "waves"}},
	})
	if err != nil {
		t.Fatalf("CreateVideoTask: %v", err)
	}
	if id != "cgt-123" {
		t.Errorf("task id: got %q", id)
	}
}

func TestCreateVideoTaskMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	_, err := c.CreateVideoTask(context.Background(), &VideoGenRequest{Model: "m"})
	if err != ErrNoTaskID {
		t.Fatalf("expected ErrNoTaskID, got %v", err)
	}
}

func TestGetVideoTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contents/generations/tasks/cgt-123" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(VideoTaskStatus{
			ID:      "cgt-123",
			Status:  "succeeded",
			Content: &VideoTaskContent{VideoURL: "http://x/v.mp4"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	status, err := c.GetVideoTask(context.Background(), "cgt-123")
	if err != nil {
		t.Fatalf("GetVideoTask: %v", err)
	}
	if status.Status != "succeeded" {
		t.Errorf("status: got %q", status.Status)
	}
	if status.Content == nil || status.Content.VideoURL != "http://x/v.mp4" {
		t.Errorf("content: got %+v", status.Content)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("video-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	data, err := c.Download(context.Background(), srv.URL+"/v.mp4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("data: got %q", data)
	}
}
