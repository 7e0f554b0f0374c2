package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTask(t *testing.T, s *Store, id, projectID, kind, status string) {
	t.Helper()
	now := Now()
	err := s.InsertTask(&TaskRow{
		ID:        id,
		ProjectID: projectID,
		Kind:      kind,
		Status:    status,
		Input:     `{"prompt":"a cat"}`,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to insert task: %v", err)
	}
}

func TestInsertAndGetTask(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindImage, StatusPending)

	got, err := s.GetTask("t1")
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got == nil {
		t.Fatal("expected task, got nil")
	}
	if got.Kind != KindImage || got.Status != StatusPending {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.Input != `{"prompt":"a cat"}` {
		t.Errorf("unexpected input: %s", got.Input)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetTask("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing task, got %+v", got)
	}
}

func TestUpdateTaskPreservesArkTaskID(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindVideo, StatusPending)

	if err := s.UpdateTask("t1", StatusRunning, "", "cgt-123", ""); err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	// Later transitions pass an empty handle; the stored one must survive.
	if err := s.UpdateTask("t1", StatusDone, `{"assetPath":"/a.mp4"}`, "", ""); err != nil {
		t.Fatalf("failed to update task: %v", err)
	}

	got, err := s.GetTask("t1")
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.ArkTaskID != "cgt-123" {
		t.Errorf("ark task ID was cleared, got %q", got.ArkTaskID)
	}
	if got.Status != StatusDone {
		t.Errorf("expected done, got %s", got.Status)
	}
	if got.Output != `{"assetPath":"/a.mp4"}` {
		t.Errorf("unexpected output: %s", got.Output)
	}
}

func TestUpdateTaskFailure(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindImage, StatusRunning)

	if err := s.UpdateTask("t1", StatusFailed, "", "", "boom"); err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	got, _ := s.GetTask("t1")
	if got.Status != StatusFailed || got.Error != "boom" {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestListTasksByStatus(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindImage, StatusPending)
	insertTask(t, s, "t2", "p1", KindVideo, StatusRunning)
	insertTask(t, s, "t3", "p2", KindImage, StatusDone)

	pending, err := s.ListTasksByStatus(StatusPending)
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "t1" {
		t.Errorf("unexpected pending tasks: %+v", pending)
	}

	running, err := s.ListTasksByStatus(StatusRunning)
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(running) != 1 || running[0].ID != "t2" {
		t.Errorf("unexpected running tasks: %+v", running)
	}
}

func TestTasksForProject(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindImage, StatusDone)
	insertTask(t, s, "t2", "p2", KindImage, StatusDone)

	tasks, err := s.TasksForProject("p1")
	if err != nil {
		t.Fatalf("failed to list project tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Errorf("unexpected project tasks: %+v", tasks)
	}
}

func TestDeleteProjectData(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindImage, StatusDone)
	insertAsset(t, s, "a1", "p1", KindImage, 100)

	if err := s.DeleteProjectData("p1"); err != nil {
		t.Fatalf("failed to delete project data: %v", err)
	}
	got, _ := s.GetTask("t1")
	if got != nil {
		t.Error("expected task to be deleted")
	}
	assets, _ := s.ListAssets(AssetFilter{ProjectID: "p1"})
	if len(assets) != 0 {
		t.Errorf("expected no assets, got %d", len(assets))
	}
}

func insertAsset(t *testing.T, s *Store, id, projectID, kind string, size int64) {
	t.Helper()
	err := s.InsertAsset(&AssetRow{
		ID:        id,
		ProjectID: projectID,
		TaskID:    "t-" + id,
		Kind:      kind,
		FilePath:  "/assets/" + id,
		FileName:  id + ".png",
		Prompt:    "a cat",
		Model:     "doubao-seedream-5-0-260128",
		Width:     2048,
		Height:    2048,
		FileSize:  size,
		Source:    "generated",
		CreatedAt: Now(),
	})
	if err != nil {
		t.Fatalf("failed to insert asset: %v", err)
	}
}

func TestListAssetsFilter(t *testing.T) {
	s := openTestStore(t)
	insertAsset(t, s, "a1", "p1", KindImage, 100)
	insertAsset(t, s, "a2", "p1", KindVideo, 200)
	insertAsset(t, s, "a3", "p2", KindImage, 300)

	all, err := s.ListAssets(AssetFilter{})
	if err != nil {
		t.Fatalf("failed to list assets: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 assets, got %d", len(all))
	}

	images, err := s.ListAssets(AssetFilter{ProjectID: "p1", Kind: KindImage})
	if err != nil {
		t.Fatalf("failed to list assets: %v", err)
	}
	if len(images) != 1 || images[0].ID != "a1" {
		t.Errorf("unexpected assets: %+v", images)
	}

	limited, err := s.ListAssets(AssetFilter{Limit: 2})
	if err != nil {
		t.Fatalf("failed to list assets: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 assets, got %d", len(limited))
	}
}

func TestAssetStats(t *testing.T) {
	s := openTestStore(t)
	insertAsset(t, s, "a1", "p1", KindImage, 100)
	insertAsset(t, s, "a2", "p1", KindVideo, 250)

	st, err := s.GetAssetStats()
	if err != nil {
		t.Fatalf("failed to get asset stats: %v", err)
	}
	if st.Total != 2 || st.Images != 1 || st.Videos != 1 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if st.TotalBytes != 350 {
		t.Errorf("expected 350 bytes, got %d", st.TotalBytes)
	}
}

func TestUsageStats(t *testing.T) {
	s := openTestStore(t)
	insertTask(t, s, "t1", "p1", KindImage, StatusDone)
	insertTask(t, s, "t2", "p1", KindImage, StatusFailed)
	insertTask(t, s, "t3", "p1", KindVideo, StatusRunning)

	st, err := s.GetUsageStats()
	if err != nil {
		t.Fatalf("failed to get usage stats: %v", err)
	}
	if st.TotalTasks != 3 || st.Done != 1 || st.Failed != 1 {
		t.Errorf("unexpected totals: %+v", st)
	}
	if len(st.Daily) != 1 {
		t.Errorf("expected one daily bucket, got %d", len(st.Daily))
	}
	if len(st.Recent) != 3 {
		t.Errorf("expected 3 recent tasks, got %d", len(st.Recent))
	}
}
