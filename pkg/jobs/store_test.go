package jobs

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testStore creates a store in a temporary directory.
func testStore(t *testing.T) *JSONStore {
	t.Helper()

	store, err := NewJSONStore(filepath.Join(t.TempDir(), "state", "jobs.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestJSONStore_SaveAndGet(t *testing.T) {
	store := testStore(t)

	job := Job{Filename: "clip.mp4", Status: StatusProcessing}
	if err := store.Save(&job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if job.ID == "" {
		t.Error("expected ID to be generated")
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Filename != "clip.mp4" || got.Status != StatusProcessing {
		t.Errorf("got %+v", got)
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing job: got %v, want ErrNotFound", err)
	}
}

func TestJSONStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	done := Job{Filename: "a.mp4", Status: StatusDone, Result: "x.csv"}
	running := Job{Filename: "b.mp4", Status: StatusProcessing}
	if err := store.Save(&done); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&running); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Count() != 2 {
		t.Fatalf("Count: got %d, want 2", reloaded.Count())
	}

	got, _ := reloaded.Get(done.ID)
	if got.Status != StatusDone || got.Result != "x.csv" {
		t.Errorf("done job: got %+v", got)
	}

	got, _ = reloaded.Get(running.ID)
	if got.Status != StatusError || got.Error != "interrupted" {
		t.Errorf("interrupted job: got status %s error %q", got.Status, got.Error)
	}
}

func TestJSONStore_List(t *testing.T) {
	store := testStore(t)

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"first.mp4", "second.mp4", "third.mp4"} {
		job := Job{Filename: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Save(&job); err != nil {
			t.Fatal(err)
		}
	}

	jobs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 3 || jobs[0].Filename != "third.mp4" || jobs[2].Filename != "first.mp4" {
		t.Errorf("expected newest first, got %v", jobs)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONStore(path); err == nil {
		t.Error("expected error for corrupt store file")
	}
}

func TestJSONStore_FailedSaveRollsBack(t *testing.T) {
	store := testStore(t)

	job := Job{Filename: "clip.mp4", Status: StatusProcessing, Threshold: 10}
	if err := store.Save(&job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// JSON cannot encode NaN, so both saves below fail.
	bad := Job{Filename: "bad.mp4", Status: StatusProcessing, Threshold: math.NaN()}
	if err := store.Save(&bad); err == nil {
		t.Fatal("expected error saving unencodable job")
	}
	update := job
	update.Threshold = math.Inf(1)
	if err := store.Save(&update); err == nil {
		t.Fatal("expected error saving unencodable update")
	}

	if store.Count() != 1 {
		t.Errorf("Count: got %d, want 1", store.Count())
	}
	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Threshold != 10 {
		t.Errorf("failed update was kept: threshold %v", got.Threshold)
	}

	next := Job{Filename: "next.mp4", Status: StatusProcessing, Threshold: 5}
	if err := store.Save(&next); err != nil {
		t.Fatalf("Save after failure: %v", err)
	}
	if _, err := store.List(); err != nil {
		t.Errorf("List: %v", err)
	}

	reloaded, err := NewJSONStore(store.Path())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Count() != 2 {
		t.Errorf("reloaded Count: got %d, want 2", reloaded.Count())
	}
}
