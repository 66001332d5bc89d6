package scorm

import (
	"testing"

	"github.com/clsslgtti-creator/slgti-lessons/filesystem"
)

// TestLocalStoreRoundTrip tests writing progress and resuming from a
// fresh store over the same file.
func TestLocalStoreRoundTrip(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	s := NewLocalStore("progress.json", "lesson-3")
	if err := s.RecordProgress(2, 6); err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}

	// A new store simulates the next run of the player.
	next := NewLocalStore("progress.json", "lesson-3")
	if got := next.ResumeIndex(6); got != 2 {
		t.Errorf("ResumeIndex = %d, want 2", got)
	}
}

// TestLocalStoreKeysByLesson tests that lessons do not see each
// other's progress.
func TestLocalStoreKeysByLesson(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	a := NewLocalStore("progress.json", "lesson-1")
	b := NewLocalStore("progress.json", "lesson-2-b")
	if err := a.RecordProgress(4, 8); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordProgress(1, 3); err != nil {
		t.Fatal(err)
	}

	if got := NewLocalStore("progress.json", "lesson-1").ResumeIndex(8); got != 4 {
		t.Errorf("lesson-1 resume = %d, want 4", got)
	}
	if got := NewLocalStore("progress.json", "lesson-2-b").ResumeIndex(3); got != 1 {
		t.Errorf("lesson-2-b resume = %d, want 1", got)
	}
	if got := NewLocalStore("progress.json", "lesson-99").ResumeIndex(5); got != 0 {
		t.Errorf("unknown lesson resume = %d, want 0", got)
	}
}

// TestLocalStoreResumeClamps tests clamping when the lesson shrank
// since the progress was written.
func TestLocalStoreResumeClamps(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	s := NewLocalStore("progress.json", "lesson-1")
	if err := s.RecordProgress(9, 10); err != nil {
		t.Fatal(err)
	}

	next := NewLocalStore("progress.json", "lesson-1")
	if got := next.ResumeIndex(4); got != 3 {
		t.Errorf("ResumeIndex after shrink = %d, want 3", got)
	}
	if got := next.ResumeIndex(0); got != 0 {
		t.Errorf("ResumeIndex with no slides = %d, want 0", got)
	}
}

// TestLocalStoreCompletionMonotonic tests that completion survives
// later progress writes and reloads.
func TestLocalStoreCompletionMonotonic(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	s := NewLocalStore("progress.json", "lesson-5")
	if err := s.RecordCompletion(5, 6); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordProgress(0, 6); err != nil {
		t.Fatal(err)
	}

	next := NewLocalStore("progress.json", "lesson-5")
	_ = next.ResumeIndex(6)
	records, err := next.load()
	if err != nil {
		t.Fatal(err)
	}
	rec := records["lesson-5"]
	if !rec.Completed {
		t.Error("completion lost after back-navigation write")
	}
	if rec.CurrentSlide != 0 {
		t.Errorf("stored position = %d, want 0", rec.CurrentSlide)
	}
}

// TestLocalStoreDedup tests that identical writes are skipped.
func TestLocalStoreDedup(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	s := NewLocalStore("progress.json", "lesson-1")
	if err := s.RecordProgress(1, 4); err != nil {
		t.Fatal(err)
	}
	first, err := s.load()
	if err != nil {
		t.Fatal(err)
	}
	stamp := first["lesson-1"].Timestamp

	if err := s.RecordProgress(1, 4); err != nil {
		t.Fatal(err)
	}
	second, err := s.load()
	if err != nil {
		t.Fatal(err)
	}
	if second["lesson-1"].Timestamp != stamp {
		t.Error("repeated write touched the file")
	}
}
