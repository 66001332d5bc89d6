package ui

import (
	"strings"
	"testing"

	"github.com/clsslgtti-creator/slgti-lessons/player"
)

func testModel() *model {
	nav := player.NewNavigator(player.DefaultConfig(), player.NewMockSegmentPlayer(), nil)
	m := newModel(Config{}, nav, nil)
	m.width = 80
	m.height = 24
	m.ready = true
	m.change = player.SlideChange{
		Index:        0,
		Total:        2,
		NextEnabled:  true,
		ProgressText: "Slide 1 of 2",
	}
	return m
}

// TestStatusBarNote tests the default progress note.
func TestStatusBarNote(t *testing.T) {
	m := testModel()
	if bar := m.statusBarView(); !strings.Contains(bar, "Slide 1 of 2") {
		t.Errorf("status bar %q does not show the progress note", bar)
	}
}

// TestStatusBarToasts tests that transient messages replace the note,
// error toasts with the error style.
func TestStatusBarToasts(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		isErr bool
	}{
		{"plain toast", "copied", false},
		{"error toast", "copy failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			m.statusMessage = tt.msg
			m.statusMessageIsErr = tt.isErr

			bar := m.statusBarView()
			if !strings.Contains(bar, tt.msg) {
				t.Errorf("status bar %q does not show %q", bar, tt.msg)
			}
			if strings.Contains(bar, "Slide 1 of 2") {
				t.Errorf("status bar %q still shows the progress note", bar)
			}
		})
	}
}

// TestStatusMessageTimeout tests that the toast and its error flag
// clear together.
func TestStatusMessageTimeout(t *testing.T) {
	m := testModel()
	m.statusMessage = "copy failed"
	m.statusMessageIsErr = true

	updated, _ := m.Update(statusMessageTimeoutMsg{})
	got := updated.(*model)
	if got.statusMessage != "" || got.statusMessageIsErr {
		t.Errorf("after timeout: message = %q, isErr = %v, want cleared",
			got.statusMessage, got.statusMessageIsErr)
	}
}
