package lesson

import (
	"sort"
	"testing"

	"github.com/clsslgtti-creator/slgti-lessons/player"
)

func segmentSpecs() []SegmentSpec {
	return []SegmentSpec{
		{Audio: "https://cdn.example.org/1.wav", Text: "Hello.", Speaker: "Anna"},
		{Audio: "https://cdn.example.org/2.wav", Text: "Hi there.", Speaker: "Ben"},
	}
}

// TestBuildListen tests the single auto slide a listen activity
// expands to.
func TestBuildListen(t *testing.T) {
	act := Activity{Key: "activity_3", Number: 3, Type: "listen", Focus: "Greetings", Segments: segmentSpecs()}

	slides := BuildSlides(act)
	if len(slides) != 1 {
		t.Fatalf("built %d slides, want 1", len(slides))
	}
	s := slides[0]
	if s.ID != "activity-3-listening" {
		t.Errorf("ID = %q", s.ID)
	}
	if s.Kind != player.KindAutoTriggerable {
		t.Errorf("Kind = %v, want auto", s.Kind)
	}
	if s.GapMode != player.GapListen {
		t.Errorf("GapMode = %v, want GapListen", s.GapMode)
	}
	if s.Title != "Greetings" {
		t.Errorf("Title = %q", s.Title)
	}
	if len(s.Segments) != 2 || s.Segments[0].Label != "Anna: Hello." {
		t.Errorf("Segments = %+v", s.Segments)
	}
	if want := "Anna: Hello.\nBen: Hi there."; s.Body != want {
		t.Errorf("Body = %q, want %q", s.Body, want)
	}
}

// TestBuildListenRepeat tests the a/b slide pair and their gap modes.
func TestBuildListenRepeat(t *testing.T) {
	act := Activity{Key: "activity_2", Number: 2, Type: "listen_repeat", Segments: segmentSpecs()}

	slides := BuildSlides(act)
	if len(slides) != 2 {
		t.Fatalf("built %d slides, want 2", len(slides))
	}

	a, b := slides[0], slides[1]
	if a.ID != "activity-2-a-listening" || b.ID != "activity-2-b-speaking" {
		t.Errorf("ids = %q, %q", a.ID, b.ID)
	}
	if a.GapMode != player.GapListen {
		t.Errorf("slide a GapMode = %v, want GapListen", a.GapMode)
	}
	if b.GapMode != player.GapListenRepeat {
		t.Errorf("slide b GapMode = %v, want GapListenRepeat", b.GapMode)
	}
	if a.Kind != player.KindAutoTriggerable || b.Kind != player.KindAutoTriggerable {
		t.Errorf("kinds = %v, %v, want both auto", a.Kind, b.Kind)
	}
}

// TestBuildReadAlong tests the reading gap mode.
func TestBuildReadAlong(t *testing.T) {
	act := Activity{Key: "activity_5", Number: 5, Type: "read_along", Segments: segmentSpecs()}

	slides := BuildSlides(act)
	if len(slides) != 1 {
		t.Fatalf("built %d slides, want 1", len(slides))
	}
	if slides[0].ID != "activity-5-reading" {
		t.Errorf("ID = %q", slides[0].ID)
	}
	if slides[0].GapMode != player.GapRead {
		t.Errorf("GapMode = %v, want GapRead", slides[0].GapMode)
	}
}

// TestBuildSpeaking tests the manual slide and that shuffling
// preserves the segment set.
func TestBuildSpeaking(t *testing.T) {
	specs := []SegmentSpec{
		{Audio: "a.wav", Text: "one"},
		{Audio: "b.wav", Text: "two"},
		{Audio: "c.wav", Text: "three"},
		{Audio: "d.wav", Text: "four"},
	}
	act := Activity{Key: "activity_4", Number: 4, Type: "speaking", Segments: specs, Shuffle: true}

	slides := BuildSlides(act)
	if len(slides) != 1 {
		t.Fatalf("built %d slides, want 1", len(slides))
	}
	s := slides[0]
	if s.Kind != player.KindManual {
		t.Errorf("Kind = %v, want manual", s.Kind)
	}

	got := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		got = append(got, seg.URL)
	}
	sort.Strings(got)
	want := []string{"a.wav", "b.wav", "c.wav", "d.wav"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shuffled segment urls = %v, want set %v", got, want)
		}
	}

	// Shuffling must not touch the activity's own segment slice.
	if act.Segments[0].Audio != "a.wav" {
		t.Errorf("source segments mutated: %v", act.Segments)
	}
}

// TestBuildFallback tests unsupported and malformed activities.
func TestBuildFallback(t *testing.T) {
	tests := []struct {
		name string
		act  Activity
	}{
		{"unsupported type", Activity{Key: "activity_6", Number: 6, Type: "matching_game", Segments: segmentSpecs()}},
		{"malformed placeholder", Activity{Key: "activity_7", Number: 7, Type: ""}},
		{"listen without segments", Activity{Key: "activity_8", Number: 8, Type: "listen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slides := BuildSlides(tt.act)
			if len(slides) != 1 {
				t.Fatalf("built %d slides, want 1", len(slides))
			}
			s := slides[0]
			if s.Kind != player.KindManual {
				t.Errorf("Kind = %v, want manual", s.Kind)
			}
			if s.Body != "This activity is not available yet." {
				t.Errorf("Body = %q", s.Body)
			}
			if len(s.Segments) != 0 {
				t.Errorf("fallback slide has %d segments", len(s.Segments))
			}
		})
	}
}

// TestBuildInstructionResolution tests that slides resolve their own
// keyed instructions and inherit activity-level audio.
func TestBuildInstructionResolution(t *testing.T) {
	act := Activity{
		Key:    "activity_2",
		Number: 2,
		Type:   "listen_repeat",
		Instructions: Instructions{keyed: map[string]instructionEntry{
			"a-listening": {Texts: []string{"Just listen."}, Audio: "listen-intro.wav"},
			"b-speaking":  {Texts: []string{"Now repeat."}},
		}},
		InstructionAudio: "generic-intro.wav",
		Segments:         segmentSpecs(),
	}

	slides := BuildSlides(act)
	if len(slides) != 2 {
		t.Fatalf("built %d slides, want 2", len(slides))
	}

	a, b := slides[0], slides[1]
	if len(a.InstructionTexts) != 1 || a.InstructionTexts[0] != "Just listen." {
		t.Errorf("slide a texts = %v", a.InstructionTexts)
	}
	if a.InstructionAudioURL != "listen-intro.wav" {
		t.Errorf("slide a audio = %q, want its own entry", a.InstructionAudioURL)
	}
	if b.InstructionAudioURL != "generic-intro.wav" {
		t.Errorf("slide b audio = %q, want activity-level fallback", b.InstructionAudioURL)
	}
}

// TestBuildAll tests whole-document expansion in activity order.
func TestBuildAll(t *testing.T) {
	doc := &Document{
		Meta: Meta{Lesson: 1},
		Activities: []Activity{
			{Key: "activity_1", Number: 1, Type: "listen", Segments: segmentSpecs()},
			{Key: "activity_2", Number: 2, Type: "listen_repeat", Segments: segmentSpecs()},
			{Key: "activity_3", Number: 3, Type: "matching_game"},
		},
	}

	slides := BuildAll(doc)
	wantIDs := []string{
		"activity-1-listening",
		"activity-2-a-listening",
		"activity-2-b-speaking",
		"activity-3-unsupported",
	}
	if len(slides) != len(wantIDs) {
		t.Fatalf("built %d slides, want %d", len(slides), len(wantIDs))
	}
	for i, want := range wantIDs {
		if slides[i].ID != want {
			t.Errorf("slide[%d].ID = %q, want %q", i, slides[i].ID, want)
		}
	}
}
