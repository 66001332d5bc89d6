package player

import "testing"

// TestGateMachineTransitions tests allowed and rejected transitions.
func TestGateMachineTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []GateState
		to   GateState
		want bool
	}{
		{
			name: "idle to awaiting",
			to:   GateAwaitingInstruction,
			want: true,
		},
		{
			name: "idle straight to released is rejected",
			to:   GateReleased,
			want: false,
		},
		{
			name: "awaiting to playing instruction",
			path: []GateState{GateAwaitingInstruction},
			to:   GatePlayingInstruction,
			want: true,
		},
		{
			name: "awaiting skips straight to released",
			path: []GateState{GateAwaitingInstruction},
			to:   GateReleased,
			want: true,
		},
		{
			name: "playing to countdown",
			path: []GateState{GateAwaitingInstruction, GatePlayingInstruction},
			to:   GateCountingDown,
			want: true,
		},
		{
			name: "countdown to released",
			path: []GateState{GateAwaitingInstruction, GateCountingDown},
			to:   GateReleased,
			want: true,
		},
		{
			name: "released cannot count down again",
			path: []GateState{GateAwaitingInstruction, GateReleased},
			to:   GateCountingDown,
			want: false,
		},
		{
			name: "released back to idle on teardown",
			path: []GateState{GateAwaitingInstruction, GateReleased},
			to:   GateIdle,
			want: true,
		},
		{
			name: "countdown cannot rewind to awaiting",
			path: []GateState{GateAwaitingInstruction, GateCountingDown},
			to:   GateAwaitingInstruction,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newGateMachine()
			for _, s := range tt.path {
				if !m.transition(s) {
					t.Fatalf("setup transition to %v failed", s)
				}
			}
			if got := m.transition(tt.to); got != tt.want {
				t.Errorf("transition(%v) = %v, want %v", tt.to, got, tt.want)
			}
		})
	}
}

// TestGateMachineOnEnter tests that enter callbacks fire on successful
// transitions only.
func TestGateMachineOnEnter(t *testing.T) {
	m := newGateMachine()

	entered := 0
	m.enter(GateReleased, func() { entered++ })

	if m.transition(GateReleased) {
		t.Fatal("idle to released should be rejected")
	}
	if entered != 0 {
		t.Errorf("enter callback fired on rejected transition")
	}

	m.transition(GateAwaitingInstruction)
	m.transition(GateReleased)
	if entered != 1 {
		t.Errorf("enter callback fired %d times, want 1", entered)
	}

	if m.state() != GateReleased {
		t.Errorf("state = %v, want %v", m.state(), GateReleased)
	}
}

// TestGateStateString tests the state names.
func TestGateStateString(t *testing.T) {
	tests := []struct {
		state GateState
		want  string
	}{
		{GateIdle, "idle"},
		{GateAwaitingInstruction, "awaiting-instruction"},
		{GatePlayingInstruction, "playing-instruction"},
		{GateCountingDown, "counting-down"},
		{GateReleased, "released"},
		{GateState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("GateState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
