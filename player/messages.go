package player

import "time"

// Messages for Bubble Tea communication between the player and the UI.

// SlideChangedMsg indicates the navigator completed a transition.
type SlideChangedMsg struct {
	Change SlideChange
}

// GateStateMsg indicates the instruction gate changed state.
type GateStateMsg struct {
	State GateState
}

// CountdownMsg carries the remaining pre-start countdown, rendered as
// "Starts in Ns".
type CountdownMsg struct {
	Remaining time.Duration
}

// StatusMsg carries transient status text, e.g. the label of the
// segment currently playing or a skip notice for a broken clip. An
// empty string clears the status line.
type StatusMsg struct {
	Text string
}

// ScrollResetMsg asks the slide viewport to return to the top.
type ScrollResetMsg struct{}

// LessonReloadedMsg indicates the watched lesson file changed and the
// slide set was rebuilt.
type LessonReloadedMsg struct {
	Total int
}
