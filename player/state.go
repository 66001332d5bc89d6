package player

// GateState represents the current state of an instruction gate
// session.
type GateState int

const (
	// GateIdle indicates no gate session is running.
	GateIdle GateState = iota
	// GateAwaitingInstruction indicates the gate has been invoked and
	// is resolving what to do for the slide.
	GateAwaitingInstruction
	// GatePlayingInstruction indicates instruction audio is playing.
	GatePlayingInstruction
	// GateCountingDown indicates the fixed pre-start countdown is
	// running and the primary control is suppressed.
	GateCountingDown
	// GateReleased indicates the slide's activity content may run.
	GateReleased
)

// String returns the string representation of the state.
func (s GateState) String() string {
	switch s {
	case GateIdle:
		return "idle"
	case GateAwaitingInstruction:
		return "awaiting-instruction"
	case GatePlayingInstruction:
		return "playing-instruction"
	case GateCountingDown:
		return "counting-down"
	case GateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// gateMachine validates gate state transitions. Released is terminal
// for an activation; only a full teardown returns the machine to idle.
type gateMachine struct {
	current     GateState
	transitions map[GateState][]GateState
	onEnter     map[GateState]func()
}

func newGateMachine() *gateMachine {
	return &gateMachine{
		current: GateIdle,
		transitions: map[GateState][]GateState{
			GateIdle:                {GateAwaitingInstruction},
			GateAwaitingInstruction: {GatePlayingInstruction, GateCountingDown, GateReleased, GateIdle},
			GatePlayingInstruction:  {GateCountingDown, GateReleased, GateIdle},
			GateCountingDown:        {GateReleased, GateIdle},
			GateReleased:            {GateIdle},
		},
		onEnter: make(map[GateState]func()),
	}
}

// transition attempts to move to the given state, firing the enter
// callback on success.
func (m *gateMachine) transition(to GateState) bool {
	valid, ok := m.transitions[m.current]
	if !ok {
		return false
	}

	allowed := false
	for _, s := range valid {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	m.current = to
	if fn, ok := m.onEnter[to]; ok && fn != nil {
		fn()
	}
	return true
}

// state returns the current state.
func (m *gateMachine) state() GateState {
	return m.current
}

// enter registers a callback fired when the machine enters a state.
func (m *gateMachine) enter(s GateState, fn func()) {
	m.onEnter[s] = fn
}
