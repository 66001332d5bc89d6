// Package ui renders the lesson player as a terminal program: the
// slide surface with its instruction block, the pre-start countdown,
// a transient status line, and the navigation status bar.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/clsslgtti-creator/slgti-lessons/player"
	"github.com/clsslgtti-creator/slgti-lessons/scorm"
)

const (
	statusMessageTimeout = time.Second * 3
	ellipsis             = "…"
)

// NewProgram builds the Tea program and wires the navigator's
// callbacks to it. Navigation keys are attached here, exactly once.
func NewProgram(cfg Config, nav *player.Navigator, store scorm.Store) *tea.Program {
	log.Debug("starting lesson player", "source", cfg.Source, "watch", cfg.Watch)

	m := newModel(cfg, nav, store)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	nav.OnSlideChange(func(c player.SlideChange) {
		p.Send(player.SlideChangedMsg{Change: c})
	})
	nav.OnGateState(func(s player.GateState) {
		p.Send(player.GateStateMsg{State: s})
	})
	nav.OnCountdown(func(d time.Duration) {
		p.Send(player.CountdownMsg{Remaining: d})
	})
	nav.OnStatus(func(text string) {
		p.Send(player.StatusMsg{Text: text})
	})
	nav.OnScrollReset(func() {
		p.Send(player.ScrollResetMsg{})
	})
	if err := nav.AttachKeys(func(next, previous func()) {
		m.next = next
		m.previous = previous
	}); err != nil {
		log.Warn("key bindings already attached", "err", err)
	}

	return p
}

type statusMessageTimeoutMsg struct{}

type model struct {
	cfg      Config
	nav      *player.Navigator
	store    scorm.Store
	viewport viewport.Model

	next     func()
	previous func()

	change    player.SlideChange
	gate      player.GateState
	countdown time.Duration
	status    string

	// Transient toast shown in the status bar, e.g. after a copy or a
	// lesson reload. Error toasts render with the error style.
	statusMessage      string
	statusMessageIsErr bool

	width  int
	height int
	ready  bool
}

func newModel(cfg Config, nav *player.Navigator, store scorm.Store) *model {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	return &model{
		cfg:      cfg,
		nav:      nav,
		store:    store,
		viewport: vp,
		change:   player.SlideChange{Index: -1},
	}
}

func (m *model) Init() tea.Cmd {
	return startLessonCmd(m.nav)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Sequence(shutdownCmd(m.nav, m.store), tea.Quit)

		case "right", "l", "n":
			if m.change.NextEnabled && m.next != nil {
				return m, navigateCmd(m.next)
			}

		case "left", "h", "p":
			if m.change.PrevEnabled && m.previous != nil {
				return m, navigateCmd(m.previous)
			}

		case "enter", " ":
			return m, triggerCmd(m.nav)

		case "c":
			if m.change.Slide != nil {
				if err := clipboard.WriteAll(m.change.Slide.Body); err != nil {
					log.Warn("clipboard write failed", "err", err)
					m.statusMessage = "copy failed"
					m.statusMessageIsErr = true
				} else {
					m.statusMessage = "copied"
					m.statusMessageIsErr = false
				}
				cmds = append(cmds, clearStatusMessageCmd())
			}

		case "g", "home":
			m.viewport.GotoTop()

		case "G", "end":
			m.viewport.GotoBottom()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.setViewportSize()
		m.setContent()
		m.ready = true

	case player.SlideChangedMsg:
		m.change = msg.Change
		m.gate = player.GateIdle
		m.countdown = 0
		m.status = ""
		m.setViewportSize()
		m.setContent()

	case player.GateStateMsg:
		m.gate = msg.State
		if msg.State == player.GateReleased {
			m.countdown = 0
		}

	case player.CountdownMsg:
		m.countdown = msg.Remaining

	case player.StatusMsg:
		m.status = msg.Text

	case player.ScrollResetMsg:
		m.viewport.GotoTop()

	case player.LessonReloadedMsg:
		m.statusMessage = fmt.Sprintf("Lesson reloaded: %d slides", msg.Total)
		m.statusMessageIsErr = false
		cmds = append(cmds, clearStatusMessageCmd())

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		m.statusMessageIsErr = false
	}

	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	if m.change.Index < 0 {
		return "\n  " + subtleStyle(m.change.ProgressText)
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusBarView())
	return b.String()
}

// headerView renders the slide title and, when active, the countdown
// or transient playback status on the right edge.
func (m *model) headerView() string {
	title := m.change.ProgressText
	if s := m.change.Slide; s != nil && s.Title != "" {
		title = s.Title
	}
	left := " " + titleStyle(title)

	var right string
	switch {
	case m.countdown > 0:
		secs := int((m.countdown + time.Second - 1) / time.Second)
		right = countdownStyle(fmt.Sprintf("Starts in %ds", secs))
	case m.status != "":
		right = statusTextStyle(m.status)
	}

	pad := m.width - ansi.PrintableRuneWidth(left) - ansi.PrintableRuneWidth(right) - 1
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (m *model) statusBarView() string {
	var prev, next string
	if m.change.PrevEnabled {
		prev = statusBarNoteStyle("←")
	} else {
		prev = navDisabledStyle("←")
	}
	if m.change.NextEnabled {
		next = statusBarNoteStyle("→")
	} else {
		next = navDisabledStyle("→")
	}

	progress := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100))
	help := statusBarHelpStyle(helpNote)

	note := m.change.ProgressText
	if m.cfg.ShowGateState && m.gate != player.GateIdle {
		note += " · " + m.gate.String()
	}
	if m.statusMessage != "" {
		note = m.statusMessage
	}
	noteWidth := m.width -
		ansi.PrintableRuneWidth(prev) -
		ansi.PrintableRuneWidth(next) -
		ansi.PrintableRuneWidth(progress) -
		ansi.PrintableRuneWidth(help) - 5
	if noteWidth < 0 {
		noteWidth = 0
	}
	note = truncate.StringWithTail(note, uint(noteWidth), ellipsis)
	switch {
	case m.statusMessage != "" && m.statusMessageIsErr:
		note = errorTitleStyle(note)
	case m.statusMessage != "":
		note = statusBarMessageStyle(" " + note + " ")
	default:
		note = statusBarNoteStyle(" " + note + " ")
	}

	gap := m.width -
		ansi.PrintableRuneWidth(prev) -
		ansi.PrintableRuneWidth(next) -
		ansi.PrintableRuneWidth(note) -
		ansi.PrintableRuneWidth(progress) -
		ansi.PrintableRuneWidth(help) - 3
	if gap < 0 {
		gap = 0
	}

	return " " + prev + " " + next + note +
		statusBarNoteStyle(strings.Repeat(" ", gap)) +
		progress + help
}

const helpNote = " ←/→ navigate · enter play · q quit "

// setViewportSize reserves one header row and the status bar.
func (m *model) setViewportSize() {
	w := m.width
	if m.cfg.MaxWidth > 0 && int(m.cfg.MaxWidth) < w {
		w = int(m.cfg.MaxWidth)
	}
	m.viewport.Width = w
	m.viewport.Height = m.height - statusBarHeight - 1
	if m.viewport.Height < 0 {
		m.viewport.Height = 0
	}
}

// setContent rebuilds the viewport content from the current slide: the
// instruction block first, then the slide body.
func (m *model) setContent() {
	s := m.change.Slide
	if s == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	for _, line := range s.InstructionTexts {
		b.WriteString("  " + instructionStyle(line) + "\n")
	}
	if len(s.InstructionTexts) > 0 {
		b.WriteString("\n")
	}
	width := m.viewport.Width - 2
	if width < 1 {
		width = 1
	}
	for _, line := range strings.Split(s.Body, "\n") {
		b.WriteString("  " + wordwrap.String(line, width) + "\n")
	}
	m.viewport.SetContent(b.String())
}

// COMMANDS

func startLessonCmd(nav *player.Navigator) tea.Cmd {
	return func() tea.Msg {
		nav.Start()
		return nil
	}
}

func navigateCmd(move func()) tea.Cmd {
	return func() tea.Msg {
		move()
		return nil
	}
}

func triggerCmd(nav *player.Navigator) tea.Cmd {
	return func() tea.Msg {
		nav.TriggerPrimary()
		return nil
	}
}

func shutdownCmd(nav *player.Navigator, store scorm.Store) tea.Cmd {
	return func() tea.Msg {
		nav.Teardown()
		if store != nil {
			store.FlushAndDisconnect()
		}
		return nil
	}
}

func clearStatusMessageCmd() tea.Cmd {
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{}
	})
}
