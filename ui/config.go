package ui

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir string `env:"HOME"`

	// Source is the lesson path or URL being played.
	Source string

	// MaxWidth caps the rendered slide width.
	MaxWidth uint

	EnableMouse bool
	Watch       bool

	// For debugging the UI
	ShowGateState bool `env:"SLGTI_SHOW_GATE_STATE" envDefault:"false"`
}
