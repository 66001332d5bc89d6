package ui

import "github.com/charmbracelet/lipgloss"

const statusBarHeight = 1

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"}).
			Render

	instructionStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#5A5A5A", Dark: "#9B9B9B"}).
				Render

	countdownStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Background(darkGreen).
			Padding(0, 1).
			Render

	statusTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#337AD6", Dark: "#6BA8F0"}).
			Render

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	navDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#C0C0C0", Dark: "#4A4A4A"}).
				Background(statusBarBg).
				Render

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF5F87"}).
			Padding(0, 1).
			Render

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}).
			Render
)
