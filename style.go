package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

var keywordStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"})

func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph wraps and indents help text the way it renders in the
// command output.
func paragraph(s string) string {
	return strings.TrimRight(indent.String(wordwrap.String(s, 78), 2), "\n")
}
