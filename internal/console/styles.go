package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorTitle   = lipgloss.Color("#2196F3")
	colorError   = lipgloss.Color("#e53935")
	colorSuccess = lipgloss.Color("#8BC34A")
)

type styles struct {
	title   lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
}

// newStyles binds the styles to out's renderer, so colour is dropped
// when out is not a terminal (pipes, files, tests).
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		err:     r.NewStyle().Foreground(colorError),
		success: r.NewStyle().Foreground(colorSuccess),
	}
}
