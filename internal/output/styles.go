package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#2F71F2", Dark: "#4A90FF"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#FF4672"}
	ColorDim     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleDim     = lipgloss.NewStyle().Foreground(ColorDim)
)

// Render applies style to s unless --no-color is set.
func Render(style lipgloss.Style, s string) string {
	if flagNoColor {
		return s
	}
	return style.Render(s)
}

// Title renders a section heading.
func Title(s string) string { return Render(StyleTitle, s) }

// Dim renders secondary text.
func Dim(s string) string { return Render(StyleDim, s) }

// Success renders a confirmation line.
func Success(s string) string { return Render(StyleSuccess, s) }

// Errorf renders an error line for human output.
func Errorf(format string, args ...any) string {
	return Render(StyleError, fmt.Sprintf(format, args...))
}
