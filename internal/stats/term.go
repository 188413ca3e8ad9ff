package stats

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const terminalWidthBackup = 80

var (
	passedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	attemptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TerminalWidth reports the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal that accepts color.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// ColorProgressBar is ProgressBar with each share colored.
func ColorProgressBar(p Progress, width int) string {
	bar := ProgressBar(p, width)
	if bar == "" {
		return ""
	}
	passed, attempted := 0, 0
	for _, r := range bar {
		switch r {
		case '#':
			passed++
		case '+':
			attempted++
		}
	}
	return passedStyle.Render(bar[:passed]) +
		attemptedStyle.Render(bar[passed:passed+attempted]) +
		mutedStyle.Render(bar[passed+attempted:])
}
