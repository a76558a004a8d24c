package newver

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Styles used for console output.
var (
	// StyleVersion highlights version numbers.
	StyleVersion = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))

	// StyleFile highlights file names.
	StyleFile = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	// StylePrompt marks interactive questions.
	StylePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))

	// StyleCommand marks echoed commands.
	StyleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	// StyleDim is used for command output and other chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// NewLogger returns a logger writing to w. Quiet keeps only errors;
// verbose adds debug messages and timestamps.
func NewLogger(w io.Writer, quiet, verbose bool) *log.Logger {
	level := log.InfoLevel
	switch {
	case quiet:
		level = log.ErrorLevel
	case verbose:
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		ReportCaller:    false,
	})
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// cleanOutput trims command output and the trailing whitespace of each line.
func cleanOutput(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.Join(lines, "\n")
}
