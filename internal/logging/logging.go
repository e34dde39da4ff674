// Package logging builds the relay's charmbracelet logger from config.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/chess-relay/internal/config"
)

// Prefix is shown on every text log line.
const Prefix = "relay"

var levelColors = map[log.Level]string{
	log.DebugLevel: "245",
	log.InfoLevel:  "6",
	log.WarnLevel:  "208",
	log.ErrorLevel: "9",
	log.FatalLevel: "13",
}

// New creates a logger writing to w. An unparsable level falls back to info.
//
// With format "auto" the text formatter is used when w is a terminal and
// JSON otherwise, so piped output stays machine readable.
func New(cfg config.LogConfig, w io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	formatter := log.TextFormatter
	if useJSON(cfg.Format, w) {
		formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          Prefix,
		Level:           level,
		Formatter:       formatter,
	})

	if formatter == log.TextFormatter {
		logger.SetStyles(levelStyles())
	}
	return logger
}

func useJSON(format string, w io.Writer) bool {
	switch strings.ToLower(format) {
	case config.FormatJSON:
		return true
	case config.FormatText:
		return false
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	for level, color := range levelColors {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(strings.ToUpper(level.String())).
			Bold(true).
			MaxWidth(5).
			Foreground(lipgloss.Color(color))
	}
	return styles
}
