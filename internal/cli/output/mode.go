// Package output renders command results as styled text, markdown, or
// JSON, picking a format from the environment when none is forced.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto picks text on a terminal and markdown when piped.
	ModeAuto Mode = "auto"

	// ModeText is styled terminal output.
	ModeText Mode = "text"

	// ModeMarkdown is plain markdown, suitable for scripts and agents.
	ModeMarkdown Mode = "markdown"

	// ModeJSON is machine-readable JSON.
	ModeJSON Mode = "json"
)

// ParseMode normalizes a user-supplied format string.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeText, ModeMarkdown, ModeJSON:
		return Mode(s)
	case "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

// detectMode resolves ModeAuto against the writer: text for a terminal,
// markdown for anything else.
func detectMode(w io.Writer) Mode {
	f, ok := w.(*os.File)
	if !ok {
		return ModeMarkdown
	}
	if termenv.NewOutput(f).ColorProfile() == termenv.Ascii {
		return ModeMarkdown
	}
	return ModeText
}
