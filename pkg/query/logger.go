package query

import (
	"os"

	"github.com/rs/zerolog"
)

// activeLogger is silent by default (zerolog.Disabled); an embedder wires
// in its own sink via SetLogger the way encore's runtime.Logger() swaps the
// package-level logger for a request-scoped one.
var activeLogger = newDefaultLogger()

func newDefaultLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled).With().Timestamp().Logger()
	return &l
}

// SetLogger swaps the logger every Builder uses for debug events (goal
// count and limit at Run, and the terminal error, such as a timeout, when a
// run ends with one). Pass nil to restore silence.
func SetLogger(l *zerolog.Logger) {
	if l == nil {
		activeLogger = newDefaultLogger()
		return
	}
	activeLogger = l
}

func logger() *zerolog.Logger { return activeLogger }
