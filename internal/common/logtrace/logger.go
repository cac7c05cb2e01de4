// Package logtrace provides logging utilities for the hobbyhub client.
// It integrates with zerolog for structured logging.
package logtrace

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// Configures zerolog to output to stderr with timestamps.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// SetQuiet raises the global log level so only warnings and errors are
// emitted. The CLI enables this unless --verbose is set, keeping command
// output clean.
func SetQuiet() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}
