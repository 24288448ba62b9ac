package aveplay

import (
	"os"

	"github.com/rs/zerolog"
)

var pkgLogger = zerolog.New(os.Stderr).With().Timestamp().Str("component", "aveplay").Logger()

// SetLogger replaces the package logger. Players created afterwards derive
// their session loggers from it. Call it before creating any player.
func SetLogger(logger zerolog.Logger) {
	pkgLogger = logger.With().Str("component", "aveplay").Logger()
}
