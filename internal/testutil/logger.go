package testutil

import (
	"log/slog"
)

// DiscardLogger returns a slog.Logger that drops all output.
// Use it in tests to keep output quiet; log.Logger is an alias for
// *slog.Logger, so the result satisfies every logger parameter.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
