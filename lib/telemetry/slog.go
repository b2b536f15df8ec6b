package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text handler used by every binary and
// test in this repo. debug widens the level to include slog.Debug.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
