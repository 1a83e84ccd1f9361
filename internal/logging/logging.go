// Package logging builds the process logger. The editor runs fullscreen in
// the terminal, so events go to a file, never stdout.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger appending JSON events to the file at path. An
// unparseable level falls back to info; an empty path returns a disabled
// logger. The file stays open for the life of the process.
func New(path, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if path == "" {
		return zerolog.Nop(), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
	}

	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), nil
}
