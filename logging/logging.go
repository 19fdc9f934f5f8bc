// Package logging sets up the file logger. The terminal belongs to the UI,
// so nothing is ever written to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Filename is created inside the profile directory.
const Filename = "t3chat.log"

// Setup opens <profileDir>/t3chat.log for appending and installs a logger at
// the given level as the zerolog global. Close the returned file on exit.
func Setup(profileDir, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create profile dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(profileDir, Filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	logger := New(f, level)
	log.Logger = logger
	return logger, f, nil
}

// New builds a timestamped logger on w. An unknown level falls back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("app", "t3chat").Logger()
}
