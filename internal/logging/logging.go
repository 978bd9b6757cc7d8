// Package logging wraps zerolog with the leveled helper functions used
// throughout mediavault.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	lg  = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
	lf  *os.File
	lvl int
)

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}

// Setup directs log output to the console and the given log file.
//
// debugLevel raises verbosity: 0 suppresses debug lines, higher values let
// progressively chattier D calls through.
func Setup(logFilePath string, debugLevel int) error {
	mu.Lock()
	defer mu.Unlock()

	lvl = debugLevel

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
	}
	lf = f

	multi := zerolog.MultiLevelWriter(consoleWriter(os.Stderr), f)
	lg = zerolog.New(multi).With().Timestamp().Logger()

	if debugLevel > 0 {
		lg = lg.Level(zerolog.DebugLevel)
	} else {
		lg = lg.Level(zerolog.InfoLevel)
	}
	return nil
}

// SetLevel adjusts the debug verbosity after Setup.
func SetLevel(debugLevel int) {
	mu.Lock()
	defer mu.Unlock()
	lvl = debugLevel
	if debugLevel > 0 {
		lg = lg.Level(zerolog.DebugLevel)
	} else {
		lg = lg.Level(zerolog.InfoLevel)
	}
}

// Close releases the log file handle.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if lf != nil {
		_ = lf.Close()
		lf = nil
	}
}

// I logs an info message.
func I(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	lg.Info().Msgf(format, args...)
}

// S logs a success message.
func S(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	lg.Info().Str("outcome", "success").Msgf(format, args...)
}

// W logs a warning message.
func W(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	lg.Warn().Msgf(format, args...)
}

// E logs an error message.
func E(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	lg.Error().Msgf(format, args...)
}

// D logs a debug message if the configured debug level is at least l.
func D(l int, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if lvl < l {
		return
	}
	lg.Debug().Msgf(format, args...)
}
