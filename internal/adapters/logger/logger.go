package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings of the debug log.
const (
	debugLogMaxSizeMB  = 10
	debugLogMaxBackups = 3
	debugLogMaxAgeDays = 14
)

// messager matches errors that can report their own message without the chain, such as
// *zerr.Error.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
	debug    io.WriteCloser
}

// New creates a new Logger instance writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.rebuildLocked()
	return l
}

// SetOutput updates the logger's output destination.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuildLocked()
}

// SetJSON switches between JSON and pretty console output.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuildLocked()
}

// EnableDebugFile additionally writes every record, debug level included, as JSON to a
// size-rotated file at path. An empty path selects .cicd/debug.log.
func (l *Logger) EnableDebugFile(path string) error {
	if path == "" {
		path = domain.DefaultDebugLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create debug log directory"), "path", path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.debug != nil {
		_ = l.debug.Close()
	}
	l.debug = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    debugLogMaxSizeMB,
		MaxBackups: debugLogMaxBackups,
		MaxAge:     debugLogMaxAgeDays,
	}
	l.rebuildLocked()
	return nil
}

// Close closes the debug log, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.debug == nil {
		return nil
	}
	err := l.debug.Close()
	l.debug = nil
	l.rebuildLocked()
	return err
}

// rebuildLocked recreates the slog logger from the current settings.
// Must be called with l.mu held.
func (l *Logger) rebuildLocked() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}

	if l.debug != nil {
		handler = teeHandler{
			handler,
			slog.NewJSONHandler(l.debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		}
	}
	l.logger = slog.New(handler)
}

// Debug logs a message that only reaches the debug log.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error with its cause chain and metadata.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// errorEntry is one level of an error chain.
type errorEntry struct {
	message  string
	metadata map[string]any
}

// collectErrorEntries walks the chain of zerr errors. The first error that is not a
// zerr error contributes its full message and ends the walk. A wrapper without a message
// only carries metadata, which is shown on its cause.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	var carried map[string]any
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, errorEntry{message: current.Error(), metadata: carried})
			break
		}

		var metadata map[string]any
		if zErr, ok := current.(*zerr.Error); ok {
			metadata = zErr.Metadata()
		}
		next := errors.Unwrap(current)

		if m.Message() == "" && next != nil {
			carried = mergeMetadata(carried, metadata)
			current = next
			continue
		}

		entries = append(entries, errorEntry{message: m.Message(), metadata: mergeMetadata(carried, metadata)})
		carried = nil
		current = next
	}
	return entries
}

func mergeMetadata(outer, inner map[string]any) map[string]any {
	if len(outer) == 0 {
		return inner
	}
	merged := maps.Clone(outer)
	maps.Copy(merged, inner)
	return merged
}

// formatErrorEntries renders the chain as the main error followed by its causes.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(strings.TrimRight(entry.message, "\n"), "\n")

		first, indent := "Error: ", "       "
		if i > 0 {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			first, indent = "    → ", "      "
		}

		lines = append(lines, first+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}

		keys := make([]string, 0, len(entry.metadata))
		for k := range entry.metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s%s=%v", indent, k, entry.metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
