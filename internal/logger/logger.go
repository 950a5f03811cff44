// Package logger provides the leveled, run-tagged logger used across the
// inventory pipeline.
//
// Every record carries the run identifier, timestamp, level, message and the
// call site (function:file:line). Records go to the console and, when a log
// directory is configured, to <dir>/<name>_<YYYY-MM-DD>.log. Only levels in
// the configured LevelSet are recorded.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Config controls logger construction
type Config struct {
	// Name prefixes the log file name
	Name string
	// Levels is the set of enabled level names; empty enables all
	Levels []string
	// Dir is where the daily log file is written; empty disables the file
	Dir string
	// Console overrides stderr; a non-terminal writer gets plain text output
	Console io.Writer
	// NoColor disables terminal colors
	NoColor bool
}

// Logger is a leveled logger tagged with a per-process run id
type Logger struct {
	sl     *slog.Logger
	runID  string
	path   string
	closer io.Closer
}

// New builds a logger. A log file that cannot be opened is not fatal: the
// logger falls back to console-only and records a warning.
func New(cfg Config) (*Logger, error) {
	levels, err := ParseLevels(cfg.Levels)
	if err != nil {
		return nil, err
	}

	console := cfg.Console
	var consoleHandler slog.Handler
	if console == nil {
		console = os.Stderr
		if isatty.IsTerminal(os.Stderr.Fd()) {
			consoleHandler = newTerminalHandler(console, cfg.NoColor)
		}
	}
	if consoleHandler == nil {
		consoleHandler = newTextHandler(console)
	}

	handlers := fanoutHandler{consoleHandler}

	var (
		file    *os.File
		fileErr error
		path    string
	)
	if cfg.Dir != "" {
		name := cfg.Name
		if name == "" {
			name = "siteinventory"
		}
		path = filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", name, time.Now().Format("2006-01-02")))
		file, fileErr = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if fileErr == nil {
			handlers = append(handlers, newTextHandler(file))
		} else {
			path = ""
		}
	}

	runID := uuid.NewString()
	l := &Logger{
		sl:    slog.New(&levelSetHandler{levels: levels, sh: handlers}).With("run_id", runID),
		runID: runID,
		path:  path,
	}
	if file != nil {
		l.closer = file
	}
	if fileErr != nil {
		l.Warning("log file unavailable, logging to console only", "dir", cfg.Dir, "error", fileErr)
	}
	return l, nil
}

// Nop returns a logger that records nothing
func Nop() *Logger {
	return &Logger{sl: slog.New(&levelSetHandler{levels: LevelSet{}, sh: newTextHandler(io.Discard)})}
}

// RunID returns the per-process correlation id
func (l *Logger) RunID() string { return l.runID }

// Path returns the log file path, empty when logging to console only
func (l *Logger) Path() string { return l.path }

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// With returns a logger that adds args to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...), runID: l.runID, path: l.path}
}

// Enabled reports whether records at lvl are recorded
func (l *Logger) Enabled(lvl slog.Level) bool {
	return l.sl.Enabled(context.Background(), lvl)
}

func (l *Logger) Debug(msg string, args ...any)    { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)     { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warning(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any)    { l.log(slog.LevelError, msg, args...) }
func (l *Logger) Critical(msg string, args ...any) { l.log(LevelCritical, msg, args...) }

func (l *Logger) log(lvl slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.sl.Enabled(ctx, lvl) {
		return
	}
	// https://pkg.go.dev/log/slog#example-package-Wrapping
	var pcs [1]uintptr
	// skip Callers, this function, and the exported level method
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), lvl, msg, pcs[0])
	r.Add(args...)
	_ = l.sl.Handler().Handle(ctx, r)
}
