// SPDX-License-Identifier: MPL-2.0

// Package logging builds the run logger shared by the reader, the parser and
// the classification pass.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout written to the log file.
const TimeFormat = "2006/01/02 15:04:05"

type (
	// Options configures New.
	Options struct {
		// FilePath is the log file, truncated on every run. Empty disables the file sink.
		FilePath string
		// Level is one of debug, info, warn, error. Empty means info.
		Level string
		// Verbose mirrors every record to Stderr at debug level.
		Verbose bool
		// Stderr receives the verbose mirror. Defaults to os.Stderr.
		Stderr io.Writer
	}

	// Logger wraps the configured logger with the file it writes to.
	Logger struct {
		*log.Logger
		file *os.File
	}
)

// New opens the log sinks described by opts.
func New(opts Options) (*Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var writers []io.Writer
	var file *os.File
	if opts.FilePath != "" {
		f, err := os.Create(opts.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}
	if opts.Verbose {
		level = log.DebugLevel
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, stderr)
	}

	if len(writers) == 0 {
		return &Logger{Logger: Discard()}, nil
	}

	logger := log.NewWithOptions(io.MultiWriter(writers...), log.Options{
		Level:           level,
		Prefix:          "vro-diff",
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
	})
	return &Logger{Logger: logger, file: file}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Discard returns a logger that drops every record.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
