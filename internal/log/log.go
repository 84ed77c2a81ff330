// Package log provides context-aware logging for gitls.
//
// Diagnostics go to stderr through a logrus logger so that the report on
// stdout stays clean for piping. Debug output is enabled by --verbose and
// everything except errors is silenced by --quiet.
package log

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// Logger wraps a logrus logger with the verbose/quiet switches of the CLI.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
	entry   *logrus.Entry
}

// New creates a new logger writing to out.
func New(out io.Writer, verbose, quiet bool) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		DisableColors:          true,
	})

	switch {
	case quiet:
		l.SetLevel(logrus.ErrorLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}

	return &Logger{out: out, verbose: verbose, quiet: quiet, entry: logrus.NewEntry(l)}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New(io.Discard, false, true)
}

// With returns a logger that adds the given key/value pairs to every entry.
func (l *Logger) With(keyvals ...any) *Logger {
	clone := *l
	clone.entry = l.entry.WithFields(fields(keyvals))
	return &clone
}

// Printf writes formatted output. Suppressed when quiet.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output. Suppressed when quiet.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Debug logs a message with key/value pairs when verbose.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.entry.WithFields(fields(keyvals)).Debug(msg)
}

// Warn logs a message with key/value pairs unless quiet.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.entry.WithFields(fields(keyvals)).Warn(msg)
}

// Error logs a message with key/value pairs. Never suppressed.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.entry.WithFields(fields(keyvals)).Error(msg)
}

// Timed logs the start of a repository operation and returns a func that
// logs its duration. Only prints when verbose.
func (l *Logger) Timed(path, op string) func(err error) {
	if !l.IsVerbose() {
		return func(error) {}
	}
	start := time.Now()
	l.Debug("start "+op, "path", path)
	return func(err error) {
		kv := []any{"path", path, "took", time.Since(start).Round(time.Millisecond)}
		if err != nil {
			kv = append(kv, "error", err)
		}
		l.Debug("done "+op, kv...)
	}
}

// IsVerbose returns true if debug output is enabled.
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}

// fields pairs up keyvals, dropping a trailing key without value.
func fields(keyvals []any) logrus.Fields {
	f := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		f[fmt.Sprint(keyvals[i])] = keyvals[i+1]
	}
	return f
}
