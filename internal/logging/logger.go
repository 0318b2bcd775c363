package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FileName is the log file created inside the log directory.
const FileName = "protmapper.log"

// Logger appends leveled, timestamped lines to <dir>/protmapper.log and
// mirrors them to a console writer, so a failed run can be inspected after
// the terminal is gone.
type Logger struct {
	file *os.File
	log  *logrus.Logger
}

// New creates (or reuses) the log file inside dir. console may be nil.
func New(dir, level string, console io.Writer) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	var out io.Writer = f
	if console != nil {
		out = io.MultiWriter(f, console)
	}
	return &Logger{file: f, log: newLogrus(out, lvl)}, nil
}

// NewConsole returns a Logger that only writes to w.
func NewConsole(w io.Writer, level string) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return &Logger{log: newLogrus(w, lvl)}, nil
}

func newLogrus(out io.Writer, lvl logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return l
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns an entry carrying fields, for structured run context.
func (l *Logger) With(fields map[string]any) *logrus.Entry {
	if l == nil || l.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		return logrus.NewEntry(discard)
	}
	return l.log.WithFields(logrus.Fields(fields))
}

// Printf writes an informational line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Infof(format, args...)
}

// Debugf writes a debug line.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Debugf(format, args...)
}

// Warnf writes a warning line.
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Warnf(format, args...)
}

// Errorf writes an error line.
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Errorf(format, args...)
}
