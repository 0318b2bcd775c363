// Package ledger keeps an append-only journal of protmapper runs.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents the severity of a ledger entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Run describes one finished (or failed) ingestion.
type Run struct {
	ID          string
	Source      string
	Output      string
	Entries     int
	Skipped     int
	Mappings    int
	Fingerprint string
	Err         error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Ledger persists run records to a text file.
type Ledger struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a ledger that writes to the provided path.
func New(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Ledger{path: path, now: time.Now}, nil
}

// Path returns the file backing this ledger.
func (l *Ledger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry to the ledger.
func (l *Ledger) Append(level Level, message string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %-5s %s\n",
		l.now().UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: open: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("ledger: write: %w", err)
	}
	return nil
}

// Record appends the outcome of a run.
func (l *Ledger) Record(run Run) error {
	msg := fmt.Sprintf("run=%s source=%q output=%q entries=%d skipped=%d mappings=%d",
		run.ID, run.Source, run.Output, run.Entries, run.Skipped, run.Mappings)
	if run.Err != nil {
		return l.Append(LevelError, fmt.Sprintf("%s error=%q", msg, run.Err.Error()))
	}
	level := LevelInfo
	if run.Skipped > 0 {
		level = LevelWarn
	}
	return l.Append(level, fmt.Sprintf("%s fingerprint=%s", msg, run.Fingerprint))
}

// Tail returns up to maxLines of the most recent entries and the total
// number of entries in the ledger.
func (l *Ledger) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}
