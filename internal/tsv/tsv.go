// Package tsv writes and reads name mappings as tab-separated lines:
// name, identifier and organism, one mapping per line, no header.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/indralab/protmapper/internal/namemap"
)

// Extension is the suffix every output file carries.
const Extension = ".tsv"

var (
	// ErrUnsafeField is returned for a field that would break the line format.
	ErrUnsafeField = errors.New("tsv: field contains tab or newline")
	// ErrMalformedLine is returned by Read for a line without exactly three fields.
	ErrMalformedLine = errors.New("tsv: malformed line")
)

// Writer serializes mappings to an underlying io.Writer.
type Writer struct {
	w     *bufio.Writer
	lines int
}

// NewWriter wraps w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one mapping as a single line.
func (w *Writer) Write(m namemap.Mapping) error {
	fields := [3]string{m.Name, m.ID, m.Organism}
	for _, field := range fields {
		if strings.ContainsAny(field, "\t\r\n") {
			return fmt.Errorf("%w: %q (id %s)", ErrUnsafeField, field, m.ID)
		}
	}
	if _, err := w.w.WriteString(strings.Join(fields[:], "\t")); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return nil
}

// WriteAll writes every mapping and flushes.
func (w *Writer) WriteAll(mappings []namemap.Mapping) error {
	for _, m := range mappings {
		if err := w.Write(m); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Read parses mapping lines produced by Writer.
func Read(r io.Reader) ([]namemap.Mapping, error) {
	var out []namemap.Mapping
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w %d: %d fields", ErrMalformedLine, lineNo, len(fields))
		}
		out = append(out, namemap.Mapping{Name: fields[0], ID: fields[1], Organism: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tsv: read: %w", err)
	}
	return out, nil
}

// NormalizePath forces the .tsv extension onto path. A base name that
// already ends in .tsv is kept; otherwise everything from the first dot of
// the base name is replaced, so "out.txt" and "out.tar.gz" both become
// "out.tsv". Dots in directory names are left alone.
func NormalizePath(path string) string {
	if strings.HasSuffix(path, Extension) {
		return path
	}
	dir, base := filepath.Split(path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return dir + base + Extension
}

// WriteFile creates path through a temporary sibling file. fn receives a
// Writer; the file is only renamed into place when fn and the final flush
// succeed, so an aborted run never leaves a truncated file under path.
func WriteFile(path string, fn func(*Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("tsv: create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("tsv: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := NewWriter(tmp)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("tsv: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tsv: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("tsv: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("tsv: rename: %w", err)
	}
	return nil
}
