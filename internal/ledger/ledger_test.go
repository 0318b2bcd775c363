package ledger

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "state", "ledger.log"))
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := book.Append(LevelInfo, fmt.Sprintf("entry-%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestTailOnMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "ledger.log"))
	if err != nil {
		t.Fatal(err)
	}
	if lines, total := book.Tail(10); lines != nil || total != 0 {
		t.Fatalf("Tail = %v, %d; want empty", lines, total)
	}
}

func TestRecordFormatsRuns(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "ledger.log"))
	if err != nil {
		t.Fatal(err)
	}
	book.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	id := NewRunID()
	if err := book.Record(Run{ID: id, Source: "ftp://x/coronavirus.xml", Output: "/tmp/sars.tsv", Entries: 14, Mappings: 60, Fingerprint: "abc"}); err != nil {
		t.Fatal(err)
	}
	if err := book.Record(Run{ID: "r2", Entries: 3, Skipped: 1, Mappings: 2, Fingerprint: "def"}); err != nil {
		t.Fatal(err)
	}
	if err := book.Record(Run{ID: "r3", Err: errors.New("entry has no identifier")}); err != nil {
		t.Fatal(err)
	}
	lines, total := book.Tail(10)
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if !strings.HasPrefix(lines[0], "2026-10-19T12:00:00Z INFO ") || !strings.Contains(lines[0], "run="+id) ||
		!strings.Contains(lines[0], "mappings=60") || !strings.Contains(lines[0], "fingerprint=abc") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], " WARN ") || !strings.Contains(lines[1], "skipped=1") {
		t.Fatalf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], " ERROR ") || !strings.Contains(lines[2], `error="entry has no identifier"`) {
		t.Fatalf("line 2 = %q", lines[2])
	}
	if len(id) != 36 {
		t.Fatalf("run id %q is not a uuid", id)
	}
}
