package tsv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/indralab/protmapper/internal/namemap"
)

func TestWriteSpikeLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteAll([]namemap.Mapping{{Name: "Spike glycoprotein", ID: "P0DTC2", Organism: "SARS-CoV-2"}}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if got, want := buf.String(), "Spike glycoprotein\tP0DTC2\tSARS-CoV-2\n"; got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []namemap.Mapping{{Name: "Spike glycoprotein", ID: "P0DTC2", Organism: "SARS-CoV-2"}}
	if !reflect.DeepEqual(back, want) {
		t.Fatalf("round trip = %+v, want %+v", back, want)
	}
}

func TestWriteRejectsUnsafeFields(t *testing.T) {
	for _, m := range []namemap.Mapping{
		{Name: "a\tb", ID: "P1", Organism: "x"},
		{Name: "a", ID: "P1\n", Organism: "x"},
		{Name: "a", ID: "P1", Organism: "x\r"},
	} {
		var buf bytes.Buffer
		if err := NewWriter(&buf).Write(m); !errors.Is(err, ErrUnsafeField) {
			t.Fatalf("Write(%+v) err = %v, want ErrUnsafeField", m, err)
		}
	}
}

func TestReadRejectsMalformedLines(t *testing.T) {
	_, err := Read(strings.NewReader("ok\tP1\tx\nbroken\tP2\n"))
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("err = %v, want ErrMalformedLine", err)
	}
	if !strings.Contains(err.Error(), "2") {
		t.Fatalf("err = %v, want line number", err)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"out.tsv":             "out.tsv",
		"out":                 "out.tsv",
		"out.csv":             "out.tsv",
		"out.tar.gz":          "out.tsv",
		"data.v1/out.txt":     "data.v1/out.tsv",
		"/tmp/sars/names.tsv": "/tmp/sars/names.tsv",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != filepath.FromSlash(want) && got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFileRenamesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "names.tsv")
	err := WriteFile(path, func(w *Writer) error {
		if err := w.Write(namemap.Mapping{Name: "S", ID: "P0DTC2", Organism: "SARS-CoV-2"}); err != nil {
			return err
		}
		return w.Write(namemap.Mapping{Name: "E2", ID: "P0DTC2", Organism: "SARS-CoV-2"})
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "S\tP0DTC2\tSARS-CoV-2\nE2\tP0DTC2\tSARS-CoV-2\n"; got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "nested", "*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestWriteFileLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.tsv")
	boom := errors.New("walk failed")
	err := WriteFile(path, func(w *Writer) error {
		if err := w.Write(namemap.Mapping{Name: "S", ID: "P0DTC2", Organism: "SARS-CoV-2"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output exists after failure: %v", statErr)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("dir not empty after failure: %v", entries)
	}
}
