package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const catalog = `<uniprot xmlns="http://uniprot.org/uniprot"><entry><accession>P0DTC2</accession></entry></uniprot>`

type lines []string

func (l *lines) Printf(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(catalog)))
		fmt.Fprint(w, catalog)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "downloads", "SARS-CoV-2_prerelease.xml")
	var log lines
	var lastDone, lastTotal int64
	res, err := New(WithLogger(&log)).Fetch(context.Background(), srv.URL+"/coronavirus.xml", dest, func(done, total int64) {
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Bytes != int64(len(catalog)) || res.Path != dest {
		t.Fatalf("result = %+v", res)
	}
	if lastDone != int64(len(catalog)) || lastTotal != int64(len(catalog)) {
		t.Fatalf("progress = %d/%d, want %d/%d", lastDone, lastTotal, len(catalog), len(catalog))
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != catalog {
		t.Fatalf("downloaded %q", data)
	}
	if _, err := os.Stat(dest + partSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("part file left behind: %v", err)
	}
	if len(log) == 0 || !strings.Contains(log[0], "does not exist") {
		t.Fatalf("expected directory creation log, got %v", log)
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "catalog.xml")
	_, err := New().Fetch(context.Background(), srv.URL+"/missing.xml", dest, nil)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want 404", err)
	}
	for _, p := range []string{dest, dest + partSuffix} {
		if _, statErr := os.Stat(p); !errors.Is(statErr, os.ErrNotExist) {
			t.Fatalf("%s exists after failure", p)
		}
	}
}

func TestFetchLocalAndFileURL(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.xml")
	if err := os.WriteFile(src, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	for i, source := range []string{src, "file://" + filepath.ToSlash(src)} {
		dest := filepath.Join(dir, fmt.Sprintf("copy-%d.xml", i))
		res, err := New().Fetch(context.Background(), source, dest, nil)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", source, err)
		}
		if res.Bytes != int64(len(catalog)) {
			t.Fatalf("Fetch(%s) bytes = %d", source, res.Bytes)
		}
	}
}

func TestFetchUnsupportedScheme(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "catalog.xml")
	_, err := New().Fetch(context.Background(), "gopher://example.org/catalog.xml", dest, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported scheme") {
		t.Fatalf("err = %v, want unsupported scheme", err)
	}
}

func TestFetchCancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.xml")
	if err := os.WriteFile(src, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dest := filepath.Join(dir, "copy.xml")
	if _, err := New().Fetch(ctx, src, dest, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dest exists after cancel")
	}
}
