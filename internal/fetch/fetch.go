// Package fetch downloads a catalog from a remote or local source into a
// local file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultSource is the UniProt pre-release coronavirus catalog.
	DefaultSource = "ftp://ftp.uniprot.org/pub/databases/uniprot/pre_release/coronavirus.xml"
	// DefaultTimeout bounds connection setup for remote sources.
	DefaultTimeout = 30 * time.Second

	partSuffix = ".part"
)

// ProgressFunc is called as bytes arrive. total is -1 when the size is unknown.
type ProgressFunc func(done, total int64)

// Logger receives informational messages.
type Logger interface {
	Printf(format string, args ...any)
}

// Result describes a completed download.
type Result struct {
	Source string
	Path   string
	Bytes  int64
}

// Client fetches catalogs over http(s), ftp or from the local filesystem.
type Client struct {
	http    *http.Client
	timeout time.Duration
	logger  Logger
}

// Option customizes a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the client used for http and https sources.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout overrides the connection timeout for remote sources.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger routes informational messages to l.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New builds a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch copies source into dest. The data is written to dest+".part" and
// renamed once complete, so dest only ever holds a full download. Missing
// parent directories of dest are created.
func (c *Client) Fetch(ctx context.Context, source, dest string, progress ProgressFunc) (Result, error) {
	res := Result{Source: source, Path: dest}
	if progress == nil {
		progress = func(int64, int64) {}
	}
	if err := c.ensureDir(filepath.Dir(dest)); err != nil {
		return res, err
	}

	part := dest + partSuffix
	f, err := os.Create(part)
	if err != nil {
		return res, fmt.Errorf("fetch: create %s: %w", part, err)
	}
	c.printf("writing %s to %s", source, dest)
	n, err := c.copy(ctx, source, f, progress)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("fetch: close %s: %w", part, closeErr)
	}
	if err != nil {
		os.Remove(part)
		return res, err
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return res, fmt.Errorf("fetch: rename %s: %w", part, err)
	}
	res.Bytes = n
	return res, nil
}

func (c *Client) copy(ctx context.Context, source string, w io.Writer, progress ProgressFunc) (int64, error) {
	if !strings.Contains(source, "://") {
		return copyLocal(ctx, source, w, progress)
	}
	u, err := url.Parse(source)
	if err != nil {
		return 0, fmt.Errorf("fetch: parse source: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return c.copyHTTP(ctx, u, w, progress)
	case "ftp":
		return c.copyFTP(ctx, u, w, progress)
	case "file":
		return copyLocal(ctx, u.Path, w, progress)
	default:
		return 0, fmt.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
}

func (c *Client) copyHTTP(ctx context.Context, u *url.URL, w io.Writer, progress ProgressFunc) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("fetch: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: GET %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return 0, fmt.Errorf("fetch: GET %s: %s", u.Redacted(), resp.Status)
	}
	return copyWithProgress(ctx, w, resp.Body, resp.ContentLength, progress)
}

func copyLocal(ctx context.Context, path string, w io.Writer, progress ProgressFunc) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("fetch: open %s: %w", path, err)
	}
	defer f.Close()
	total := int64(-1)
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}
	return copyWithProgress(ctx, w, f, total, progress)
}

func (c *Client) ensureDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fetch: stat %s: %w", dir, err)
	}
	c.printf("the path %s does not exist, creating", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fetch: create %s: %w", dir, err)
	}
	return nil
}

func (c *Client) printf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

type progressReader struct {
	ctx      context.Context
	r        io.Reader
	done     int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.progress(p.done, p.total)
	}
	return n, err
}

func copyWithProgress(ctx context.Context, w io.Writer, r io.Reader, total int64, progress ProgressFunc) (int64, error) {
	if total < 0 {
		total = -1
	}
	progress(0, total)
	n, err := io.Copy(w, &progressReader{ctx: ctx, r: r, total: total, progress: progress})
	if err != nil {
		return n, fmt.Errorf("fetch: copy: %w", err)
	}
	return n, nil
}
