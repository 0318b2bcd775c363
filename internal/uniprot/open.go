package uniprot

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Open opens a local catalog for reading. Gzip-compressed files (as
// distributed on the UniProt FTP mirrors) are detected by their magic bytes
// and decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("uniprot: open %s: %w", path, err)
	}
	br := bufio.NewReaderSize(f, 1<<16)
	head, _ := br.Peek(len(gzipMagic))
	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := pgzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("uniprot: gzip %s: %w", path, err)
		}
		return &catalogFile{Reader: zr, closers: []io.Closer{zr, f}}, nil
	}
	return &catalogFile{Reader: br, closers: []io.Closer{f}}, nil
}

type catalogFile struct {
	io.Reader
	closers []io.Closer
}

func (c *catalogFile) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
