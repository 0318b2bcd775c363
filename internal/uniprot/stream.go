package uniprot

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// EachEntry decodes r one root-level element at a time and calls fn for
// every element named name that sits directly under the document root.
// Only the current element is held in memory, so arbitrarily large
// catalogs can be processed. Returning an error from fn stops decoding and
// returns that error unchanged.
func EachEntry(ctx context.Context, r io.Reader, name xml.Name, fn func(index int, entry *Node) error) error {
	dec := xml.NewDecoder(r)
	depth := 0
	index := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("uniprot: decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth != 1 || t.Name != name {
				depth++
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry Node
			if err := dec.DecodeElement(&entry, &t); err != nil {
				return fmt.Errorf("uniprot: decode entry %d: %w", index, err)
			}
			if err := fn(index, &entry); err != nil {
				return err
			}
			index++
		case xml.EndElement:
			depth--
		}
	}
}
