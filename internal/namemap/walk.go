package namemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/indralab/protmapper/internal/uniprot"
	"golang.org/x/sync/errgroup"
)

// ErrMissingIdentifier marks an entry that carries no accession.
var ErrMissingIdentifier = errors.New("namemap: entry has no identifier")

// ExtractAll walks every entry under the document root in document order
// and concatenates the mappings of each entry.
func ExtractAll(doc *uniprot.Document, opts Options) ([]Mapping, error) {
	out, _, err := Walk(doc, opts)
	return out, err
}

// Walk is ExtractAll that also reports what it saw.
func Walk(doc *uniprot.Document, opts Options) ([]Mapping, Summary, error) {
	var sum Summary
	if doc == nil {
		return nil, sum, nil
	}
	opts = opts.withDefaults()
	var out []Mapping
	for i, entry := range doc.Root.ChildrenNamed(opts.name("entry")) {
		sum.Entries++
		mappings, skipped, err := extractEntry(i, entry, opts)
		if err != nil {
			return nil, sum, err
		}
		if skipped {
			sum.Skipped++
		}
		out = append(out, mappings...)
	}
	sum.Mappings = len(out)
	return out, sum, nil
}

// ExtractAllParallel extracts entries on up to workers goroutines. Output
// order is identical to ExtractAll.
func ExtractAllParallel(ctx context.Context, doc *uniprot.Document, opts Options, workers int) ([]Mapping, Summary, error) {
	var sum Summary
	if doc == nil {
		return nil, sum, nil
	}
	if workers < 1 {
		workers = 1
	}
	opts = opts.withDefaults()
	entries := doc.Root.ChildrenNamed(opts.name("entry"))
	results := make([][]Mapping, len(entries))
	var skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mappings, skip, err := extractEntry(i, entry, opts)
			if err != nil {
				return err
			}
			if skip {
				skipped.Add(1)
			}
			results[i] = mappings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, sum, err
	}
	if err := ctx.Err(); err != nil {
		return nil, sum, err
	}

	var out []Mapping
	for _, mappings := range results {
		out = append(out, mappings...)
	}
	sum.Entries = len(entries)
	sum.Skipped = int(skipped.Load())
	sum.Mappings = len(out)
	return out, sum, nil
}

// Stream decodes the catalog in r entry by entry and passes each mapping to
// emit as soon as it is extracted. Memory use is bounded by the largest
// entry rather than the catalog.
func Stream(ctx context.Context, r io.Reader, opts Options, emit func(Mapping) error) (Summary, error) {
	opts = opts.withDefaults()
	var sum Summary
	err := uniprot.EachEntry(ctx, r, opts.name("entry"), func(index int, entry *uniprot.Node) error {
		sum.Entries++
		mappings, skipped, err := extractEntry(index, entry, opts)
		if err != nil {
			return err
		}
		if skipped {
			sum.Skipped++
		}
		for _, m := range mappings {
			if err := emit(m); err != nil {
				return err
			}
			sum.Mappings++
		}
		return nil
	})
	return sum, err
}

func extractEntry(index int, entry *uniprot.Node, opts Options) ([]Mapping, bool, error) {
	acc := entry.Child(opts.name("accession"))
	if acc == nil || strings.TrimSpace(acc.Text) == "" {
		return nil, true, missingIdentifier(index, opts)
	}
	id := strings.TrimSpace(acc.Text)
	opts.Logger.Debugf("processing uniprot id %s", id)
	return ExtractNames(entry.Child(opts.name("protein")), id, opts), false, nil
}

// missingIdentifier is the only place the missing-identifier policy is applied.
func missingIdentifier(index int, opts Options) error {
	err := fmt.Errorf("%w (entry %d)", ErrMissingIdentifier, index)
	if opts.MissingID == MissingIDSkip {
		opts.Logger.Warnf("skipping entry: %v", err)
		return nil
	}
	return err
}
