// Package namemap turns UniProt catalog entries into flat
// (name, identifier, organism) mappings.
//
// The walker visits every entry directly under the catalog root and hands
// the entry's name section to the extractor, which enumerates the full and
// short names of every recommended and alternative name block.
package namemap

import (
	"encoding/xml"

	"github.com/indralab/protmapper/internal/uniprot"
)

// MissingIDPolicy decides what happens to an entry without an identifier.
type MissingIDPolicy string

const (
	// MissingIDFail aborts the run on the first entry without an identifier.
	MissingIDFail MissingIDPolicy = "fail"
	// MissingIDSkip drops the entry, logs a warning and keeps going.
	MissingIDSkip MissingIDPolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p MissingIDPolicy) Valid() bool {
	return p == MissingIDFail || p == MissingIDSkip
}

// Logger receives progress and warnings from the walker.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Options carries the per-run constants of an extraction.
type Options struct {
	// Organism labels every mapping produced by the run.
	Organism string
	// Namespace is the XML namespace of catalog elements. Empty means uniprot.Namespace.
	Namespace string
	// MissingID defaults to MissingIDFail.
	MissingID MissingIDPolicy
	Logger    Logger
}

func (o Options) withDefaults() Options {
	if o.Namespace == "" {
		o.Namespace = uniprot.Namespace
	}
	if o.MissingID == "" {
		o.MissingID = MissingIDFail
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	return o
}

func (o Options) name(local string) xml.Name {
	return uniprot.Name(o.Namespace, local)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
