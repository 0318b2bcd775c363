package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/indralab/protmapper/internal/config"
	"github.com/indralab/protmapper/internal/fetch"
	"github.com/indralab/protmapper/internal/ledger"
	"github.com/indralab/protmapper/internal/logging"
	"github.com/indralab/protmapper/internal/namemap"
	"github.com/indralab/protmapper/internal/tsv"
	"github.com/indralab/protmapper/internal/tui"
	"github.com/indralab/protmapper/internal/uniprot"
)

// pipeline ties one configured run together: download, extraction, TSV
// output and the ledger record.
type pipeline struct {
	cfg      *config.Config
	log      *logging.Logger
	ledger   *ledger.Ledger
	fetcher  *fetch.Client
	out      io.Writer
	progress bool
	now      func() time.Time
}

func newPipeline(cfg *config.Config, out io.Writer, progress bool) (*pipeline, error) {
	logger, err := logging.New(cfg.LogDir(), cfg.Logging.Level, os.Stderr)
	if err != nil {
		return nil, err
	}
	book, err := ledger.New(cfg.Ledger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &pipeline{
		cfg:      cfg,
		log:      logger,
		ledger:   book,
		fetcher:  fetch.New(fetch.WithLogger(logger), fetch.WithTimeout(cfg.Source.Timeout)),
		out:      out,
		progress: progress,
		now:      time.Now,
	}, nil
}

func (p *pipeline) Close() error {
	return p.log.Close()
}

// Download fetches the configured source into the download directory and
// returns the local path.
func (p *pipeline) Download(ctx context.Context) (string, error) {
	dest := p.cfg.DownloadPath()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Source.Timeout)
	defer cancel()

	fetchFn := func(ctx context.Context, report tui.ReportFunc) error {
		res, err := p.fetcher.Fetch(ctx, p.cfg.Source.URL, dest, fetch.ProgressFunc(report))
		if err == nil {
			p.log.Printf("downloaded %s (%s)", res.Path, tui.HumanBytes(res.Bytes))
		}
		return err
	}
	var err error
	if p.progress {
		err = tui.RunDownload(ctx, p.out, "Downloading "+filepath.Base(p.cfg.Source.URL), fetchFn)
	} else {
		err = fetchFn(ctx, func(int64, int64) {})
	}
	if err != nil {
		p.record(ledger.Run{ID: ledger.NewRunID(), Source: p.cfg.Source.URL, Err: err})
		return "", err
	}
	return dest, nil
}

// Extract walks the catalog at input and writes the TSV. source is only
// used for reporting.
func (p *pipeline) Extract(ctx context.Context, input, source string) (tui.Summary, error) {
	start := p.now()
	runID := ledger.NewRunID()
	output := tsv.NormalizePath(p.cfg.Output.TSV)
	opts := p.cfg.Options(p.log)
	hasher := namemap.NewHasher()
	entry := p.log.With(map[string]any{"run": runID, "organism": p.cfg.Organism})
	entry.Infof("extracting names from %s", input)

	var sum namemap.Summary
	err := tsv.WriteFile(output, func(w *tsv.Writer) error {
		rc, err := uniprot.Open(input)
		if err != nil {
			return err
		}
		defer rc.Close()
		emit := func(m namemap.Mapping) error {
			if err := hasher.Add(m); err != nil {
				return fmt.Errorf("fingerprint: %w", err)
			}
			return w.Write(m)
		}

		if p.cfg.Extract.Workers > 1 {
			doc, err := uniprot.Parse(rc)
			if err != nil {
				return err
			}
			mappings, s, err := namemap.ExtractAllParallel(ctx, doc, opts, p.cfg.Extract.Workers)
			sum = s
			if err != nil {
				return err
			}
			for _, m := range mappings {
				if err := emit(m); err != nil {
					return err
				}
			}
			return nil
		}
		s, err := namemap.Stream(ctx, rc, opts, emit)
		sum = s
		return err
	})

	run := ledger.Run{
		ID:       runID,
		Source:   source,
		Output:   output,
		Entries:  sum.Entries,
		Skipped:  sum.Skipped,
		Mappings: sum.Mappings,
		Err:      err,
	}
	if err != nil {
		entry.Errorf("run failed: %v", err)
		p.record(run)
		return tui.Summary{}, err
	}
	run.Fingerprint = hasher.Sum()
	p.record(run)
	entry.Infof("wrote %d mappings for %d entries to %s", sum.Mappings, sum.Entries, output)

	summary := tui.Summary{
		RunID:       runID,
		Source:      source,
		Output:      output,
		Entries:     sum.Entries,
		Skipped:     sum.Skipped,
		Mappings:    sum.Mappings,
		Fingerprint: run.Fingerprint,
		Elapsed:     p.now().Sub(start),
	}
	fmt.Fprintln(p.out, tui.RenderSummary(summary))
	return summary, nil
}

func (p *pipeline) record(run ledger.Run) {
	if err := p.ledger.Record(run); err != nil {
		p.log.Warnf("ledger: %v", err)
	}
}
