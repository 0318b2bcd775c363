// cmd/protmapper/main.go
//
// protmapper downloads a UniProt catalog for one organism and writes a TSV
// mapping every protein name to its accession.
//
// Commands:
//
//	protmapper run --tsv-out FILE       fetch the catalog, extract, write
//	protmapper extract --input FILE --tsv-out FILE
//	protmapper history [-n 20]          show recent runs from the ledger

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/indralab/protmapper/internal/config"
	"github.com/indralab/protmapper/internal/ledger"
	"github.com/indralab/protmapper/internal/namemap"
	"github.com/mattn/go-isatty"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(ctx, os.Args[2:])
	case "extract":
		err = extractCommand(ctx, os.Args[2:])
	case "history":
		err = historyCommand(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		usage()
		die("unknown command %q", os.Args[1])
	}
	if err != nil {
		die("protmapper: %v", err)
	}
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s run --tsv-out FILE [options]\n", name)
	fmt.Fprintf(os.Stderr, "  %s extract --input FILE --tsv-out FILE [options]\n", name)
	fmt.Fprintf(os.Stderr, "  %s history [-n N]\n", name)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// commonFlags are shared by run and extract.
type commonFlags struct {
	configPath string
	tsvOut     string
	organism   string
	missingID  string
	workers    int
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to protmapper.yaml (default: $"+config.EnvConfig+" or ./"+config.DefaultFile+")")
	fs.StringVar(&c.tsvOut, "tsv-out", "", "the file path for the tsv file of the output")
	fs.StringVar(&c.organism, "organism", "", "organism label written on every row")
	fs.StringVar(&c.missingID, "missing-id", "", "what to do with entries lacking an accession: fail or skip")
	fs.IntVar(&c.workers, "workers", 0, "extract entries on N goroutines (loads the whole catalog)")
	fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
}

// load reads the config file and applies flag overrides on top.
func (c *commonFlags) load() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	cfg, err := config.Load(config.ResolvePath(c.configPath, cwd))
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = cwd
	if v := strings.TrimSpace(c.tsvOut); v != "" {
		cfg.SetOutput(v)
	}
	if v := strings.TrimSpace(c.organism); v != "" {
		cfg.Organism = v
	}
	if v := strings.TrimSpace(c.missingID); v != "" {
		cfg.Extract.MissingIdentifier = namemap.MissingIDPolicy(strings.ToLower(v))
	}
	if c.workers != 0 {
		cfg.Extract.Workers = c.workers
	}
	if v := strings.TrimSpace(c.logLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Output.TSV == "" {
		return nil, fmt.Errorf("--tsv-out is required (or set output.tsv in the config)")
	}
	return cfg, nil
}

func runCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	downloadPath := fs.String("download-path", "", "directory the catalog is downloaded into")
	source := fs.String("source", "", "catalog URL (http, https, ftp, file) or local path")
	noProgress := fs.Bool("no-progress", false, "disable the interactive progress bar")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(*downloadPath); v != "" {
		cfg.SetDownloadDir(v)
	}
	if v := strings.TrimSpace(*source); v != "" {
		cfg.Source.URL = v
	}

	p, err := newPipeline(cfg, os.Stdout, !*noProgress && stdoutIsTerminal())
	if err != nil {
		return err
	}
	defer p.Close()
	input, err := p.Download(ctx)
	if err != nil {
		return err
	}
	_, err = p.Extract(ctx, input, cfg.Source.URL)
	return err
}

func extractCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	input := fs.String("input", "", "local catalog XML file (optionally gzip-compressed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*input) == "" {
		fs.Usage()
		return fmt.Errorf("missing required --input file")
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, os.Stdout, false)
	if err != nil {
		return err
	}
	defer p.Close()
	_, err = p.Extract(ctx, *input, *input)
	return err
}

func historyCommand(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to protmapper.yaml")
	n := fs.Int("n", 20, "number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	cfg, err := config.Load(config.ResolvePath(*configPath, cwd))
	if err != nil {
		return err
	}
	book, err := ledger.New(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	lines, total := book.Tail(*n)
	if total == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	fmt.Printf("Showing %d of %d runs from %s\n", len(lines), total, book.Path())
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
