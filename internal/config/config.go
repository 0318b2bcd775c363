// internal/config/config.go
//
// This package handles protmapper configuration. Settings come from an
// optional YAML file; anything the file leaves out falls back to defaults
// that reproduce the SARS-CoV-2 pre-release ingestion.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/indralab/protmapper/internal/fetch"
	"github.com/indralab/protmapper/internal/namemap"
	"github.com/indralab/protmapper/internal/uniprot"
	"gopkg.in/yaml.v3"
)

const (
	// StateDir is the per-project directory holding downloads, logs and the ledger.
	StateDir = ".protmapper"
	// DefaultFile is the config file looked up when no path is given.
	DefaultFile = "protmapper.yaml"
	// EnvConfig names an alternative default config path.
	EnvConfig = "PROTMAPPER_CONFIG"

	defaultOrganism = "SARS-CoV-2"
	defaultTimeout  = 10 * time.Minute
)

// SourceConfig says where the catalog comes from and where it is stored.
type SourceConfig struct {
	URL         string        `yaml:"url"`
	DownloadDir string        `yaml:"download_dir"`
	Filename    string        `yaml:"filename,omitempty"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ExtractConfig tunes the walker.
type ExtractConfig struct {
	MissingIdentifier namemap.MissingIDPolicy `yaml:"missing_identifier"`
	Workers           int                     `yaml:"workers"`
}

// OutputConfig names the TSV file.
type OutputConfig struct {
	TSV string `yaml:"tsv"`
}

// LoggingConfig controls the run log.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Config models protmapper.yaml.
type Config struct {
	Version   int           `yaml:"version"`
	Organism  string        `yaml:"organism"`
	Namespace string        `yaml:"namespace"`
	Source    SourceConfig  `yaml:"source"`
	Extract   ExtractConfig `yaml:"extract"`
	Output    OutputConfig  `yaml:"output"`
	Logging   LoggingConfig `yaml:"logging"`
	Ledger    string        `yaml:"ledger"`

	// BaseDir anchors relative paths: the config file's directory, or the
	// working directory when no file was read.
	BaseDir string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.applyDefaults()
	cfg.normalize()
	return cfg
}

// ResolvePath picks the config file to read: the explicit path, then
// $PROTMAPPER_CONFIG, then protmapper.yaml in dir.
func ResolvePath(explicit, dir string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p
	}
	return filepath.Join(dir, DefaultFile)
}

// Load reads path. A missing file is not an error: defaults anchored at the
// file's directory are returned instead.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	base := filepath.Dir(abs)
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(base), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.BaseDir = base
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &parsed, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// DownloadPath is where the fetched catalog is stored.
func (c *Config) DownloadPath() string {
	return filepath.Join(c.Source.DownloadDir, c.Source.Filename)
}

// LogDir returns the directory of the run log.
func (c *Config) LogDir() string {
	return c.Logging.Dir
}

// Options converts the config into walker options.
func (c *Config) Options(logger namemap.Logger) namemap.Options {
	return namemap.Options{
		Organism:  c.Organism,
		Namespace: c.Namespace,
		MissingID: c.Extract.MissingIdentifier,
		Logger:    logger,
	}
}

// SetDownloadDir overrides the download directory, resolving it like the file would.
func (c *Config) SetDownloadDir(dir string) {
	c.Source.DownloadDir = resolvePath(c.BaseDir, dir)
}

// SetOutput overrides the TSV path.
func (c *Config) SetOutput(path string) {
	c.Output.TSV = resolvePath(c.BaseDir, path)
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if strings.TrimSpace(c.Organism) == "" {
		c.Organism = defaultOrganism
	}
	if strings.TrimSpace(c.Namespace) == "" {
		c.Namespace = uniprot.Namespace
	}
	if strings.TrimSpace(c.Source.URL) == "" {
		c.Source.URL = fetch.DefaultSource
	}
	if strings.TrimSpace(c.Source.DownloadDir) == "" {
		c.Source.DownloadDir = filepath.Join(StateDir, "downloads")
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = defaultTimeout
	}
	if c.Extract.MissingIdentifier == "" {
		c.Extract.MissingIdentifier = namemap.MissingIDFail
	}
	if c.Extract.Workers == 0 {
		c.Extract.Workers = 1
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = filepath.Join(StateDir, "logs")
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Ledger) == "" {
		c.Ledger = filepath.Join(StateDir, "ledger.log")
	}
}

func (c *Config) normalize() {
	c.Organism = strings.TrimSpace(c.Organism)
	c.Namespace = strings.TrimSpace(c.Namespace)
	c.Source.URL = strings.TrimSpace(c.Source.URL)
	c.Source.DownloadDir = resolvePath(c.BaseDir, c.Source.DownloadDir)
	c.Source.Filename = strings.TrimSpace(c.Source.Filename)
	if c.Source.Filename == "" {
		c.Source.Filename = c.Organism + "_prerelease.xml"
	}
	c.Extract.MissingIdentifier = namemap.MissingIDPolicy(strings.ToLower(strings.TrimSpace(string(c.Extract.MissingIdentifier))))
	c.Output.TSV = resolvePath(c.BaseDir, c.Output.TSV)
	c.Logging.Dir = resolvePath(c.BaseDir, c.Logging.Dir)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Ledger = resolvePath(c.BaseDir, c.Ledger)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if c.Organism == "" {
		return fmt.Errorf("organism is required")
	}
	if strings.ContainsAny(c.Organism, "\t\r\n") {
		return fmt.Errorf("organism must not contain tabs or newlines")
	}
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if strings.ContainsAny(c.Source.Filename, `/\`) {
		return fmt.Errorf("source.filename must be a bare file name")
	}
	if !c.Extract.MissingIdentifier.Valid() {
		return fmt.Errorf("extract.missing_identifier must be 'fail' or 'skip'")
	}
	if c.Extract.Workers < 1 {
		return fmt.Errorf("extract.workers must be >= 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
