// Package config loads tactguide.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/tactguide/internal/format"
)

// FileName is the config file looked up in the workspace root.
const FileName = "tactguide.yaml"

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("config file not found")

// Config is the decoded tactguide.yaml.
type Config struct {
	// Stdlib is the Tact standard library directory. Relative paths are
	// taken against the config file.
	Stdlib string `mapstructure:"stdlib"`
	// Exclude holds gitignore-style patterns skipped during discovery.
	Exclude []string `mapstructure:"exclude"`
	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int `mapstructure:"max_file_size"`
	// CacheSize bounds each resolver cache.
	CacheSize int    `mapstructure:"cache_size"`
	LogFile   string `mapstructure:"log_file"`
	Format    Format `mapstructure:"format"`
}

// Format configures the formatter.
type Format struct {
	Indent   string `mapstructure:"indent"`
	MaxWidth int    `mapstructure:"max_width"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		MaxFileSize: 1_000_000,
		CacheSize:   4096,
		Format: Format{
			Indent:   "    ",
			MaxWidth: 100,
		},
	}
}

// Formatter returns a formatter with the configured layout.
func (c Config) Formatter() *format.Formatter {
	f := format.New()
	if c.Format.Indent != "" {
		f.IndentString = c.Format.Indent
	}
	if c.Format.MaxWidth > 0 {
		f.MaxLineWidth = c.Format.MaxWidth
	}
	return f
}

// Load reads the config file at path. A missing file yields Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Stdlib != "" && !filepath.IsAbs(cfg.Stdlib) {
		cfg.Stdlib = filepath.Join(filepath.Dir(path), cfg.Stdlib)
	}
	return cfg, nil
}

// Parse decodes yaml content over the defaults.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg := Default()
	if raw != nil {
		if err := Decode(raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	if cfg.MaxFileSize <= 0 {
		return Config{}, fmt.Errorf("max_file_size must be positive, got %d", cfg.MaxFileSize)
	}
	if cfg.Format.MaxWidth <= 0 {
		return Config{}, fmt.Errorf("format.max_width must be positive, got %d", cfg.Format.MaxWidth)
	}
	return cfg, nil
}

// Decode copies raw settings into cfg. Numbers given as strings are
// accepted; unknown keys are an error.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Find walks up from dir to the nearest directory holding FileName.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
