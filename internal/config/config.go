package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Filter variant constants
	VariantHK      = "hk"
	VariantGeneric = "generic"

	// Default values
	DefaultOutputDir   = "output"
	DefaultVariant     = VariantHK
	DefaultMinRows     = 7
	DefaultMinCols     = 3
	DefaultEmptyRatio  = 0.40
	DefaultConcurrency = 2
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the table recovery CLI
type Config struct {
	// Output configuration
	OutputDir string

	// Extraction configuration
	Pages       string // page selection, e.g. "1-3,5,7-9"; empty means all pages
	Concurrency int    // documents processed in parallel
	MaxFileSize int64  // maximum PDF file size in bytes

	// Filter configuration
	Variant    string
	MinRows    int
	MinCols    int
	EmptyRatio float64

	// Application configuration
	Version  string
	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputDir:   DefaultOutputDir,
		Pages:       "",
		Concurrency: DefaultConcurrency,
		MaxFileSize: DefaultMaxFileSize,
		Variant:     DefaultVariant,
		MinRows:     DefaultMinRows,
		MinCols:     DefaultMinCols,
		EmptyRatio:  DefaultEmptyRatio,
		Version:     "1.0.0",
		LogLevel:    DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.OutputDir != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDir); err == nil {
			cfg.OutputDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("TABLEMEND")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("out", cfg.OutputDir)
	viper.SetDefault("pages", cfg.Pages)
	viper.SetDefault("concurrency", cfg.Concurrency)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("variant", cfg.Variant)
	viper.SetDefault("minrows", cfg.MinRows)
	viper.SetDefault("mincols", cfg.MinCols)
	viper.SetDefault("emptyratio", cfg.EmptyRatio)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("out", cfg.OutputDir, "Root directory for per-document output trees")
	pflag.String("pages", cfg.Pages, "Pages to process, e.g. '1-3,5,7-9' (default: all pages)")
	pflag.Int("concurrency", cfg.Concurrency, "Number of documents processed in parallel")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("variant", cfg.Variant, "File-level filter variant: 'hk' or 'generic'")
	pflag.Int("minrows", cfg.MinRows, "Minimum data rows a persisted table must keep")
	pflag.Int("mincols", cfg.MinCols, "Minimum columns a persisted table must keep")
	pflag.Float64("emptyratio", cfg.EmptyRatio, "Maximum tolerated ratio of empty cells per table")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("pages", pflag.Lookup("pages"))
	_ = viper.BindPFlag("concurrency", pflag.Lookup("concurrency"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("variant", pflag.Lookup("variant"))
	_ = viper.BindPFlag("minrows", pflag.Lookup("minrows"))
	_ = viper.BindPFlag("mincols", pflag.Lookup("mincols"))
	_ = viper.BindPFlag("emptyratio", pflag.Lookup("emptyratio"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] report.pdf [more.pdf ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ntablemend - recovers clean CSV tables from financial statement PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s annual_report.pdf                       "+
			"# all pages into ./output\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pages=40-55 annual_report.pdf         "+
			"# financial statement pages only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --variant=generic --out=/data *.pdf     # non-HK documents\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_OUT         Output root directory\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_PAGES       Page selection\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_CONCURRENCY Parallel documents\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_MAXFILESIZE Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_VARIANT     Filter variant\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_MINROWS     Minimum table rows\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_MINCOLS     Minimum table columns\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_EMPTYRATIO  Maximum empty cell ratio\n")
		fmt.Fprintf(os.Stderr, "  TABLEMEND_LOGLEVEL    Log level\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.OutputDir = viper.GetString("out")
	cfg.Pages = viper.GetString("pages")
	cfg.Concurrency = viper.GetInt("concurrency")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Variant = viper.GetString("variant")
	cfg.MinRows = viper.GetInt("minrows")
	cfg.MinCols = viper.GetInt("mincols")
	cfg.EmptyRatio = viper.GetFloat64("emptyratio")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate output directory
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	// Check if output directory exists, create if it doesn't
	if _, err := os.Stat(c.OutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDir, err)
	}

	// Validate filter variant
	if c.Variant != VariantHK && c.Variant != VariantGeneric {
		return errors.New("variant must be either 'hk' or 'generic'")
	}

	// Validate filter thresholds
	if c.MinRows < 1 {
		return errors.New("minimum rows must be at least 1")
	}
	if c.MinCols < 1 {
		return errors.New("minimum columns must be at least 1")
	}
	if c.EmptyRatio <= 0 || c.EmptyRatio > 1 {
		return errors.New("empty ratio must be within (0, 1]")
	}

	// Validate concurrency
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{OutputDir: %s, Pages: %q, Variant: %s, MinRows: %d, MinCols: %d, EmptyRatio: %.2f, Concurrency: %d, LogLevel: %s, MaxFileSize: %d}",
		c.OutputDir, c.Pages, c.Variant, c.MinRows, c.MinCols, c.EmptyRatio, c.Concurrency, c.LogLevel, c.MaxFileSize)
}
