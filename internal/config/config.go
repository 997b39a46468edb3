package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docbundle/internal/aggregate"
	"github.com/dgallion1/docbundle/internal/classify"
	"github.com/dgallion1/docbundle/internal/docerr"
	"github.com/dgallion1/docbundle/internal/parser"
)

const (
	// DefaultOutput is resolved against the root.
	DefaultOutput     = "docs/documentation.html"
	DefaultConfigFile = "docbundle.yaml"
	DefaultCacheSize  = 512
	DefaultAddr       = ":8090"
)

type Config struct {
	Root       string
	Output     string
	ConfigFile string // empty when no file was loaded

	// Page
	Title        string
	CheckAnchors bool

	// Discovery
	Exclude          []string
	IncludeHidden    bool
	ExtraFormats     []string
	RequireDocuments bool

	// Classification
	Categories       []classify.Rule
	FallbackCategory string

	// Rendering
	Concurrency   int
	RenderTimeout time.Duration
	CacheSize     int

	LogLevel string
	Addr     string
}

// Flags carries command-line overrides. Nil fields were not set.
type Flags struct {
	Root          *string
	Output        *string
	ConfigFile    *string
	Title         *string
	Concurrency   *int
	RenderTimeout *time.Duration
	IncludeHidden *bool
	ExtraFormats  *[]string
	CheckAnchors  *bool
	RequireDocs   *bool
	Verbose       *bool
	Addr          *string
}

// Default returns the built-in configuration rooted at the working directory.
func Default() Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return Config{
		Root:             root,
		Output:           DefaultOutput,
		Title:            aggregate.DefaultTitle,
		CheckAnchors:     true,
		Categories:       classify.DefaultRules(),
		FallbackCategory: classify.FallbackLabel,
		Concurrency:      runtime.GOMAXPROCS(0),
		CacheSize:        DefaultCacheSize,
		LogLevel:         "info",
		Addr:             DefaultAddr,
	}
}

// Load builds the effective configuration. Sources are applied in order of
// increasing precedence: defaults, YAML file, environment, flags. A .env
// file in the working directory is loaded into the environment first.
// Relative output paths are resolved against the root.
func Load(flags Flags) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Root = envOr("DOCBUNDLE_ROOT", cfg.Root)
	if flags.Root != nil {
		cfg.Root = *flags.Root
	}

	path, explicit := os.Getenv("DOCBUNDLE_CONFIG"), false
	if path != "" {
		explicit = true
	}
	if flags.ConfigFile != nil && *flags.ConfigFile != "" {
		path, explicit = *flags.ConfigFile, true
	}
	if path == "" {
		path = filepath.Join(cfg.Root, DefaultConfigFile)
	}
	loaded, err := applyFile(&cfg, path, explicit)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg.ConfigFile = path
	}

	applyEnv(&cfg)
	applyFlags(&cfg, flags)

	if cfg.Output != "" && !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(cfg.Root, cfg.Output)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Output = envOr("DOCBUNDLE_OUTPUT", cfg.Output)
	cfg.Title = envOr("DOCBUNDLE_TITLE", cfg.Title)
	cfg.Concurrency = envInt("DOCBUNDLE_CONCURRENCY", cfg.Concurrency)
	cfg.RenderTimeout = envDuration("DOCBUNDLE_RENDER_TIMEOUT", cfg.RenderTimeout)
	cfg.CacheSize = envInt("DOCBUNDLE_CACHE_SIZE", cfg.CacheSize)
	cfg.IncludeHidden = envBool("DOCBUNDLE_INCLUDE_HIDDEN", cfg.IncludeHidden)
	cfg.ExtraFormats = envList("DOCBUNDLE_EXTRA_FORMATS", cfg.ExtraFormats)
	cfg.CheckAnchors = envBool("DOCBUNDLE_CHECK_ANCHORS", cfg.CheckAnchors)
	cfg.RequireDocuments = envBool("DOCBUNDLE_REQUIRE_DOCS", cfg.RequireDocuments)
	cfg.LogLevel = envOr("DOCBUNDLE_LOG_LEVEL", cfg.LogLevel)
	cfg.Addr = envOr("DOCBUNDLE_ADDR", cfg.Addr)
}

func applyFlags(cfg *Config, f Flags) {
	if f.Output != nil {
		cfg.Output = *f.Output
	}
	if f.Title != nil {
		cfg.Title = *f.Title
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if f.RenderTimeout != nil {
		cfg.RenderTimeout = *f.RenderTimeout
	}
	if f.IncludeHidden != nil {
		cfg.IncludeHidden = *f.IncludeHidden
	}
	if f.ExtraFormats != nil {
		cfg.ExtraFormats = append([]string(nil), (*f.ExtraFormats)...)
	}
	if f.CheckAnchors != nil {
		cfg.CheckAnchors = *f.CheckAnchors
	}
	if f.RequireDocs != nil {
		cfg.RequireDocuments = *f.RequireDocs
	}
	if f.Verbose != nil && *f.Verbose {
		cfg.LogLevel = "debug"
	}
	if f.Addr != nil {
		cfg.Addr = *f.Addr
	}
}

// Validate reports the first invalid setting as a *docerr.ConfigurationError.
// A root that does not exist is left for discovery to report.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return &docerr.ConfigurationError{Field: "root", Err: docerr.ErrEmptyPath}
	}
	if info, err := os.Stat(c.Root); err == nil && !info.IsDir() {
		return &docerr.ConfigurationError{Field: "root", Value: c.Root, Err: docerr.ErrRootNotDir}
	}
	if strings.TrimSpace(c.Output) == "" {
		return &docerr.ConfigurationError{Field: "output", Err: docerr.ErrEmptyPath}
	}
	if info, err := os.Stat(c.Output); err == nil && info.IsDir() {
		return &docerr.ConfigurationError{Field: "output", Value: c.Output, Err: docerr.ErrOutputIsDir}
	}
	if c.Concurrency < 0 {
		return &docerr.ConfigurationError{Field: "concurrency", Value: strconv.Itoa(c.Concurrency), Err: errNegative}
	}
	if c.CacheSize < 0 {
		return &docerr.ConfigurationError{Field: "cache size", Value: strconv.Itoa(c.CacheSize), Err: errNegative}
	}
	if c.RenderTimeout < 0 {
		return &docerr.ConfigurationError{Field: "render timeout", Value: c.RenderTimeout.String(), Err: errNegative}
	}
	for _, f := range c.ExtraFormats {
		if !parser.IsSupportedFormat(f) {
			return &docerr.ConfigurationError{
				Field: "extra format",
				Value: f,
				Err:   fmt.Errorf("unsupported, want one of %s", strings.Join(parser.FormatNames(), ", ")),
			}
		}
	}
	for i, r := range c.Categories {
		if r.Match == "" || r.Label == "" {
			return &docerr.ConfigurationError{
				Field: fmt.Sprintf("category rule %d", i+1),
				Err:   errors.New("match and label are required"),
			}
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &docerr.ConfigurationError{Field: "log level", Value: c.LogLevel, Err: err}
	}
	return nil
}

var errNegative = errors.New("must not be negative")

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping blank items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
