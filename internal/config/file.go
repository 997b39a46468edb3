package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docbundle/internal/classify"
	"github.com/dgallion1/docbundle/internal/docerr"
)

// fileConfig mirrors the YAML layout. Pointers distinguish "absent" from
// zero values so a file can switch defaults off.
type fileConfig struct {
	Title            string          `yaml:"title"`
	Output           string          `yaml:"output"`
	Exclude          []string        `yaml:"exclude"`
	Categories       []classify.Rule `yaml:"categories"`
	FallbackCategory string          `yaml:"fallback_category"`
	IncludeHidden    *bool           `yaml:"include_hidden"`
	ExtraFormats     []string        `yaml:"extra_formats"`
	CheckAnchors     *bool           `yaml:"check_anchors"`
	RequireDocuments *bool           `yaml:"require_documents"`
	Concurrency      *int            `yaml:"concurrency"`
	RenderTimeout    string          `yaml:"render_timeout"`
	CacheSize        *int            `yaml:"cache_size"`
}

// applyFile merges the YAML file at path into cfg. A missing file is only
// an error when it was named explicitly.
func applyFile(cfg *Config, path string, explicit bool) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return false, nil
	}
	if err != nil {
		return false, &docerr.ConfigurationError{Field: "config file", Value: path, Err: err}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return false, &docerr.ConfigurationError{Field: "config file", Value: path, Err: fmt.Errorf("parse: %w", err)}
	}

	if fc.Title != "" {
		cfg.Title = fc.Title
	}
	if fc.Output != "" {
		cfg.Output = fc.Output
	}
	if len(fc.Exclude) > 0 {
		cfg.Exclude = fc.Exclude
	}
	if len(fc.Categories) > 0 {
		cfg.Categories = fc.Categories
	}
	if fc.FallbackCategory != "" {
		cfg.FallbackCategory = fc.FallbackCategory
	}
	if fc.IncludeHidden != nil {
		cfg.IncludeHidden = *fc.IncludeHidden
	}
	if len(fc.ExtraFormats) > 0 {
		cfg.ExtraFormats = fc.ExtraFormats
	}
	if fc.CheckAnchors != nil {
		cfg.CheckAnchors = *fc.CheckAnchors
	}
	if fc.RequireDocuments != nil {
		cfg.RequireDocuments = *fc.RequireDocuments
	}
	if fc.Concurrency != nil {
		cfg.Concurrency = *fc.Concurrency
	}
	if fc.RenderTimeout != "" {
		d, err := time.ParseDuration(fc.RenderTimeout)
		if err != nil {
			return false, &docerr.ConfigurationError{Field: "render_timeout", Value: fc.RenderTimeout, Err: err}
		}
		cfg.RenderTimeout = d
	}
	if fc.CacheSize != nil {
		cfg.CacheSize = *fc.CacheSize
	}
	return true, nil
}
