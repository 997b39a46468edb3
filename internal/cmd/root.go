package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docbundle/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the docbundle command tree. Running it without a
// subcommand performs a build.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docbundle",
		Short: "Bundle a project's markdown documentation into one HTML page",
		Long: `docbundle walks a project tree for markdown files, sorts them into
categories by path, renders each one and writes a single self-contained
HTML page with a table of contents.

Configuration comes from flags, DOCBUNDLE_* environment variables (a .env
file is loaded first), and an optional docbundle.yaml in the root.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runBuild,
	}

	pf := cmd.PersistentFlags()
	pf.String("root", "", "directory to search for documentation (default: working directory)")
	pf.StringP("output", "o", "", "output file, relative to the root (default: "+config.DefaultOutput+")")
	pf.StringP("config", "c", "", "YAML config file (default: <root>/"+config.DefaultConfigFile+" if present)")
	pf.String("title", "", "page title")
	pf.Int("concurrency", 0, "maximum documents rendered at once, 0 for unbounded (default: GOMAXPROCS)")
	pf.Duration("render-timeout", 0, "per-document render timeout, 0 to disable")
	pf.Bool("include-hidden", false, "include dot-prefixed files and directories")
	pf.StringSlice("extra-formats", nil, "also bundle these formats: txt, csv, html, pdf, docx")
	pf.Bool("check-anchors", true, "fail when two documents produce the same anchor id")
	pf.Bool("require-docs", false, "fail when no documentation files are found")
	pf.BoolP("verbose", "v", false, "debug logging")

	cmd.AddCommand(NewBuildCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewCategoriesCommand())

	return cmd
}

// loadConfig builds the validated configuration, letting only flags that
// were set on the command line override other sources.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	fs := cmd.Flags()
	var f config.Flags

	if fs.Changed("root") {
		v, _ := fs.GetString("root")
		f.Root = &v
	}
	if fs.Changed("output") {
		v, _ := fs.GetString("output")
		f.Output = &v
	}
	if fs.Changed("config") {
		v, _ := fs.GetString("config")
		f.ConfigFile = &v
	}
	if fs.Changed("title") {
		v, _ := fs.GetString("title")
		f.Title = &v
	}
	if fs.Changed("concurrency") {
		v, _ := fs.GetInt("concurrency")
		f.Concurrency = &v
	}
	if fs.Changed("render-timeout") {
		v, _ := fs.GetDuration("render-timeout")
		f.RenderTimeout = &v
	}
	if fs.Changed("include-hidden") {
		v, _ := fs.GetBool("include-hidden")
		f.IncludeHidden = &v
	}
	if fs.Changed("extra-formats") {
		v, _ := fs.GetStringSlice("extra-formats")
		f.ExtraFormats = &v
	}
	if fs.Changed("check-anchors") {
		v, _ := fs.GetBool("check-anchors")
		f.CheckAnchors = &v
	}
	if fs.Changed("require-docs") {
		v, _ := fs.GetBool("require-docs")
		f.RequireDocs = &v
	}
	if fs.Changed("verbose") {
		v, _ := fs.GetBool("verbose")
		f.Verbose = &v
	}
	if fs.Changed("addr") {
		v, _ := fs.GetString("addr")
		f.Addr = &v
	}

	cfg, err := config.Load(f)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// elapsed formats a duration for result lines.
func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
