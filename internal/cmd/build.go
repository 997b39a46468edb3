package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docbundle/internal/pipeline"
)

// NewBuildCommand creates the build command, which is also what the root
// command runs.
func NewBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Write the documentation page",
		Long: `Discover documentation files, render them and write the combined page.
Any unreadable file, render failure or write failure aborts the run and
leaves the previous page untouched.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.ConfigFile != "" {
		log.Debug("loaded config file", "path", cfg.ConfigFile)
	}

	orch, err := pipeline.NewOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	path, err := orch.Run(cmd.Context())
	if err != nil {
		return err
	}

	snap := orch.LastRun().Snapshot()
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen, color.Bold)
	green.Fprint(out, "✓ ")
	fmt.Fprintf(out, "Wrote %s (%d documents, %d categories) in %s\n", path, snap.Rendered, snap.Categories, elapsed(start))
	return nil
}
