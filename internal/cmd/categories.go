package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docbundle/internal/pipeline"
)

// NewCategoriesCommand creates the categories command: a dry run that shows
// the rule table and where each discovered file would land.
func NewCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show category rules and how discovered files are classified",
		Long: `Print the ordered category rules in effect, then every discovered file
with the category it would be placed in. Nothing is rendered or written.`,
		Args: cobra.NoArgs,
		RunE: runCategories,
	}
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	orch, err := pipeline.NewOrchestrator(cfg, log)
	if err != nil {
		return err
	}
	files, err := orch.Discover(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintln(out, "Rules (first match wins):")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, r := range orch.Classifier().Rules() {
		fmt.Fprintf(tw, "  %d.\t%q\t→ %s\n", i+1, r.Match, r.Label)
	}
	fmt.Fprintf(tw, "  \t(no match)\t→ %s\n", orch.Classifier().Fallback())
	tw.Flush()

	fmt.Fprintln(out)
	cyan.Fprintf(out, "Files (%d):\n", len(files))
	if len(files) == 0 {
		gray.Fprintln(out, "  none found")
		return nil
	}
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range files {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Path, f.Category)
	}
	return tw.Flush()
}
