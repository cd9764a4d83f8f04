package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorage/pkg/pipeline"
)

// layoutCommand creates the layout command for resolving scene layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [scene.toml]",
		Short: "Resolve a scene's layout rules into screen rectangles",
		Long: `Resolve a scene's layout rules into screen rectangles.

The layout command reads a scene description, resolves every widget's anchor
and stretch rules against the viewport, and writes the resolved rectangles as
JSON. The output can be re-rendered to SVG/PNG with the 'render' command or
consumed by external tools.

The viewport defaults to the scene's declared virtual resolution.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, or - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width (default: scene virtual resolution)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height (default: scene virtual resolution)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runLayout executes the pipeline in JSON-only mode and writes the output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.ScenePath = input
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("resolve layout: %w", err)
	}
	prog.done(fmt.Sprintf("Resolved %d widgets", result.Stats.WidgetCount))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, msg := range result.LayoutErrors {
		printWarning("%s", msg)
	}

	data := result.Artifacts[pipeline.FormatJSON]
	if output == "-" {
		fmt.Println(string(data))
		return nil
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	printSuccess("Layout written")
	printFile(outputPath)
	printStats(result.Stats.WidgetCount, len(result.LayoutErrors), result.CacheInfo.LayoutHit)
	return nil
}
