package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorage/pkg/pipeline"
	"github.com/matzehuels/anchorage/pkg/render/dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "svg", "png", "json", "dot"
	width    float64  // viewport width in pixels
	height   float64  // viewport height in pixels
	scale    float64  // PNG raster scale
	detailed  bool     // include layout rules in dot node labels
	rasterize bool     // also run dot output through Graphviz
	noCache   bool     // disable caching
	refresh   bool     // recompute even when cached
}

// renderCommand creates the render command for generating visual output.
//
// Default settings:
//   - format: svg
//   - viewport: the scene's declared virtual resolution
//   - scale: 2x (PNG only)
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [scene.toml]",
		Short: "Render a resolved scene to SVG, PNG, JSON or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.rasterize && !slices.Contains(opts.formats, pipeline.FormatDOT) {
				return fmt.Errorf("--rasterize requires the dot format")
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default: scene virtual resolution)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default: scene virtual resolution)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor (png)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include layout rules in dot labels")
	cmd.Flags().BoolVar(&opts.rasterize, "rasterize", false, "also render dot output through Graphviz (.dot.svg, .dot.png)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runRender executes the pipeline and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		ScenePath: input,
		Width:     opts.width,
		Height:    opts.height,
		Formats:   opts.formats,
		Scale:     opts.scale,
		Detailed:  opts.detailed,
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", input, err)
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, msg := range result.LayoutErrors {
		printWarning("%s", msg)
	}

	base := basePath(opts.output, input)
	printSuccess("Render complete")
	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if opts.rasterize {
		paths, err := rasterizeDOT(result.Artifacts[pipeline.FormatDOT], base)
		if err != nil {
			return err
		}
		for _, path := range paths {
			printFile(path)
		}
	}

	printStats(result.Stats.WidgetCount, len(result.LayoutErrors), result.CacheInfo.RenderHit)
	return nil
}

// rasterizeDOT feeds the DOT artifact through Graphviz and writes the
// results next to the other outputs.
func rasterizeDOT(dotData []byte, base string) ([]string, error) {
	svg, err := dot.RenderSVG(string(dotData))
	if err != nil {
		return nil, fmt.Errorf("rasterize dot: %w", err)
	}
	png, err := dot.RenderPNG(string(dotData))
	if err != nil {
		return nil, fmt.Errorf("rasterize dot: %w", err)
	}

	paths := []string{base + ".dot.svg", base + ".dot.png"}
	for i, data := range [][]byte{svg, png} {
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
// This is used when generating multiple files (e.g., menu.svg, menu.json).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
