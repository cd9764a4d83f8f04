package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/pipeline"
)

// hittestCommand creates the hittest command for point queries.
func (c *CLI) hittestCommand() *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "hittest [scene.toml] [x] [y]",
		Short: "Find the topmost opaque widget under a point",
		Long: `Find the topmost opaque widget under a point.

The scene is resolved against the viewport, then the point is tested against
the resolved rectangles. Later siblings are treated as drawn on top, and only
widgets marked opaque can be hit. Edges count as inside.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid x coordinate %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid y coordinate %q", args[2])
			}
			return c.runHitTest(cmd.Context(), args[0], geometry.Point{X: x, Y: y}, width, height)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "viewport width (default: scene virtual resolution)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height (default: scene virtual resolution)")

	return cmd
}

func (c *CLI) runHitTest(ctx context.Context, input string, p geometry.Point, width, height float64) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)

	tree, viewport, layoutErrs, err := runner.Resolve(ctx, pipeline.Options{
		ScenePath: input,
		Width:     width,
		Height:    height,
		Logger:    c.Logger,
	})
	if err != nil {
		return fmt.Errorf("resolve %s: %w", input, err)
	}

	for _, msg := range layoutErrs {
		printWarning("%s", msg)
	}

	id, ok := tree.HitTest(p)
	if !ok {
		printInfo("No opaque widget at (%g, %g)", p.X, p.Y)
		return nil
	}

	n := tree.At(id)
	rect, _ := n.Resolved()
	printSuccess("Hit %s", n.Name)
	printKeyValue("viewport", fmt.Sprintf("%gx%g", viewport.W, viewport.H))
	printKeyValue("rect", fmt.Sprintf("(%g, %g) %gx%g", rect.X, rect.Y, rect.W, rect.H))
	printKeyValue("anchor", n.Anchor.String())
	return nil
}
