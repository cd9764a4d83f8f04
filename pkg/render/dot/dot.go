// Package dot renders the scene hierarchy as a Graphviz node-link diagram.
// This shows tree structure (parent edges, anchors, stretch modes) rather
// than resolved geometry, which makes it the right tool for debugging why
// a widget hangs off the wrong parent.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/anchorage/pkg/scene"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes anchor, offset and stretch info in node labels.
	// When false, only the widget id is shown.
	Detailed bool
}

// ToDOT converts a scene tree to Graphviz DOT format. Each widget becomes
// a box, each parent-child relation an edge. Non-opaque widgets are drawn
// dashed to distinguish pure layout containers from hit-testable surfaces.
func ToDOT(t *scene.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, root := range t.Roots() {
		writeNode(&buf, t, root, opts)
	}

	buf.WriteString("\n")
	for _, root := range t.Roots() {
		writeEdges(&buf, t, root)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeKey is the DOT identifier for a node. Names are display-only: they
// are optional and may repeat as empty strings, so keying by them would
// merge distinct widgets into one Graphviz box.
func nodeKey(id scene.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func writeNode(buf *bytes.Buffer, t *scene.Tree, id scene.NodeID, opts Options) {
	n := t.At(id)
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if !n.Opaque {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	fmt.Fprintf(buf, "  %s [%s];\n", nodeKey(id), strings.Join(attrs, ", "))

	for _, child := range n.Children() {
		writeNode(buf, t, child, opts)
	}
}

func writeEdges(buf *bytes.Buffer, t *scene.Tree, id scene.NodeID) {
	n := t.At(id)
	for _, child := range n.Children() {
		fmt.Fprintf(buf, "  %s -> %s;\n", nodeKey(id), nodeKey(child))
		writeEdges(buf, t, child)
	}
}

func displayName(n *scene.Node) string {
	if n.Name == "" {
		return "(unnamed)"
	}
	return n.Name
}

func fmtLabel(n *scene.Node, detailed bool) string {
	if !detailed {
		return displayName(n)
	}

	parts := []string{fmt.Sprintf("anchor: %s", n.Anchor)}
	if n.Offset.X != 0 || n.Offset.Y != 0 {
		parts = append(parts, fmt.Sprintf("offset: %g,%g", n.Offset.X, n.Offset.Y))
	}
	if n.Size != nil {
		parts = append(parts, fmt.Sprintf("size: %gx%g", n.Size.W, n.Size.H))
	}
	switch s := n.Stretch.(type) {
	case scene.StretchXY:
		mode := "stretch"
		if s.KeepAspect {
			mode = "stretch(aspect)"
		}
		parts = append(parts, fmt.Sprintf("%s: %g,%g", mode, s.XMargin, s.YMargin))
	}

	return displayName(n) + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
