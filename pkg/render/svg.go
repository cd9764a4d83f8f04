package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	showNames  bool
}

// WithBackground sets the background fill (any SVG color). The default is
// a dark slate that makes white menu text legible.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithNames annotates every widget outline with its id in small type.
// Useful for debugging anchor placement.
func WithNames() SVGOption {
	return func(r *svgRenderer) { r.showNames = true }
}

// RenderSVG renders the frame as an SVG document. Widgets are drawn as
// outlined rectangles in snapshot order, labels as centered text.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := svgRenderer{background: "#1d1f27"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	fmt.Fprintf(&buf, "  <rect x=\"0\" y=\"0\" width=\"%.1f\" height=\"%.1f\" fill=\"%s\"/>\n",
		f.Width, f.Height, r.background)

	for _, item := range f.Items {
		renderItem(&buf, &r, item)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderItem(buf *bytes.Buffer, r *svgRenderer, item Item) {
	stroke := "#5a5f73"
	if item.Opaque {
		stroke = "#8a93b5"
	}
	fmt.Fprintf(buf, "  <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n",
		item.Rect.X, item.Rect.Y, item.Rect.W, item.Rect.H, stroke)

	if item.Label != nil && item.Label.Text != "" {
		fmt.Fprintf(buf, "  <text x=\"%.2f\" y=\"%.2f\" font-size=\"%.1f\" fill=\"%s\" text-anchor=\"middle\" dominant-baseline=\"central\">%s</text>\n",
			item.Rect.CenterX(), item.Rect.CenterY(), labelSize(item.Label),
			rgba(item.Label.Color), EscapeXML(item.Label.Text))
	}

	if r.showNames && item.Name != "" {
		fmt.Fprintf(buf, "  <text x=\"%.2f\" y=\"%.2f\" font-size=\"9\" fill=\"%s\">%s</text>\n",
			item.Rect.X+2, item.Rect.Y+10, stroke, EscapeXML(item.Name))
	}
}

func labelSize(l *Label) float64 {
	if l.FontSize > 0 {
		return l.FontSize
	}
	return 16
}

// rgba converts a normalized RGBA color to CSS rgba() notation.
func rgba(c [4]float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)",
		int(c[0]*255), int(c[1]*255), int(c[2]*255), c[3])
}

// EscapeXML escapes text for embedding in SVG markup.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
