package render

import (
	"bytes"

	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the raster scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes the frame to a PNG image. Widgets are drawn as
// outlined rectangles, labels as centered text in their color. Label fonts
// are located on the host via findfont; when a font cannot be found the
// text is drawn with the built-in face instead of failing the render.
func RenderPNG(f Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}

	dc := gg.NewContext(int(f.Width*r.scale), int(f.Height*r.scale))
	dc.Scale(r.scale, r.scale)

	dc.SetHexColor("#1d1f27")
	dc.Clear()

	for _, item := range f.Items {
		drawItem(dc, item)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawItem(dc *gg.Context, item Item) {
	if item.Opaque {
		dc.SetHexColor("#8a93b5")
	} else {
		dc.SetHexColor("#5a5f73")
	}
	dc.DrawRectangle(item.Rect.X, item.Rect.Y, item.Rect.W, item.Rect.H)
	dc.SetLineWidth(1)
	dc.Stroke()

	if item.Label == nil || item.Label.Text == "" {
		return
	}

	l := item.Label
	if l.Font != "" {
		if path, err := findfont.Find(l.Font + ".ttf"); err == nil {
			_ = dc.LoadFontFace(path, labelSize(l))
		}
	}
	dc.SetRGBA(l.Color[0], l.Color[1], l.Color[2], l.Color[3])
	dc.DrawStringAnchored(l.Text, item.Rect.CenterX(), item.Rect.CenterY(), 0.5, 0.5)
}
