package render

import (
	"encoding/json"

	"github.com/matzehuels/anchorage/pkg/geometry"
)

type jsonOutput struct {
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Widgets []jsonWidget `json:"widgets"`
}

type jsonWidget struct {
	ID     string     `json:"id"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Depth  int        `json:"depth"`
	Opaque bool       `json:"opaque,omitempty"`
	Label  *jsonLabel `json:"label,omitempty"`
}

type jsonLabel struct {
	Text     string     `json:"text"`
	Font     string     `json:"font,omitempty"`
	FontSize float64    `json:"font_size,omitempty"`
	Color    [4]float64 `json:"color"`
}

// RenderJSON exports the frame as a pretty-printed JSON document. This is
// the data interchange format: resolved rectangles plus label payloads,
// suitable for caching or for external tools that draw the UI themselves.
func RenderJSON(f Frame) ([]byte, error) {
	out := jsonOutput{
		Width:   f.Width,
		Height:  f.Height,
		Widgets: make([]jsonWidget, 0, len(f.Items)),
	}
	for _, item := range f.Items {
		w := jsonWidget{
			ID:     item.Name,
			X:      item.Rect.X,
			Y:      item.Rect.Y,
			Width:  item.Rect.W,
			Height: item.Rect.H,
			Depth:  item.Depth,
			Opaque: item.Opaque,
		}
		if item.Label != nil {
			w.Label = &jsonLabel{
				Text:     item.Label.Text,
				Font:     item.Label.Font,
				FontSize: item.Label.FontSize,
				Color:    item.Label.Color,
			}
		}
		out.Widgets = append(out.Widgets, w)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ParseJSON reconstructs a frame from its JSON export. Together with
// [RenderJSON] this enables round-trip rendering: a cached layout can be
// re-rendered to any format without re-resolving the scene.
func ParseJSON(data []byte) (Frame, error) {
	var in jsonOutput
	if err := json.Unmarshal(data, &in); err != nil {
		return Frame{}, err
	}

	f := Frame{
		Width:  in.Width,
		Height: in.Height,
		Items:  make([]Item, 0, len(in.Widgets)),
	}
	for _, w := range in.Widgets {
		item := Item{
			Name:   w.ID,
			Rect:   geometry.Rect{X: w.X, Y: w.Y, W: w.Width, H: w.Height},
			Depth:  w.Depth,
			Opaque: w.Opaque,
		}
		if w.Label != nil {
			item.Label = &Label{
				Text:     w.Label.Text,
				Font:     w.Label.Font,
				FontSize: w.Label.FontSize,
				Color:    w.Label.Color,
			}
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}
