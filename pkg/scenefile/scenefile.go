// Package scenefile loads scene descriptions from TOML files and builds
// scene trees from them.
//
// A scene file is a header plus a forest of node tables:
//
//	[scene]
//	virtual_width = 1280
//	virtual_height = 720
//
//	[[nodes]]
//	id = "background"
//	kind = "container"
//	anchor = "Middle"
//	  [nodes.stretch]
//	  x_margin = 0.0
//	  y_margin = 0.0
//
//	  [[nodes.nodes]]
//	  id = "title"
//	  kind = "label"
//	  anchor = "Middle"
//	  offset = [0.0, 50.0]
//	  size = [1280.0, 650.0]
//	  text = "BREAKOUT"
//	  font = "square"
//	  font_size = 75.0
//	  color = [1.0, 1.0, 1.0, 1.0]
//
// Node order in the file is declaration order: later siblings paint on top
// and win hit-tests. Configuration problems (unknown kinds, missing anchors,
// malformed tuples, duplicate ids) are reported as structured errors; the
// loader never guesses.
package scenefile

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/scene"
)

// Node kinds accepted in scene files.
const (
	KindContainer = "container"
	KindLabel     = "label"
)

// Info carries scene-level header data that is not part of the tree itself.
type Info struct {
	// Virtual is the design-time viewport the scene was authored against.
	// Zero when the file does not declare one; callers pick their own
	// viewport either way.
	Virtual geometry.Size
}

// fileScene mirrors the TOML document shape.
type fileScene struct {
	Scene fileHeader `toml:"scene"`
	Nodes []fileNode `toml:"nodes"`
}

type fileHeader struct {
	VirtualWidth  float64 `toml:"virtual_width"`
	VirtualHeight float64 `toml:"virtual_height"`
}

type fileNode struct {
	ID      string       `toml:"id"`
	Kind    string       `toml:"kind"`
	Anchor  string       `toml:"anchor"`
	Offset  []float64    `toml:"offset"`
	Size    []float64    `toml:"size"`
	Stretch *fileStretch `toml:"stretch"`
	Opaque  bool         `toml:"opaque"`

	// Label-only fields.
	Text     string    `toml:"text"`
	Font     string    `toml:"font"`
	FontSize float64   `toml:"font_size"`
	Color    []float64 `toml:"color"`

	Nodes []fileNode `toml:"nodes"`
}

type fileStretch struct {
	XMargin         float64 `toml:"x_margin"`
	YMargin         float64 `toml:"y_margin"`
	KeepAspectRatio bool    `toml:"keep_aspect_ratio"`
}

// Load reads and parses a scene file from disk.
func Load(path string) (*scene.Tree, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeInvalidScene, err, "read scene %s", path)
	}
	return Parse(data)
}

// Parse decodes a TOML scene description and builds the tree. Duplicate ids
// surface here (via scene.Build), at load time rather than at layout time.
func Parse(data []byte) (*scene.Tree, Info, error) {
	var file fileScene
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if len(file.Nodes) == 0 {
		return nil, Info{}, errors.New(errors.ErrCodeInvalidScene, "scene has no nodes")
	}

	defs := make([]scene.Def, 0, len(file.Nodes))
	for _, fn := range file.Nodes {
		def, err := buildDef(fn)
		if err != nil {
			return nil, Info{}, err
		}
		defs = append(defs, def)
	}

	tree, err := scene.Build(defs)
	if err != nil {
		return nil, Info{}, err
	}
	return tree, Info{Virtual: geometry.Size{W: file.Scene.VirtualWidth, H: file.Scene.VirtualHeight}}, nil
}

// buildDef converts one file node (and its subtree) into a scene.Def.
func buildDef(fn fileNode) (scene.Def, error) {
	ref := fn.ID
	if ref == "" {
		ref = "(unnamed)"
	}

	if fn.Anchor == "" {
		return scene.Def{}, errors.New(errors.ErrCodeMissingAnchor, "node %s has no anchor", ref)
	}
	anchor, err := geometry.ParseAnchor(fn.Anchor)
	if err != nil {
		return scene.Def{}, errors.Wrap(errors.ErrCodeInvalidScene, err, "node %s", ref)
	}

	def := scene.Def{
		Name:   fn.ID,
		Anchor: anchor,
		Opaque: fn.Opaque,
	}

	switch len(fn.Offset) {
	case 0:
	case 2:
		def.Offset = geometry.Point{X: fn.Offset[0], Y: fn.Offset[1]}
	default:
		return scene.Def{}, errors.New(errors.ErrCodeInvalidScene,
			"node %s: offset must be [x, y], got %d values", ref, len(fn.Offset))
	}

	switch len(fn.Size) {
	case 0:
	case 2:
		def.Size = &geometry.Size{W: fn.Size[0], H: fn.Size[1]}
	default:
		return scene.Def{}, errors.New(errors.ErrCodeInvalidScene,
			"node %s: size must be [w, h], got %d values", ref, len(fn.Size))
	}

	if fn.Stretch != nil {
		def.Stretch = scene.StretchXY{
			XMargin:    fn.Stretch.XMargin,
			YMargin:    fn.Stretch.YMargin,
			KeepAspect: fn.Stretch.KeepAspectRatio,
		}
	}

	switch fn.Kind {
	case KindContainer, "":
		def.Content = scene.Container{}
	case KindLabel:
		label := scene.Label{
			Text:     fn.Text,
			Font:     fn.Font,
			FontSize: fn.FontSize,
		}
		switch len(fn.Color) {
		case 0:
			label.Color = [4]float64{1, 1, 1, 1}
		case 4:
			copy(label.Color[:], fn.Color)
		default:
			return scene.Def{}, errors.New(errors.ErrCodeInvalidScene,
				"node %s: color must be [r, g, b, a], got %d values", ref, len(fn.Color))
		}
		def.Content = label
	default:
		return scene.Def{}, errors.New(errors.ErrCodeInvalidScene,
			"node %s: unknown kind %q", ref, fn.Kind)
	}

	for _, child := range fn.Nodes {
		cd, err := buildDef(child)
		if err != nil {
			return scene.Def{}, err
		}
		def.Children = append(def.Children, cd)
	}
	return def, nil
}
