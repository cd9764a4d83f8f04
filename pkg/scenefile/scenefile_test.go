package scenefile

import (
	"testing"

	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/scene"
)

const menuScene = `
[scene]
virtual_width = 1280
virtual_height = 720

[[nodes]]
id = "background"
kind = "container"
anchor = "Middle"

  [nodes.stretch]
  x_margin = 0.0
  y_margin = 0.0

  [[nodes.nodes]]
  id = "title"
  kind = "label"
  anchor = "Middle"
  offset = [0.0, 50.0]
  size = [1280.0, 650.0]
  text = "BREAKOUT"
  font = "square"
  font_size = 75.0
  color = [0.4, 1.0, 1.0, 1.0]

  [[nodes.nodes]]
  id = "start"
  kind = "label"
  anchor = "Middle"
  offset = [0.0, -400.0]
  size = [1280.0, 650.0]
  text = "START"
  font = "square"
  font_size = 30.0
  opaque = true

  [[nodes.nodes]]
  id = "highscore"
  kind = "label"
  anchor = "Middle"
  offset = [0.0, -550.0]
  size = [1280.0, 650.0]
  text = "HIGH SCORES"
  font = "square"
  font_size = 30.0
  opaque = true
`

func TestParse_MenuScene(t *testing.T) {
	tree, info, err := Parse([]byte(menuScene))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if info.Virtual != (geometry.Size{W: 1280, H: 720}) {
		t.Errorf("Virtual = %+v, want 1280x720", info.Virtual)
	}
	if tree.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tree.Len())
	}

	bg, err := tree.Lookup("background")
	if err != nil {
		t.Fatalf("Lookup(background) error: %v", err)
	}
	n := tree.At(bg)
	if _, ok := n.Stretch.(scene.StretchXY); !ok {
		t.Errorf("background stretch = %T, want StretchXY", n.Stretch)
	}
	if _, ok := n.Content.(scene.Container); !ok {
		t.Errorf("background content = %T, want Container", n.Content)
	}

	title, _ := tree.Lookup("title")
	tn := tree.At(title)
	if tn.Anchor != geometry.Middle {
		t.Errorf("title anchor = %s, want Middle", tn.Anchor)
	}
	if tn.Offset != (geometry.Point{X: 0, Y: 50}) {
		t.Errorf("title offset = %+v, want {0 50}", tn.Offset)
	}
	if tn.Size == nil || *tn.Size != (geometry.Size{W: 1280, H: 650}) {
		t.Errorf("title size = %v, want 1280x650", tn.Size)
	}

	label, ok := tn.Content.(scene.Label)
	if !ok {
		t.Fatalf("title content = %T, want Label", tn.Content)
	}
	if label.Text != "BREAKOUT" || label.Font != "square" || label.FontSize != 75 {
		t.Errorf("title label = %+v", label)
	}
	if label.Color != [4]float64{0.4, 1, 1, 1} {
		t.Errorf("title color = %v", label.Color)
	}

	// Sibling order from the file is preserved.
	children := tree.At(bg).Children()
	want := []string{"title", "start", "highscore"}
	for i, id := range children {
		if name := tree.At(id).Name; name != want[i] {
			t.Errorf("child %d = %q, want %q", i, name, want[i])
		}
	}
}

func TestParse_LabelColorDefaultsToWhite(t *testing.T) {
	tree, _, err := Parse([]byte(`
[[nodes]]
id = "a"
kind = "label"
anchor = "Middle"
text = "x"
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	id, _ := tree.Lookup("a")
	label := tree.At(id).Content.(scene.Label)
	if label.Color != [4]float64{1, 1, 1, 1} {
		t.Errorf("default color = %v, want opaque white", label.Color)
	}
}

func TestParse_MissingAnchor(t *testing.T) {
	_, _, err := Parse([]byte(`
[[nodes]]
id = "a"
kind = "container"
`))
	if !errors.Is(err, errors.ErrCodeMissingAnchor) {
		t.Errorf("error code = %q, want MISSING_ANCHOR", errors.GetCode(err))
	}
}

func TestParse_UnknownAnchor(t *testing.T) {
	_, _, err := Parse([]byte(`
[[nodes]]
id = "a"
anchor = "Center"
`))
	if !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("error code = %q, want INVALID_SCENE", errors.GetCode(err))
	}
}

func TestParse_UnknownKind(t *testing.T) {
	_, _, err := Parse([]byte(`
[[nodes]]
id = "a"
kind = "sprite"
anchor = "Middle"
`))
	if !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("error code = %q, want INVALID_SCENE", errors.GetCode(err))
	}
}

func TestParse_DuplicateIDAtLoadTime(t *testing.T) {
	_, _, err := Parse([]byte(`
[[nodes]]
id = "start"
anchor = "Middle"

[[nodes]]
id = "start"
anchor = "Middle"
`))
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("error code = %q, want DUPLICATE_ID", errors.GetCode(err))
	}
}

func TestParse_MalformedTuples(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"offset", `offset = [1.0]`},
		{"size", `size = [1.0, 2.0, 3.0]`},
		{"color", "kind = \"label\"\ncolor = [1.0, 1.0]"},
	}
	for _, c := range cases {
		src := "[[nodes]]\nid = \"a\"\nanchor = \"Middle\"\n" + c.body + "\n"
		if _, _, err := Parse([]byte(src)); !errors.Is(err, errors.ErrCodeInvalidScene) {
			t.Errorf("%s: error code = %q, want INVALID_SCENE", c.name, errors.GetCode(err))
		}
	}
}

func TestParse_EmptyScene(t *testing.T) {
	if _, _, err := Parse([]byte("")); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("error code = %q, want INVALID_SCENE", errors.GetCode(err))
	}
}

func TestParse_InvalidTOML(t *testing.T) {
	if _, _, err := Parse([]byte("nodes = [")); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("error code = %q, want INVALID_SCENE", errors.GetCode(err))
	}
}
