package layout

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/scene"
)

// countingMeasurer records how many times it was consulted.
type countingMeasurer struct {
	calls int
	size  geometry.Size
}

func (m *countingMeasurer) Measure(font string, size float64, text string) (geometry.Size, error) {
	m.calls++
	return m.size, nil
}

var vp = geometry.Size{W: 1280, H: 720}

// menuTree builds the breakout title menu: a full-screen background with the
// three text nodes anchored off its center.
func menuTree(t *testing.T) *scene.Tree {
	t.Helper()
	tree, err := scene.Build([]scene.Def{{
		Name:    "background",
		Anchor:  geometry.Middle,
		Stretch: scene.StretchXY{},
		Children: []scene.Def{
			{
				Name:   "title",
				Anchor: geometry.Middle,
				Offset: geometry.Point{Y: 50},
				Size:   &geometry.Size{W: 1280, H: 650},
			},
			{
				Name:   "start",
				Anchor: geometry.Middle,
				Offset: geometry.Point{Y: -400},
				Size:   &geometry.Size{W: 1280, H: 650},
				Opaque: true,
			},
			{
				Name:   "highscore",
				Anchor: geometry.Middle,
				Offset: geometry.Point{Y: -550},
				Size:   &geometry.Size{W: 1280, H: 650},
				Opaque: true,
			},
		},
	}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return tree
}

func rectOf(t *testing.T, tree *scene.Tree, name string) geometry.Rect {
	t.Helper()
	id, err := tree.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s) error: %v", name, err)
	}
	r, ok := tree.At(id).Resolved()
	if !ok {
		t.Fatalf("node %s has no resolved rect", name)
	}
	return r
}

func TestPass_MenuScenario(t *testing.T) {
	tree := menuTree(t)
	s := NewScheduler(nil)

	if errs := s.Pass(tree, vp); len(errs) != 0 {
		t.Fatalf("Pass() errors: %v", errs)
	}

	if got := rectOf(t, tree, "background"); got != (geometry.Rect{W: 1280, H: 720}) {
		t.Errorf("background = %+v, want the viewport", got)
	}
	if got := rectOf(t, tree, "title"); got != (geometry.Rect{X: 0, Y: 85, W: 1280, H: 650}) {
		t.Errorf("title = %+v, want {0 85 1280 650}", got)
	}

	start := rectOf(t, tree, "start")
	highscore := rectOf(t, tree, "highscore")
	if start != (geometry.Rect{X: 0, Y: -365, W: 1280, H: 650}) {
		t.Errorf("start = %+v, want {0 -365 1280 650}", start)
	}
	if highscore != (geometry.Rect{X: 0, Y: -515, W: 1280, H: 650}) {
		t.Errorf("highscore = %+v, want {0 -515 1280 650}", highscore)
	}
	// Declared order: highscore sits above start.
	if highscore.Y >= start.Y {
		t.Errorf("highscore (y=%g) is not above start (y=%g)", highscore.Y, start.Y)
	}
}

func TestPass_Idempotent(t *testing.T) {
	tree := menuTree(t)
	s := NewScheduler(nil)

	s.Pass(tree, vp)
	first := map[string]geometry.Rect{}
	for _, name := range []string{"background", "title", "start", "highscore"} {
		first[name] = rectOf(t, tree, name)
	}

	if errs := s.Pass(tree, vp); len(errs) != 0 {
		t.Fatalf("second Pass() errors: %v", errs)
	}
	for name, want := range first {
		if got := rectOf(t, tree, name); got != want {
			t.Errorf("%s drifted: %+v -> %+v", name, want, got)
		}
	}
}

func TestPass_CleanSubtreeSkipped(t *testing.T) {
	m := &countingMeasurer{size: geometry.Size{W: 100, H: 30}}
	tree, err := scene.Build([]scene.Def{{
		Name:    "root",
		Anchor:  geometry.Middle,
		Stretch: scene.StretchXY{},
		Children: []scene.Def{
			{Name: "label", Anchor: geometry.Middle, Content: scene.Label{Text: "hi", FontSize: 12}},
		},
	}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	s := NewScheduler(m)

	s.Pass(tree, vp)
	if m.calls != 1 {
		t.Fatalf("measurer called %d times on first pass, want 1", m.calls)
	}

	// Nothing changed: the subtree is clean, nothing is re-resolved.
	s.Pass(tree, vp)
	if m.calls != 1 {
		t.Errorf("measurer called %d times after no-op pass, want 1", m.calls)
	}

	// A viewport change invalidates the roots and cascades down.
	s.Pass(tree, geometry.Size{W: 432, H: 243})
	if m.calls != 2 {
		t.Errorf("measurer called %d times after resize, want 2", m.calls)
	}
}

func TestPass_ViewportResizeRecomputes(t *testing.T) {
	tree := menuTree(t)
	s := NewScheduler(nil)

	s.Pass(tree, vp)
	s.Pass(tree, geometry.Size{W: 432, H: 243})

	if got := rectOf(t, tree, "background"); got != (geometry.Rect{W: 432, H: 243}) {
		t.Errorf("background = %+v after resize, want {0 0 432 243}", got)
	}
	if got := rectOf(t, tree, "title"); got.CenterX() != 216 {
		t.Errorf("title center X = %g after resize, want 216", got.CenterX())
	}
}

func TestPass_DirtyDescendantUnderCleanParent(t *testing.T) {
	tree := menuTree(t)
	s := NewScheduler(nil)
	s.Pass(tree, vp)

	start, _ := tree.Lookup("start")
	before := rectOf(t, tree, "start")
	tree.MarkDirty(start)

	if errs := s.Pass(tree, vp); len(errs) != 0 {
		t.Fatalf("Pass() errors: %v", errs)
	}
	if got := rectOf(t, tree, "start"); got != before {
		t.Errorf("re-resolved rect %+v differs from %+v", got, before)
	}
	if tree.At(start).Dirty() {
		t.Error("node still dirty after pass")
	}
}

func TestPass_ErrorIsolatedToSubtree(t *testing.T) {
	tree, err := scene.Build([]scene.Def{{
		Name:    "root",
		Anchor:  geometry.Middle,
		Stretch: scene.StretchXY{},
		Children: []scene.Def{
			{
				Name:    "broken",
				Anchor:  geometry.Middle,
				Stretch: scene.StretchXY{XMargin: 10000},
				Children: []scene.Def{
					{Name: "orphan", Anchor: geometry.Middle, Size: &geometry.Size{W: 10, H: 10}},
				},
			},
			{Name: "healthy", Anchor: geometry.Middle, Size: &geometry.Size{W: 50, H: 50}},
		},
	}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	s := NewScheduler(nil)

	errs := s.Pass(tree, vp)
	if len(errs) != 1 {
		t.Fatalf("Pass() returned %d errors, want 1: %v", len(errs), errs)
	}
	if !errors.Is(errs[0], errors.ErrCodeNegativeExtent) {
		t.Errorf("error code = %q, want NEGATIVE_EXTENT", errors.GetCode(errs[0]))
	}

	// The sibling resolved despite the failure.
	if got := rectOf(t, tree, "healthy"); got.W != 50 {
		t.Errorf("healthy = %+v, want 50x50 centered", got)
	}

	// The failed node and its subtree stay explicitly unresolved.
	for _, name := range []string{"broken", "orphan"} {
		id, _ := tree.Lookup(name)
		if _, ok := tree.At(id).Resolved(); ok {
			t.Errorf("%s has a resolved rect despite the failure", name)
		}
	}

	// The failure is reported again on the next pass.
	if errs := s.Pass(tree, vp); len(errs) != 1 {
		t.Errorf("second Pass() returned %d errors, want 1", len(errs))
	}
}

func TestPass_MutationGuard(t *testing.T) {
	tree := menuTree(t)
	s := NewScheduler(nil)
	s.Pass(tree, vp)

	// The guard is released after the pass.
	root := tree.Roots()[0]
	if _, err := tree.AddChild(root, scene.Def{Anchor: geometry.Middle}); err != nil {
		t.Errorf("AddChild after pass error: %v", err)
	}
	if errs := s.Pass(tree, vp); len(errs) != 0 {
		t.Errorf("Pass() after mutation errors: %v", errs)
	}
}

func TestPass_LabelMeasurementFailure(t *testing.T) {
	tree, err := scene.Build([]scene.Def{{
		Name:    "nofont",
		Anchor:  geometry.Middle,
		Content: scene.Label{Text: "hi", Font: "missing", FontSize: 12},
	}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	s := NewScheduler(failingMeasurer{})

	errs := s.Pass(tree, vp)
	if len(errs) != 1 {
		t.Fatalf("Pass() returned %d errors, want 1", len(errs))
	}
	if !errors.Is(errs[0], errors.ErrCodeFontNotFound) {
		t.Errorf("error code = %q, want FONT_NOT_FOUND", errors.GetCode(errs[0]))
	}
}

type failingMeasurer struct{}

func (failingMeasurer) Measure(font string, size float64, text string) (geometry.Size, error) {
	return geometry.Size{}, errors.New(errors.ErrCodeFontNotFound, "font %q not found", font)
}

func TestPass_PlainMeasurerError(t *testing.T) {
	tree, err := scene.Build([]scene.Def{{
		Name:    "nofont",
		Anchor:  geometry.Middle,
		Content: scene.Label{Text: "hi", FontSize: 12},
	}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	s := NewScheduler(plainErrMeasurer{})

	errs := s.Pass(tree, vp)
	if len(errs) != 1 {
		t.Fatalf("Pass() returned %d errors, want 1", len(errs))
	}
	// Uncoded errors from outside measurers get the internal code so the
	// report never starts with an empty code prefix.
	if !errors.Is(errs[0], errors.ErrCodeInternal) {
		t.Errorf("error code = %q, want INTERNAL_ERROR", errors.GetCode(errs[0]))
	}
	if strings.HasPrefix(errs[0].Error(), ":") {
		t.Errorf("error message has empty code prefix: %q", errs[0].Error())
	}
}

type plainErrMeasurer struct{}

func (plainErrMeasurer) Measure(font string, size float64, text string) (geometry.Size, error) {
	return geometry.Size{}, stderrors.New("face cache poisoned")
}
