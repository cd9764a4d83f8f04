package scene

import (
	"testing"

	"github.com/matzehuels/anchorage/pkg/geometry"
)

// resolve writes rects directly; hit-testing only depends on resolved state.
func resolve(t *Tree, name string, r geometry.Rect) NodeID {
	id, err := t.Lookup(name)
	if err != nil {
		panic(err)
	}
	t.SetResolved(id, r)
	return id
}

func TestHitTest_TopmostSiblingWins(t *testing.T) {
	tree, _ := Build([]Def{{
		Name:   "root",
		Anchor: geometry.TopLeft,
		Children: []Def{
			{Name: "below", Anchor: geometry.TopLeft, Opaque: true},
			{Name: "above", Anchor: geometry.TopLeft, Opaque: true},
		},
	}})
	resolve(tree, "root", geometry.Rect{W: 100, H: 100})
	resolve(tree, "below", geometry.Rect{X: 0, Y: 0, W: 60, H: 60})
	above := resolve(tree, "above", geometry.Rect{X: 40, Y: 40, W: 60, H: 60})

	// Point in the overlap: the later-declared sibling is topmost.
	id, ok := tree.HitTest(geometry.Point{X: 50, Y: 50})
	if !ok {
		t.Fatal("HitTest missed in overlap region")
	}
	if id != above {
		t.Errorf("HitTest = %q, want above", tree.At(id).Name)
	}

	// Point only inside the earlier sibling.
	id, ok = tree.HitTest(geometry.Point{X: 10, Y: 10})
	if !ok || tree.At(id).Name != "below" {
		t.Errorf("HitTest outside overlap = %v, %v; want below", id, ok)
	}
}

func TestHitTest_NonOpaquePassThrough(t *testing.T) {
	tree, _ := Build([]Def{{
		Name:   "root",
		Anchor: geometry.TopLeft,
		Opaque: true,
		Children: []Def{
			{Name: "glass", Anchor: geometry.TopLeft, Opaque: false, Children: []Def{
				{Name: "button", Anchor: geometry.TopLeft, Opaque: true},
			}},
		},
	}})
	resolve(tree, "root", geometry.Rect{W: 100, H: 100})
	resolve(tree, "glass", geometry.Rect{W: 100, H: 100})
	button := resolve(tree, "button", geometry.Rect{X: 10, Y: 10, W: 20, H: 20})

	// Inside the button: hits through the non-opaque wrapper.
	if id, ok := tree.HitTest(geometry.Point{X: 15, Y: 15}); !ok || id != button {
		t.Errorf("HitTest over button = %v, %v; want button", id, ok)
	}

	// Inside glass but outside button: glass passes through to the root.
	id, ok := tree.HitTest(geometry.Point{X: 80, Y: 80})
	if !ok || tree.At(id).Name != "root" {
		t.Errorf("HitTest over glass = %v, %v; want root", id, ok)
	}
}

func TestHitTest_Miss(t *testing.T) {
	tree, _ := Build([]Def{{Name: "root", Anchor: geometry.TopLeft, Opaque: true}})
	resolve(tree, "root", geometry.Rect{W: 50, H: 50})

	if _, ok := tree.HitTest(geometry.Point{X: 200, Y: 200}); ok {
		t.Error("HitTest hit outside every rectangle")
	}
}

func TestHitTest_UnresolvedNodeNeverHits(t *testing.T) {
	tree, _ := Build([]Def{{Name: "root", Anchor: geometry.TopLeft, Opaque: true}})

	if _, ok := tree.HitTest(geometry.Point{X: 0, Y: 0}); ok {
		t.Error("HitTest hit a node with no resolved rect")
	}
}

func TestHitTest_ChildOutsideParentStillHits(t *testing.T) {
	tree, _ := Build([]Def{{
		Name:   "root",
		Anchor: geometry.TopLeft,
		Children: []Def{
			{Name: "overflow", Anchor: geometry.TopLeft, Opaque: true},
		},
	}})
	resolve(tree, "root", geometry.Rect{W: 10, H: 10})
	overflow := resolve(tree, "overflow", geometry.Rect{X: 50, Y: 50, W: 10, H: 10})

	// No clipping: children can extend beyond the parent rect.
	if id, ok := tree.HitTest(geometry.Point{X: 55, Y: 55}); !ok || id != overflow {
		t.Errorf("HitTest over escaped child = %v, %v; want overflow", id, ok)
	}
}
