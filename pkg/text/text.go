// Package text provides the text-measurement collaborator consumed by the
// layout engine. Labels reference fonts by name; the measurers here turn a
// (font, size, string) triple into a bounding box.
//
// Two implementations are provided:
//   - [FaceMeasurer] resolves font names to installed TTF files and measures
//     with real glyph metrics.
//   - [RuleMeasurer] uses fixed character-width ratios, independent of any
//     installed fonts. It keeps tests and font-less environments
//     deterministic.
package text

import (
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
)

// FaceMeasurer measures text against installed TrueType fonts. Font names
// from the scene file are resolved to file paths with go-findfont; parsed
// fonts are cached per name, so repeated measurement of the same font is
// cheap. Safe for concurrent use.
type FaceMeasurer struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
}

// NewFaceMeasurer creates a measurer with an empty font cache.
func NewFaceMeasurer() *FaceMeasurer {
	return &FaceMeasurer{fonts: make(map[string]*truetype.Font)}
}

// Measure returns the bounding box of s rendered in the named font at the
// given point size. The height is the face's ascent plus descent, which is
// the line box the original engine reserves for single-line UI text.
func (m *FaceMeasurer) Measure(fontName string, size float64, s string) (geometry.Size, error) {
	f, err := m.font(fontName)
	if err != nil {
		return geometry.Size{}, err
	}

	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72})
	defer face.Close()

	adv := font.MeasureString(face, s)
	met := face.Metrics()
	return geometry.Size{
		W: fromFixed(adv),
		H: fromFixed(met.Ascent + met.Descent),
	}, nil
}

// font resolves and parses a font by name, consulting the cache first.
func (m *FaceMeasurer) font(name string) (*truetype.Font, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.fonts[name]; ok {
		return f, nil
	}

	path, err := findfont.Find(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "font %q", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "font %q at %s", name, path)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontNotFound, err, "parse font %q", name)
	}

	m.fonts[name] = f
	return f, nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Default character geometry for RuleMeasurer, expressed as ratios of the
// font size. The width ratio matches the average-glyph heuristic used when
// sizing block labels; the line height is a conventional single-line box.
const (
	defaultCharWidth  = 0.55
	defaultLineHeight = 1.2
)

// RuleMeasurer measures text with fixed per-character metrics instead of
// real glyph data. Zero fields fall back to the package defaults, so the
// zero value is usable.
type RuleMeasurer struct {
	CharWidth  float64 // advance per rune, as a ratio of font size
	LineHeight float64 // line box height, as a ratio of font size
}

// Measure returns len(runes)×CharWidth by LineHeight, scaled by size.
// It never fails; the font name is ignored.
func (m RuleMeasurer) Measure(fontName string, size float64, s string) (geometry.Size, error) {
	cw := m.CharWidth
	if cw == 0 {
		cw = defaultCharWidth
	}
	lh := m.LineHeight
	if lh == 0 {
		lh = defaultLineHeight
	}

	n := 0
	for range s {
		n++
	}
	return geometry.Size{W: float64(n) * cw * size, H: lh * size}, nil
}
