// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP API. Centralizing it keeps caching and defaulting
// behavior identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse the scene description into a widget tree
//  2. Layout: Resolve anchor/stretch rules into screen rectangles
//  3. Render: Generate output in various formats (SVG, PNG, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ScenePath: "menu.toml",
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// For interactive use (hit testing, live viewport changes) run
// [Runner.Resolve] instead, which returns the live tree.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorage/pkg/cache"
	"github.com/matzehuels/anchorage/pkg/layout"
	"github.com/matzehuels/anchorage/pkg/render"
)

const (
	// DefaultWidth is the default viewport width in pixels, used when
	// neither the options nor the scene header specify one.
	DefaultWidth = 1280.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 720.0

	// DefaultScale is the default raster scale for PNG output.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of ScenePath and Scene must be set.
	ScenePath string `json:"scene_path,omitempty"`
	Scene     string `json:"scene,omitempty"` // inline scene TOML

	// Layout options. Zero values fall back to the scene header's
	// virtual resolution, then to the package defaults.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`    // PNG raster scale
	Detailed bool     `json:"detailed,omitempty"` // DOT node labels carry layout rules
	Refresh  bool     `json:"refresh,omitempty"`  // bypass the cache

	// Runtime options (not serialized)
	Logger   *log.Logger     `json:"-"`
	Measurer layout.Measurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Frame is the draw-order snapshot of the resolved layout.
	Frame render.Frame

	// SceneHash is the content hash of the scene source.
	SceneHash string

	// LayoutHash is the content hash of the resolved layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// LayoutErrors lists widgets whose rules could not be resolved.
	// A run with layout errors still renders the widgets that resolved.
	LayoutErrors []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	WidgetCount int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the resolved layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for scene loading.
func (o *Options) ValidateForLoad() error {
	if o.ScenePath == "" && o.Scene == "" {
		return fmt.Errorf("scene_path or scene is required")
	}
	if o.ScenePath != "" && o.Scene != "" {
		return fmt.Errorf("scene_path and scene are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout resolution.
// Width and Height must already be defaulted by the caller.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:  o.Width,
		Height: o.Height,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
