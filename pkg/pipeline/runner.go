package pipeline

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorage/pkg/cache"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/layout"
	"github.com/matzehuels/anchorage/pkg/render"
	"github.com/matzehuels/anchorage/pkg/render/dot"
	"github.com/matzehuels/anchorage/pkg/scene"
	"github.com/matzehuels/anchorage/pkg/scenefile"
	"github.com/matzehuels/anchorage/pkg/text"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
//
// A cache hit on the resolved layout skips scene parsing entirely unless a
// format needs the live tree (DOT structure output). Runs whose layout
// reported errors are never cached, so failed widgets are retried on every
// invocation.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.loggerFor(opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load (source bytes only; parsing is deferred until needed)
	loadStart := time.Now()
	raw, err := r.sceneBytes(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.SceneHash = cache.Hash(raw)
	result.Stats.LoadTime = time.Since(loadStart)

	// Stage 2: Layout
	layoutStart := time.Now()
	needTree := slices.Contains(opts.Formats, FormatDOT)

	var tree *scene.Tree
	var frame render.Frame
	layoutHit := false

	if !needTree && !opts.Refresh {
		// The viewport defaults live in the scene header, which we only
		// know after parsing. A cache probe without explicit dimensions
		// would key on zeroes, so skip it.
		if opts.Width > 0 && opts.Height > 0 {
			layoutKey := r.Keyer.LayoutKey(result.SceneHash, opts.LayoutKeyOpts())
			if data, hit, err := r.Cache.Get(ctx, layoutKey); err == nil && hit {
				if cached, err := render.ParseJSON(data); err == nil {
					frame = cached
					layoutHit = true
				}
			}
		}
	}

	if !layoutHit {
		var info scenefile.Info
		tree, info, err = scenefile.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}

		viewport := viewportFor(opts, info)
		opts.Width, opts.Height = viewport.W, viewport.H

		sched := layout.NewScheduler(r.measurer(opts))
		for _, lerr := range sched.Pass(tree, viewport) {
			result.LayoutErrors = append(result.LayoutErrors, lerr.Error())
		}
		frame = render.Snapshot(tree, viewport)

		if !opts.Refresh && len(result.LayoutErrors) == 0 {
			if data, err := render.RenderJSON(frame); err == nil {
				key := r.Keyer.LayoutKey(result.SceneHash, opts.LayoutKeyOpts())
				_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
			}
		}
	}

	result.Frame = frame
	result.Stats.WidgetCount = len(frame.Items)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("resolved layout",
		"widgets", len(frame.Items),
		"viewport", fmt.Sprintf("%gx%g", frame.Width, frame.Height),
		"errors", len(result.LayoutErrors),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.renderArtifacts(ctx, frame, tree, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	if data, err := render.RenderJSON(frame); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Resolve loads the scene and runs one layout pass, returning the live
// tree. This is the entry point for interactive use: hit testing, viewport
// changes, and tree inspection all want the tree rather than a snapshot.
// Resolution is never cached.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*scene.Tree, geometry.Size, []string, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, geometry.Size{}, nil, err
	}

	raw, err := r.sceneBytes(opts)
	if err != nil {
		return nil, geometry.Size{}, nil, fmt.Errorf("load: %w", err)
	}
	tree, info, err := scenefile.Parse(raw)
	if err != nil {
		return nil, geometry.Size{}, nil, fmt.Errorf("load: %w", err)
	}

	viewport := viewportFor(opts, info)
	sched := layout.NewScheduler(r.measurer(opts))

	var layoutErrs []string
	for _, lerr := range sched.Pass(tree, viewport) {
		layoutErrs = append(layoutErrs, lerr.Error())
	}
	return tree, viewport, layoutErrs, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) renderArtifacts(ctx context.Context, frame render.Frame, tree *scene.Tree, opts Options) (map[string][]byte, bool, error) {
	layoutData, err := render.RenderJSON(frame)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte)
	allCached := true

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		allCached = false

		data, err := r.renderFormat(format, frame, layoutData, tree, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}

	return artifacts, allCached && len(artifacts) > 0, nil
}

func (r *Runner) renderFormat(format string, frame render.Frame, layoutData []byte, tree *scene.Tree, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(frame), nil
	case FormatPNG:
		return render.RenderPNG(frame, render.WithScale(opts.Scale))
	case FormatJSON:
		return layoutData, nil
	case FormatDOT:
		if tree == nil {
			return nil, fmt.Errorf("dot output requires the scene tree")
		}
		return []byte(dot.ToDOT(tree, dot.Options{Detailed: opts.Detailed})), nil
	default:
		return nil, ValidateFormat(format)
	}
}

func (r *Runner) sceneBytes(opts Options) ([]byte, error) {
	if opts.ScenePath != "" {
		return os.ReadFile(opts.ScenePath)
	}
	return []byte(opts.Scene), nil
}

func (r *Runner) measurer(opts Options) layout.Measurer {
	if opts.Measurer != nil {
		return opts.Measurer
	}
	return text.NewFaceMeasurer()
}

// viewportFor picks the viewport: explicit options win, then the scene
// header's virtual resolution, then the package defaults.
func viewportFor(opts Options, info scenefile.Info) geometry.Size {
	vp := geometry.Size{W: opts.Width, H: opts.Height}
	if vp.W == 0 {
		vp.W = info.Virtual.W
	}
	if vp.H == 0 {
		vp.H = info.Virtual.H
	}
	if vp.W == 0 {
		vp.W = DefaultWidth
	}
	if vp.H == 0 {
		vp.H = DefaultHeight
	}
	return vp
}

// loggerFor prefers a per-call logger from the options over the runner's.
func (r *Runner) loggerFor(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
