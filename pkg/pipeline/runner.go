package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wyeh/sketchpipe/pkg/cache"
	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/extract"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/observability"
	"github.com/wyeh/sketchpipe/pkg/render"
	"github.com/wyeh/sketchpipe/pkg/scene"
)

// Runner executes the conversion pipeline with caching.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a pipeline runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedExtraction is the cache entry for one extracted diagram.
type cachedExtraction struct {
	Diagram json.RawMessage `json:"diagram"`
	Summary extract.Summary `json:"summary"`
}

// ExtractAndConvert runs the full pipeline on raw scene JSON: parse,
// resolve, extract, then render every requested format. The extracted
// diagram is cached by scene content hash.
func (r *Runner) ExtractAndConvert(ctx context.Context, sceneJSON []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	d, summary, hit, err := r.extractWithCache(ctx, sceneJSON, &opts)
	if err != nil {
		return nil, err
	}
	extractTime := time.Since(start)

	result, err := r.Convert(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	result.CacheInfo.DiagramHit = hit
	result.Stats.ExtractTime = extractTime
	return result, nil
}

func (r *Runner) extractWithCache(ctx context.Context, sceneJSON []byte, opts *Options) (model.Diagram, extract.Summary, bool, error) {
	key := r.Keyer.DiagramKey(cache.Hash(sceneJSON), cache.DiagramKeyOpts{
		ProximityTolerance: opts.Bind.ProximityTolerance,
		DiagramType:        opts.DiagramType,
		Title:              opts.Title,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var entry cachedExtraction
			if err := json.Unmarshal(data, &entry); err == nil {
				if d, err := model.UnmarshalDiagram(entry.Diagram); err == nil {
					observability.Cache().OnCacheHit(ctx, "diagram")
					return d, entry.Summary, true, nil
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, "diagram")
	}

	start := time.Now()

	sc, err := scene.UnmarshalScene(sceneJSON)
	if err != nil {
		return model.Diagram{}, extract.Summary{}, false, err
	}

	d, summary, err := extract.Extract(ctx, sc, extract.Options{
		Title:       opts.Title,
		DiagramType: opts.DiagramType,
		Bind:        opts.Bind,
		Logger:      opts.Logger,
	})
	if err != nil {
		return model.Diagram{}, extract.Summary{}, false, err
	}
	r.Logger.Debug("extraction complete", "nodes", summary.NodeCount, "edges", summary.EdgeCount,
		"warnings", summary.Warnings(), "duration", time.Since(start))

	if diagramJSON, err := model.MarshalDiagram(d); err == nil {
		if data, err := json.Marshal(cachedExtraction{Diagram: diagramJSON, Summary: summary}); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLDiagram)
			observability.Cache().OnCacheSet(ctx, "diagram", len(data))
		}
	}

	return d, summary, false, nil
}

// Convert renders a diagram in every requested format, with per-artifact
// caching keyed by the diagram's content hash. One bad format fails the
// whole request before any rendering starts; rendering itself cannot
// fail once options validate.
func (r *Runner) Convert(ctx context.Context, d model.Diagram, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	diagramJSON, err := model.MarshalDiagram(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram")
	}
	diagramHash := cache.Hash(diagramJSON)

	result := &Result{
		Diagram:     d,
		DiagramHash: diagramHash,
		Artifacts:   make(map[render.Format][]byte, len(opts.Formats)),
		Stats: Stats{
			NodeCount: len(d.Nodes),
			EdgeCount: len(d.Edges),
		},
	}

	start := time.Now()
	allCached := true

	for _, f := range opts.Formats {
		layout := opts.layoutFor(f)
		key := r.Keyer.ArtifactKey(diagramHash, cache.ArtifactKeyOpts{
			Format: string(f),
			Layout: string(layout),
		})

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				result.Artifacts[f] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		out, err := render.Render(ctx, d, f, layout)
		if err != nil {
			return nil, err
		}
		result.Artifacts[f] = out
		_ = r.Cache.Set(ctx, key, out, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}

	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = allCached
	r.Logger.Debug("conversion complete", "formats", len(opts.Formats),
		"cached", allCached, "duration", result.Stats.RenderTime)

	return result, nil
}
