// Package pipeline provides the core scene-to-artifact conversion pipeline.
//
// This package implements the complete extract → render flow shared by
// the CLI and the HTTP API. Centralizing it keeps behavior consistent
// across entry points: both run the same extraction, the same
// validation, and the same caching.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Extract: resolve bindings in a raw scene and build the diagram
//  2. Render: emit the diagram in each requested output format
//
// Each stage can be run independently or as part of the complete
// pipeline, and each stage's result is cached by content hash.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []render.Format{render.FormatMermaid, render.FormatDOT},
//	}
//	result, err := runner.ExtractAndConvert(ctx, sceneJSON, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mmd := result.Artifacts[render.FormatMermaid]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/extract"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/render"
	"github.com/wyeh/sketchpipe/pkg/scene/bind"
)

// DefaultFormats is used when a conversion names no output formats.
var DefaultFormats = []render.Format{render.FormatMermaid}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one conversion.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Render options
	Formats []render.Format   `json:"formats,omitempty"`
	Layout  render.LayoutMode `json:"layout,omitempty"`

	// Extract options
	Title       string       `json:"title,omitempty"`
	DiagramType string       `json:"diagram_type,omitempty"`
	Bind        bind.Options `json:"-"`

	// Refresh bypasses cached results and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the requested formats and layout and
// applies defaults. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	for _, f := range o.Formats {
		if !render.Valid(f) {
			return errors.New(errors.ErrCodeUnknownFormat, "unknown format: %q", f)
		}
	}

	switch o.Layout {
	case render.LayoutDefault, render.LayoutStructural, render.LayoutPositional:
	default:
		return errors.New(errors.ErrCodeInvalidLayout, "unknown layout mode: %q", o.Layout)
	}

	if o.DiagramType != "" && !model.ValidDiagramTypes[o.DiagramType] {
		return errors.New(errors.ErrCodeInvalidInput, "unknown diagram type: %q", o.DiagramType)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// layoutFor resolves the effective layout mode for one format.
func (o *Options) layoutFor(f render.Format) render.LayoutMode {
	if o.Layout == render.LayoutDefault {
		return render.DefaultLayout(f)
	}
	return o.Layout
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the canonical intermediate model.
	Diagram model.Diagram

	// DiagramHash is the content hash of the serialized diagram.
	DiagramHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Summary is the extraction accounting; zero-valued when the run
	// started from an already-extracted diagram.
	Summary extract.Summary

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	ExtractTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DiagramHit bool // Whether the extracted diagram came from cache
	RenderHit  bool // Whether all artifacts came from cache
}
