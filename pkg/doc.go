// Package pkg provides the core libraries for sketchpipe diagram conversion.
//
// # Overview
//
// Sketchpipe normalizes visually-authored diagrams (whiteboard scenes,
// structured drawing files) into one canonical Intermediate Model and
// re-renders that model into several independent output grammars. The pkg
// directory is organized into three main areas:
//
//  1. Domain logic (scene ingestion, binding resolution, extraction, model)
//  2. Rendering (dispatcher + one package per output grammar)
//  3. Infrastructure (caching, configuration, observability, pipeline)
//
// # Architecture
//
// The typical data flow through sketchpipe:
//
//	Raw scene JSON (or vision-model diagram JSON)
//	         ↓
//	    [scene] package (validate into typed elements)
//	         ↓
//	    [extract] package (three-pass extraction via [scene/bind] and [ident])
//	         ↓
//	    [model] package (canonical Diagram + invariants)
//	         ↓
//	    [render] package (dispatch to mermaid/dot/drawio/svg emitters)
//	         ↓
//	    text output
//
// # Quick Start
//
// Extract a diagram from a raw scene and render it:
//
//	import (
//	    "github.com/wyeh/sketchpipe/pkg/extract"
//	    "github.com/wyeh/sketchpipe/pkg/render"
//	    "github.com/wyeh/sketchpipe/pkg/scene"
//	)
//
//	// 1. Ingest the raw scene
//	sc, _ := scene.ReadScene(file)
//
//	// 2. Run the three-pass extraction
//	d, summary, _ := extract.Extract(ctx, sc, extract.Options{})
//
//	// 3. Render to Graphviz DOT (structural layout by default)
//	dot, _ := render.Render(ctx, d, render.FormatDOT, render.LayoutDefault)
//
// # Main Packages
//
// [model] - The canonical Diagram/Node/Edge/Group value types, their
// invariants, and JSON serialization for vision-model input.
//
// [ident] - Deterministic, collision-safe identifier assignment from text
// labels for diff-friendly output.
//
// [scene] - Raw scene ingestion: loosely-typed element records validated
// once into closed tagged variants (shape, text, connector, frame).
//
// [scene/bind] - Binding resolution: text↔shape, connector↔shape, and
// element↔frame relationships resolved from explicit linkage fields with
// geometric fallback behind named, tunable thresholds.
//
// [extract] - The three-pass extraction pipeline (shapes, connectors,
// frames) producing a Diagram plus an extraction summary.
//
// [render] - The render dispatcher and layout policies, with one emitter
// package per output grammar: [render/mermaid], [render/dot],
// [render/drawio], [render/svg].
//
// [pipeline] - Complete extract → render orchestration with artifact
// caching, used by both the CLI and the HTTP API.
//
// [cache] - Cache backends (file, Redis, null) and content-hash keying
// for rendered artifacts.
//
// [config] - TOML configuration for binding thresholds, render defaults,
// cache settings, and the API server.
//
// [observability] - Hook interfaces for instrumenting extraction,
// rendering, and cache operations without hard backend dependencies.
//
// [errors] - Structured errors with machine-readable codes shared by the
// CLI and API.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/extract/...    # Specific package
//	go test -run Example         # Examples only
//
// [model]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/model
// [ident]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/ident
// [scene]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/scene
// [scene/bind]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/scene/bind
// [extract]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/extract
// [render]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/render
// [render/mermaid]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/render/mermaid
// [render/dot]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/render/dot
// [render/drawio]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/render/drawio
// [render/svg]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/render/svg
// [pipeline]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/cache
// [config]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/config
// [observability]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/observability
// [errors]: https://pkg.go.dev/github.com/wyeh/sketchpipe/pkg/errors
package pkg
