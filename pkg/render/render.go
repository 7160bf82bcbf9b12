// Package render dispatches diagram rendering across the output formats.
//
// The dispatcher is the single entry point for turning a diagram into
// output text: it validates the diagram once, resolves the layout mode
// (each format carries its own default), and delegates to the format's
// emitter. Emitters are pure functions of the diagram, so rendering the
// same diagram twice yields byte-identical output.
//
// A bad format or layout fails only the request that named it; sibling
// requests for other formats are unaffected.
package render

import (
	"context"
	"time"

	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/observability"
	"github.com/wyeh/sketchpipe/pkg/render/dot"
	"github.com/wyeh/sketchpipe/pkg/render/drawio"
	"github.com/wyeh/sketchpipe/pkg/render/mermaid"
	"github.com/wyeh/sketchpipe/pkg/render/svg"
)

// Format identifies an output grammar.
type Format string

// Supported output formats.
const (
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatDrawio  Format = "drawio"
	FormatSVG     Format = "svg"
)

// LayoutMode selects how much source geometry survives into the output.
type LayoutMode string

// Layout modes. LayoutDefault resolves to the format's own default:
// structural for mermaid and dot, positional for drawio and svg.
const (
	LayoutDefault    LayoutMode = ""
	LayoutStructural LayoutMode = "structural"
	LayoutPositional LayoutMode = "positional"
)

// emit is the uniform emitter signature: pure, byte-deterministic.
type emit func(d model.Diagram, positional bool) []byte

type format struct {
	emit       emit
	ext        string
	positional bool // default layout mode
}

// formats is the fixed dispatch table. Registration is static: adding a
// format means adding an emitter package and one row here.
var formats = map[Format]format{
	FormatMermaid: {emit: mermaid.Emit, ext: ".mmd"},
	FormatDOT:     {emit: dot.Emit, ext: ".dot"},
	FormatDrawio:  {emit: drawio.Emit, ext: ".drawio", positional: true},
	FormatSVG:     {emit: svg.Emit, ext: ".svg", positional: true},
}

// Formats returns the supported formats in stable order.
func Formats() []Format {
	return []Format{FormatMermaid, FormatDOT, FormatDrawio, FormatSVG}
}

// Valid reports whether f is a supported format.
func Valid(f Format) bool {
	_, ok := formats[f]
	return ok
}

// Ext returns the conventional file extension for a format, ".txt" for
// anything unknown.
func Ext(f Format) string {
	if spec, ok := formats[f]; ok {
		return spec.ext
	}
	return ".txt"
}

// DefaultLayout returns the layout mode a format uses when the caller
// requests LayoutDefault.
func DefaultLayout(f Format) LayoutMode {
	if spec, ok := formats[f]; ok && spec.positional {
		return LayoutPositional
	}
	return LayoutStructural
}

// Render validates the diagram and emits it in the requested format.
//
// An unknown format returns UNKNOWN_FORMAT, an unknown layout mode
// INVALID_LAYOUT, and a diagram that fails validation SCHEMA_ERROR, all
// before any emitter runs. Emitters themselves cannot fail.
func Render(ctx context.Context, d model.Diagram, f Format, mode LayoutMode) ([]byte, error) {
	spec, ok := formats[f]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownFormat, "unknown format: %q", f)
	}

	switch mode {
	case LayoutDefault:
		mode = DefaultLayout(f)
	case LayoutStructural, LayoutPositional:
	default:
		return nil, errors.New(errors.ErrCodeInvalidLayout, "unknown layout mode: %q", mode)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, string(f), string(mode))
	out := spec.emit(d, mode == LayoutPositional)
	observability.Render().OnRenderComplete(ctx, string(f), string(mode), len(out), time.Since(start), nil)

	return out, nil
}
