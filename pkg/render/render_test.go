package render

import (
	"context"
	"testing"

	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/model"
)

func valid() model.Diagram {
	return model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: "A"},
			{ID: "b", Type: model.NodeRectangle, Label: "B"},
		},
		Edges: []model.Edge{
			{ID: "a_to_b", From: "a", To: "b", Type: model.EdgeArrow},
		},
	}
}

func TestRenderAllFormats(t *testing.T) {
	ctx := context.Background()
	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			out, err := Render(ctx, valid(), f, LayoutDefault)
			if err != nil {
				t.Fatalf("Render(%s): %v", f, err)
			}
			if len(out) == 0 {
				t.Errorf("Render(%s) produced empty output", f)
			}

			again, err := Render(ctx, valid(), f, LayoutDefault)
			if err != nil {
				t.Fatalf("second Render(%s): %v", f, err)
			}
			if string(out) != string(again) {
				t.Errorf("Render(%s) is not deterministic", f)
			}
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(context.Background(), valid(), Format("pdf"), LayoutDefault)
	if !errors.Is(err, errors.ErrCodeUnknownFormat) {
		t.Errorf("err = %v, want UNKNOWN_FORMAT", err)
	}
}

func TestRenderUnknownLayout(t *testing.T) {
	_, err := Render(context.Background(), valid(), FormatDOT, LayoutMode("radial"))
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("err = %v, want INVALID_LAYOUT", err)
	}
}

func TestRenderValidatesFirst(t *testing.T) {
	bad := valid()
	bad.Edges[0].To = "missing"

	_, err := Render(context.Background(), bad, FormatMermaid, LayoutDefault)
	if !errors.Is(err, errors.ErrCodeSchema) {
		t.Errorf("err = %v, want SCHEMA_ERROR", err)
	}
}

func TestRenderBadRequestDoesNotAffectSiblings(t *testing.T) {
	ctx := context.Background()

	if _, err := Render(ctx, valid(), Format("nope"), LayoutDefault); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := Render(ctx, valid(), FormatDOT, LayoutDefault); err != nil {
		t.Errorf("sibling request failed after bad one: %v", err)
	}
}

func TestDefaultLayouts(t *testing.T) {
	tests := []struct {
		format Format
		want   LayoutMode
	}{
		{FormatMermaid, LayoutStructural},
		{FormatDOT, LayoutStructural},
		{FormatDrawio, LayoutPositional},
		{FormatSVG, LayoutPositional},
	}
	for _, tt := range tests {
		if got := DefaultLayout(tt.format); got != tt.want {
			t.Errorf("DefaultLayout(%s) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatMermaid, ".mmd"},
		{FormatDOT, ".dot"},
		{FormatDrawio, ".drawio"},
		{FormatSVG, ".svg"},
		{Format("bogus"), ".txt"},
	}
	for _, tt := range tests {
		if got := Ext(tt.format); got != tt.want {
			t.Errorf("Ext(%s) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid(FormatSVG) {
		t.Error("svg should be valid")
	}
	if Valid(Format("png")) {
		t.Error("png should not be valid")
	}
}
