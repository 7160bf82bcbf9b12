package pipeline

import (
	"context"
	"testing"

	"github.com/wyeh/sketchpipe/pkg/cache"
	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/render"
)

var sceneJSON = []byte(`{
  "elements": [
    {"kind": "shape", "id": "s1", "shape": "rectangle", "text": "API", "x": 0, "y": 0, "width": 100, "height": 60},
    {"kind": "shape", "id": "s2", "shape": "cylinder", "text": "DB", "x": 300, "y": 0, "width": 100, "height": 60},
    {"kind": "connector", "id": "c1", "start": {"elementId": "s1"}, "end": {"elementId": "s2"}}
  ]
}`)

func sampleDiagram() model.Diagram {
	return model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "api", Type: model.NodeRectangle, Label: "API"},
			{ID: "db", Type: model.NodeCylinder, Label: "DB"},
		},
		Edges: []model.Edge{
			{ID: "api_to_db", From: "api", To: "db", Type: model.EdgeArrow},
		},
	}
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestConvertRendersAllFormats(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := Options{Formats: render.Formats()}

	result, err := runner.Convert(context.Background(), sampleDiagram(), opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(result.Artifacts) != len(render.Formats()) {
		t.Errorf("artifact count = %d, want %d", len(result.Artifacts), len(render.Formats()))
	}
	for _, f := range render.Formats() {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("empty artifact for %s", f)
		}
	}
	if result.DiagramHash == "" {
		t.Error("missing diagram hash")
	}
	if result.Stats.NodeCount != 2 || result.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestConvertCachesArtifacts(t *testing.T) {
	ctx := context.Background()
	runner := fileRunner(t)
	opts := Options{Formats: []render.Format{render.FormatDOT}}

	first, err := runner.Convert(ctx, sampleDiagram(), opts)
	if err != nil {
		t.Fatalf("first Convert: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}

	second, err := runner.Convert(ctx, sampleDiagram(), Options{Formats: []render.Format{render.FormatDOT}})
	if err != nil {
		t.Fatalf("second Convert: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if string(first.Artifacts[render.FormatDOT]) != string(second.Artifacts[render.FormatDOT]) {
		t.Error("cached artifact differs from fresh render")
	}
}

func TestConvertRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	runner := fileRunner(t)

	if _, err := runner.Convert(ctx, sampleDiagram(), Options{Formats: []render.Format{render.FormatSVG}}); err != nil {
		t.Fatalf("warm-up Convert: %v", err)
	}

	result, err := runner.Convert(ctx, sampleDiagram(),
		Options{Formats: []render.Format{render.FormatSVG}, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Convert: %v", err)
	}
	if result.CacheInfo.RenderHit {
		t.Error("refresh run must not report a cache hit")
	}
}

func TestConvertLayoutDistinguishesCacheEntries(t *testing.T) {
	ctx := context.Background()
	runner := fileRunner(t)
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes:       []model.Node{{ID: "a", Type: model.NodeRectangle, Label: "A"}},
	}

	structural, err := runner.Convert(ctx, d, Options{
		Formats: []render.Format{render.FormatDOT}, Layout: render.LayoutStructural})
	if err != nil {
		t.Fatal(err)
	}
	positional, err := runner.Convert(ctx, d, Options{
		Formats: []render.Format{render.FormatDOT}, Layout: render.LayoutPositional})
	if err != nil {
		t.Fatal(err)
	}

	if positional.CacheInfo.RenderHit {
		t.Error("positional render must not reuse the structural cache entry")
	}
	if string(structural.Artifacts[render.FormatDOT]) == string(positional.Artifacts[render.FormatDOT]) {
		t.Error("structural and positional outputs should differ")
	}
}

func TestConvertRejectsInvalidDiagram(t *testing.T) {
	bad := sampleDiagram()
	bad.Edges[0].To = "missing"

	_, err := NewRunner(nil, nil, nil).Convert(context.Background(), bad, Options{})
	if !errors.Is(err, errors.ErrCodeSchema) {
		t.Errorf("err = %v, want SCHEMA_ERROR", err)
	}
}

func TestExtractAndConvert(t *testing.T) {
	ctx := context.Background()
	runner := fileRunner(t)
	opts := Options{Formats: []render.Format{render.FormatMermaid}}

	first, err := runner.ExtractAndConvert(ctx, sceneJSON, opts)
	if err != nil {
		t.Fatalf("ExtractAndConvert: %v", err)
	}

	if first.CacheInfo.DiagramHit {
		t.Error("first extraction should not hit the cache")
	}
	if first.Summary.NodeCount != 2 || first.Summary.EdgeCount != 1 {
		t.Errorf("summary = %+v", first.Summary)
	}
	if len(first.Diagram.Nodes) != 2 {
		t.Errorf("diagram nodes = %d, want 2", len(first.Diagram.Nodes))
	}

	second, err := runner.ExtractAndConvert(ctx, sceneJSON,
		Options{Formats: []render.Format{render.FormatMermaid}})
	if err != nil {
		t.Fatalf("second ExtractAndConvert: %v", err)
	}
	if !second.CacheInfo.DiagramHit {
		t.Error("second extraction should hit the cache")
	}
	if second.Summary.NodeCount != first.Summary.NodeCount {
		t.Error("cached summary differs")
	}
	if string(first.Artifacts[render.FormatMermaid]) != string(second.Artifacts[render.FormatMermaid]) {
		t.Error("cached run output differs")
	}
}

func TestExtractAndConvertRejectsBadScene(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).ExtractAndConvert(context.Background(),
		[]byte(`{"elements": [{"kind": "shape"}]}`), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("err = %v, want INVALID_SCENE", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "UnknownFormat",
			opts: Options{Formats: []render.Format{"pdf"}},
			code: errors.ErrCodeUnknownFormat,
		},
		{
			name: "UnknownLayout",
			opts: Options{Layout: render.LayoutMode("radial")},
			code: errors.ErrCodeInvalidLayout,
		},
		{
			name: "UnknownDiagramType",
			opts: Options{DiagramType: "bogus"},
			code: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if len(opts.Formats) != 1 || opts.Formats[0] != render.FormatMermaid {
		t.Errorf("Formats = %v, want [mermaid]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger default missing")
	}
}
