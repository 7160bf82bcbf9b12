package dot

import (
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"

	"github.com/wyeh/sketchpipe/pkg/model"
)

func f(v float64) *float64 { return &v }

func twoNodeDashed() model.Diagram {
	return model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "alpha", Type: model.NodeRectangle, Label: "Alpha", X: f(0), Y: f(0)},
			{ID: "beta", Type: model.NodeRectangle, Label: "Beta", X: f(300), Y: f(120)},
		},
		Edges: []model.Edge{
			{ID: "alpha_to_beta", From: "alpha", To: "beta", Type: model.EdgeArrow,
				Style: &model.EdgeStyle{StrokeStyle: model.StrokeDashed}},
		},
	}
}

func TestEmitStructural(t *testing.T) {
	want := "digraph G {\n" +
		"    rankdir=TB;\n" +
		"    node [fontname=\"Arial\"];\n" +
		"\n" +
		"    alpha [label=\"Alpha\", shape=box];\n" +
		"    beta [label=\"Beta\", shape=box];\n" +
		"\n" +
		"    alpha -> beta [style=dashed];\n" +
		"}\n"

	got := string(Emit(twoNodeDashed(), false))
	if got != want {
		t.Errorf("Emit:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "pos=") {
		t.Error("structural output must carry no coordinates")
	}
}

func TestEmitPositional(t *testing.T) {
	got := string(Emit(twoNodeDashed(), true))
	if !strings.Contains(got, "pos=\"300,120!\"") {
		t.Errorf("positional output should pin beta:\n%s", got)
	}
}

func TestEmitTitleAndGroups(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Title:       "Deploy",
		Nodes: []model.Node{
			{ID: "api", Type: model.NodeRectangle, Label: "API"},
			{ID: "db", Type: model.NodeCylinder, Label: "DB"},
		},
		Groups: []model.Group{
			{ID: "backend", Label: "Backend", NodeIDs: []string{"db", "api"}},
		},
	}

	got := string(Emit(d, false))
	if !strings.Contains(got, "    label=\"Deploy\";\n") {
		t.Errorf("missing title label:\n%s", got)
	}
	if !strings.Contains(got, "    subgraph cluster_backend {\n        label=\"Backend\";\n        api;\n        db;\n    }\n") {
		t.Errorf("missing or unsorted cluster:\n%s", got)
	}
	if !strings.Contains(got, "db [label=\"DB\", shape=cylinder]") {
		t.Errorf("missing cylinder shape:\n%s", got)
	}
}

func TestEmitNodeStyles(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: "A",
				Style: &model.Style{FillColor: "#eeeeee", StrokeColor: "#112233"}},
		},
	}

	got := string(Emit(d, false))
	if !strings.Contains(got, `a [label="A", shape=box, fillcolor="#eeeeee", style=filled, color="#112233"];`) {
		t.Errorf("style attributes wrong:\n%s", got)
	}
}

func TestEmitLineEdges(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: "A"},
			{ID: "b", Type: model.NodeRectangle, Label: "B"},
		},
		Edges: []model.Edge{
			{ID: "a_to_b", From: "a", To: "b", Type: model.EdgeLine},
		},
	}

	got := string(Emit(d, false))
	if !strings.Contains(got, "a -> b [dir=none];") {
		t.Errorf("line edge should drop the arrowhead:\n%s", got)
	}
}

func TestEmitQuoteEscaping(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: `He said "go"`},
		},
	}

	got := string(Emit(d, false))
	if !strings.Contains(got, `label="He said \"go\""`) {
		t.Errorf("quotes not escaped:\n%s", got)
	}
}

// TestEmitParsesAsGraphviz feeds the emitted DOT back through Graphviz's
// own parser.
func TestEmitParsesAsGraphviz(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramFlowchart,
		Title:       "Checkout Flow",
		Nodes: []model.Node{
			{ID: "start", Type: model.NodeEllipse, Label: "Start"},
			{ID: "paid", Type: model.NodeDiamond, Label: "Paid?"},
			{ID: "ship", Type: model.NodeRectangle, Label: "Ship it",
				Style: &model.Style{FillColor: "#ccffcc"}},
		},
		Edges: []model.Edge{
			{ID: "start_to_paid", From: "start", To: "paid", Type: model.EdgeArrow},
			{ID: "paid_to_ship", From: "paid", To: "ship", Type: model.EdgeArrow, Label: "yes"},
		},
		Groups: []model.Group{
			{ID: "fulfillment", Label: "Fulfillment", NodeIDs: []string{"ship"}},
		},
	}

	for _, positional := range []bool{false, true} {
		out := Emit(d, positional)
		g, err := graphviz.ParseBytes(out)
		if err != nil {
			t.Fatalf("graphviz rejected emitted DOT (positional=%v): %v\n%s", positional, err, out)
		}
		g.Close()
	}
}
