package mermaid

import (
	"strings"
	"testing"

	"github.com/wyeh/sketchpipe/pkg/model"
)

func f(v float64) *float64 { return &v }

func TestEmitBasic(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "db", Type: model.NodeCylinder, Label: "DB"},
			{ID: "api", Type: model.NodeRectangle, Label: "API"},
		},
		Edges: []model.Edge{
			{ID: "api_to_db", From: "api", To: "db", Type: model.EdgeArrow},
		},
	}

	want := "flowchart TD\n" +
		"    api[\"API\"]\n" +
		"    db[(\"DB\")]\n" +
		"\n" +
		"    api --> db\n"

	if got := string(Emit(d, false)); got != want {
		t.Errorf("Emit:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitGroups(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "api", Type: model.NodeRectangle, Label: "API"},
			{ID: "db", Type: model.NodeCylinder, Label: "DB"},
		},
		Edges: []model.Edge{
			{ID: "api_to_db", From: "api", To: "db", Type: model.EdgeArrow},
		},
		Groups: []model.Group{
			{ID: "backend", Label: "Backend", NodeIDs: []string{"api"}},
		},
	}

	want := "flowchart TD\n" +
		"    db[(\"DB\")]\n" +
		"\n" +
		"    subgraph backend[Backend]\n" +
		"        api[\"API\"]\n" +
		"    end\n" +
		"\n" +
		"    api --> db\n"

	if got := string(Emit(d, false)); got != want {
		t.Errorf("Emit:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitEdgeVariants(t *testing.T) {
	tests := []struct {
		name string
		edge model.Edge
		want string
	}{
		{
			name: "PlainArrow",
			edge: model.Edge{ID: "e", From: "a", To: "b", Type: model.EdgeArrow},
			want: "    a --> b\n",
		},
		{
			name: "Dashed",
			edge: model.Edge{ID: "e", From: "a", To: "b", Type: model.EdgeArrow,
				Style: &model.EdgeStyle{StrokeStyle: model.StrokeDashed}},
			want: "    a -.-> b\n",
		},
		{
			name: "Line",
			edge: model.Edge{ID: "e", From: "a", To: "b", Type: model.EdgeLine},
			want: "    a --- b\n",
		},
		{
			name: "Labeled",
			edge: model.Edge{ID: "e", From: "a", To: "b", Type: model.EdgeArrow, Label: "calls"},
			want: "    a -->|calls| b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := model.Diagram{
				DiagramType: model.DiagramArchitecture,
				Nodes: []model.Node{
					{ID: "a", Type: model.NodeRectangle, Label: "A"},
					{ID: "b", Type: model.NodeRectangle, Label: "B"},
				},
				Edges: []model.Edge{tt.edge},
			}
			got := string(Emit(d, false))
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestEmitTitleHeader(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Title:       "My System",
		Nodes:       []model.Node{{ID: "a", Type: model.NodeRectangle, Label: "A"}},
	}

	got := string(Emit(d, false))
	if !strings.HasPrefix(got, "---\ntitle: My System\n---\nflowchart TD\n") {
		t.Errorf("missing title header:\n%s", got)
	}
}

func TestEmitLabelEscaping(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: `Say "hi" [now]`},
		},
	}

	got := string(Emit(d, false))
	if !strings.Contains(got, "    a[\"Say 'hi' (now)\"]\n") {
		t.Errorf("label not escaped:\n%s", got)
	}
}

func TestEmitDirectionFollowsSpread(t *testing.T) {
	wide := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: "A", X: f(0), Y: f(0)},
			{ID: "b", Type: model.NodeRectangle, Label: "B", X: f(800), Y: f(50)},
		},
	}

	if got := string(Emit(wide, true)); !strings.Contains(got, "flowchart LR\n") {
		t.Errorf("wide positional diagram should flow LR:\n%s", got)
	}
	if got := string(Emit(wide, false)); !strings.Contains(got, "flowchart TD\n") {
		t.Errorf("structural mode must stay TD:\n%s", got)
	}
}

func TestEmitStyleLines(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramArchitecture,
		Nodes: []model.Node{
			{ID: "a", Type: model.NodeRectangle, Label: "A",
				Style: &model.Style{FillColor: "#ff0000", StrokeColor: "#000000"}},
		},
	}

	got := string(Emit(d, false))
	if !strings.Contains(got, "    style a fill:#ff0000,stroke:#000000\n") {
		t.Errorf("missing style line:\n%s", got)
	}
}

func TestEmitDeterministic(t *testing.T) {
	d := model.Diagram{
		DiagramType: model.DiagramFlowchart,
		Nodes: []model.Node{
			{ID: "c", Type: model.NodeDiamond, Label: "C"},
			{ID: "a", Type: model.NodeRectangle, Label: "A"},
			{ID: "b", Type: model.NodeEllipse, Label: "B"},
		},
		Edges: []model.Edge{
			{ID: "b_to_c", From: "b", To: "c", Type: model.EdgeArrow},
			{ID: "a_to_b", From: "a", To: "b", Type: model.EdgeArrow},
		},
	}

	first := Emit(d, false)
	second := Emit(d, false)
	if string(first) != string(second) {
		t.Error("repeated renders differ")
	}

	// Edges come out sorted by id regardless of input order.
	got := string(first)
	if strings.Index(got, "a --> b") > strings.Index(got, "b --> c") {
		t.Errorf("edges not sorted by id:\n%s", got)
	}
}
