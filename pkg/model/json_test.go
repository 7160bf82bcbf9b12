package model

import (
	"strings"
	"testing"

	"github.com/wyeh/sketchpipe/pkg/errors"
)

func TestReadDiagram(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		errMatch string
		check    func(t *testing.T, d Diagram)
	}{
		{
			name: "Valid",
			input: `{
				"diagramType": "flowchart",
				"title": "Login Flow",
				"nodes": [
					{"id": "start", "type": "ellipse", "label": "Start", "x": 100, "y": 200},
					{"id": "check", "type": "diamond", "label": "Valid?", "confidence": 0.85}
				],
				"edges": [
					{"id": "e1", "from": "start", "to": "check", "label": "submit"}
				]
			}`,
			check: func(t *testing.T, d Diagram) {
				if d.Title != "Login Flow" {
					t.Errorf("Title = %q", d.Title)
				}
				if d.Nodes[0].X == nil || *d.Nodes[0].X != 100 {
					t.Errorf("node x not carried: %v", d.Nodes[0].X)
				}
				if d.Nodes[0].Confidence != 1.0 {
					t.Errorf("default confidence = %v, want 1.0", d.Nodes[0].Confidence)
				}
				if d.Nodes[1].Confidence != 0.85 {
					t.Errorf("vision confidence = %v, want 0.85", d.Nodes[1].Confidence)
				}
				if d.Edges[0].Type != EdgeArrow {
					t.Errorf("default edge type = %q, want arrow", d.Edges[0].Type)
				}
			},
		},
		{
			name:     "MalformedJSON",
			input:    `{"diagramType": "flowchart", "nodes": [`,
			wantErr:  true,
			errMatch: "decode",
		},
		{
			name: "NodeMissingID",
			input: `{
				"diagramType": "flowchart",
				"nodes": [{"type": "rectangle", "label": "A"}],
				"edges": []
			}`,
			wantErr:  true,
			errMatch: `"id"`,
		},
		{
			name: "NodeMissingLabel",
			input: `{
				"diagramType": "flowchart",
				"nodes": [{"id": "a", "type": "rectangle"}],
				"edges": []
			}`,
			wantErr:  true,
			errMatch: `"label"`,
		},
		{
			name: "EdgeMissingTo",
			input: `{
				"diagramType": "flowchart",
				"nodes": [{"id": "a", "type": "rectangle", "label": "A"}],
				"edges": [{"id": "e1", "from": "a"}]
			}`,
			wantErr:  true,
			errMatch: `"to"`,
		},
		{
			name: "DanglingEdge",
			input: `{
				"diagramType": "flowchart",
				"nodes": [{"id": "a", "type": "rectangle", "label": "A"}],
				"edges": [{"id": "e1", "from": "a", "to": "missing"}]
			}`,
			wantErr:  true,
			errMatch: "unknown node",
		},
		{
			name: "EmptyLabelAllowed",
			input: `{
				"diagramType": "freeform",
				"nodes": [{"id": "a", "type": "rectangle", "label": ""}],
				"edges": []
			}`,
			check: func(t *testing.T, d Diagram) {
				if d.Nodes[0].Label != "" {
					t.Errorf("Label = %q, want empty", d.Nodes[0].Label)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ReadDiagram(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ReadDiagram() = nil error, want SCHEMA_ERROR")
				}
				if !errors.Is(err, errors.ErrCodeSchema) {
					t.Errorf("code = %q, want SCHEMA_ERROR", errors.GetCode(err))
				}
				if !strings.Contains(err.Error(), tt.errMatch) {
					t.Errorf("error %q does not contain %q", err, tt.errMatch)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadDiagram() = %v", err)
			}
			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d := Diagram{
		DiagramType: DiagramArchitecture,
		Title:       "Services",
		Nodes: []Node{
			{ID: "api", Type: NodeRectangle, Label: "API", X: f(10), Y: f(20), Width: 100, Height: 50, Confidence: 1.0},
			{ID: "db", Type: NodeCylinder, Label: "DB", Style: &Style{FillColor: "#eeeeee"}, Confidence: 1.0},
		},
		Edges: []Edge{
			{ID: "api_to_db", From: "api", To: "db", Type: EdgeArrow, Style: &EdgeStyle{StrokeStyle: StrokeDashed}, Confidence: 1.0},
		},
		Groups: []Group{{ID: "backend", Label: "Backend", NodeIDs: []string{"api", "db"}}},
	}

	data, err := MarshalDiagram(d)
	if err != nil {
		t.Fatalf("MarshalDiagram: %v", err)
	}

	got, err := UnmarshalDiagram(data)
	if err != nil {
		t.Fatalf("UnmarshalDiagram: %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Edges) != 1 || len(got.Groups) != 1 {
		t.Fatalf("round trip lost elements: %d nodes, %d edges, %d groups",
			len(got.Nodes), len(got.Edges), len(got.Groups))
	}
	if got.Nodes[1].Style == nil || got.Nodes[1].Style.FillColor != "#eeeeee" {
		t.Errorf("node style lost: %+v", got.Nodes[1].Style)
	}
	if !got.Edges[0].IsDashed() {
		t.Error("edge stroke style lost")
	}

	// Marshal must be deterministic.
	again, err := MarshalDiagram(d)
	if err != nil {
		t.Fatalf("MarshalDiagram: %v", err)
	}
	if string(data) != string(again) {
		t.Error("MarshalDiagram output differs between calls")
	}
}
