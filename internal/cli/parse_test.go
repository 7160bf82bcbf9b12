package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wyeh/sketchpipe/pkg/model"
)

const testScene = `{"elements": [
	{"kind": "shape", "id": "s1", "shape": "rectangle", "x": 0, "y": 0, "width": 120, "height": 60, "text": "Ingest"},
	{"kind": "shape", "id": "s2", "shape": "cylinder", "x": 300, "y": 0, "width": 120, "height": 60, "text": "Store"},
	{"kind": "connector", "id": "c1", "connector": "arrow", "start": {"elementId": "s1"}, "end": {"elementId": "s2"}}
]}`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	in := writeFixture(t, "scene.json", testScene)
	out := filepath.Join(t.TempDir(), "diagram.json")

	if err := execute(t, "parse", in, "-o", out); err != nil {
		t.Fatalf("parse: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	d, err := model.UnmarshalDiagram(data)
	if err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(d.Nodes) != 2 || len(d.Edges) != 1 {
		t.Errorf("got %d nodes, %d edges, want 2 nodes, 1 edge", len(d.Nodes), len(d.Edges))
	}
	if _, ok := d.NodeByID("ingest"); !ok {
		t.Error("missing node ingest")
	}
}

func TestParseCommandTitleAndType(t *testing.T) {
	in := writeFixture(t, "scene.json", testScene)
	out := filepath.Join(t.TempDir(), "diagram.json")

	if err := execute(t, "parse", in, "-o", out, "--title", "Storage Flow", "--type", "flowchart"); err != nil {
		t.Fatalf("parse: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	d, err := model.UnmarshalDiagram(data)
	if err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if d.Title != "Storage Flow" {
		t.Errorf("Title = %q, want Storage Flow", d.Title)
	}
	if d.DiagramType != model.DiagramFlowchart {
		t.Errorf("DiagramType = %q, want flowchart", d.DiagramType)
	}
}

func TestParseCommandMissingFile(t *testing.T) {
	if err := execute(t, "parse", filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseCommandBadScene(t *testing.T) {
	in := writeFixture(t, "bad.json", `{"elements": "nope"}`)

	err := execute(t, "parse", in)
	if err == nil {
		t.Fatal("expected error for malformed scene")
	}
	if !strings.Contains(err.Error(), "scene") {
		t.Errorf("error should mention the scene: %v", err)
	}
}
