// Package mermaid emits diagrams in the mermaid flowchart grammar.
package mermaid

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/wyeh/sketchpipe/pkg/model"
)

// shapeBrackets maps node types onto mermaid's shape bracket pairs.
var shapeBrackets = map[string][2]string{
	model.NodeRectangle:     {`["`, `"]`},
	model.NodeDiamond:       {`{`, `}`},
	model.NodeCircle:        {`(("`, `"))`},
	model.NodeEllipse:       {`(["`, `"])`},
	model.NodeCylinder:      {`[("`, `")]`},
	model.NodeParallelogram: {`[/"`, `"/]`},
}

// Emit renders d as a mermaid flowchart. Structural mode always flows
// top-down; positional mode switches to left-right when the diagram is
// wider than it is tall. Grouped nodes appear only inside their subgraph
// blocks; everything is ordered by id so output is byte-deterministic.
func Emit(d model.Diagram, positional bool) []byte {
	var buf bytes.Buffer

	if d.Title != "" {
		fmt.Fprintf(&buf, "---\ntitle: %s\n---\n", d.Title)
	}

	fmt.Fprintf(&buf, "flowchart %s\n", direction(d, positional))

	grouped := make(map[string]bool)
	for _, g := range d.Groups {
		for _, id := range g.NodeIDs {
			grouped[id] = true
		}
	}

	for _, id := range sortedNodeIDs(d) {
		if grouped[id] {
			continue
		}
		n, _ := d.NodeByID(id)
		buf.WriteString(nodeLine(n) + "\n")
	}

	for _, g := range sortedGroups(d) {
		fmt.Fprintf(&buf, "\n    subgraph %s[%s]\n", g.ID, g.Label)
		members := append([]string(nil), g.NodeIDs...)
		sort.Strings(members)
		for _, id := range members {
			if n, ok := d.NodeByID(id); ok {
				buf.WriteString("    " + nodeLine(n) + "\n")
			}
		}
		buf.WriteString("    end\n")
	}

	buf.WriteString("\n")

	for _, e := range sortedEdges(d) {
		arrow := "-->"
		switch {
		case e.IsLine():
			arrow = "---"
		case e.IsDashed():
			arrow = "-.->"
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "    %s %s|%s| %s\n", e.From, arrow, e.Label, e.To)
		} else {
			fmt.Fprintf(&buf, "    %s %s %s\n", e.From, arrow, e.To)
		}
	}

	styles := styleLines(d)
	if len(styles) > 0 {
		buf.WriteString("\n")
		for _, s := range styles {
			buf.WriteString(s + "\n")
		}
	}

	return buf.Bytes()
}

// direction picks the flow direction: TD unless positional geometry says
// the diagram spreads wider than it is tall.
func direction(d model.Diagram, positional bool) string {
	if !positional || len(d.Nodes) == 0 {
		return "TD"
	}

	x0, y0 := d.Nodes[0].Pos()
	minX, maxX, minY, maxY := x0, x0, y0, y0
	for _, n := range d.Nodes[1:] {
		x, y := n.Pos()
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}

	if maxX-minX > maxY-minY {
		return "LR"
	}
	return "TD"
}

func nodeLine(n model.Node) string {
	pre, suf := `["`, `"]`
	if b, ok := shapeBrackets[n.Type]; ok {
		pre, suf = b[0], b[1]
	}
	return "    " + n.ID + pre + escapeLabel(n.Label) + suf
}

// escapeLabel rewrites characters that terminate mermaid node brackets.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, `[`, `(`)
	s = strings.ReplaceAll(s, `]`, `)`)
	return s
}

func styleLines(d model.Diagram) []string {
	var lines []string
	for _, id := range sortedNodeIDs(d) {
		n, _ := d.NodeByID(id)
		if n.Style == nil {
			continue
		}
		var parts []string
		if n.Style.FillColor != "" {
			parts = append(parts, "fill:"+n.Style.FillColor)
		}
		if n.Style.StrokeColor != "" {
			parts = append(parts, "stroke:"+n.Style.StrokeColor)
		}
		if len(parts) > 0 {
			lines = append(lines, fmt.Sprintf("    style %s %s", n.ID, strings.Join(parts, ",")))
		}
	}
	return lines
}

func sortedNodeIDs(d model.Diagram) []string {
	ids := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		ids[i] = n.ID
	}
	sort.Strings(ids)
	return ids
}

func sortedEdges(d model.Diagram) []model.Edge {
	edges := append([]model.Edge(nil), d.Edges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return edges
}

func sortedGroups(d model.Diagram) []model.Group {
	groups := append([]model.Group(nil), d.Groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}
