// Package dot emits diagrams in the Graphviz DOT grammar.
package dot

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wyeh/sketchpipe/pkg/model"
)

// shapeNames maps node types onto Graphviz shape names.
var shapeNames = map[string]string{
	model.NodeRectangle:     "box",
	model.NodeDiamond:       "diamond",
	model.NodeCircle:        "circle",
	model.NodeEllipse:       "ellipse",
	model.NodeCylinder:      "cylinder",
	model.NodeParallelogram: "parallelogram",
}

// Emit renders d as a DOT digraph. Structural mode carries no geometry
// at all; positional mode pins every node with a pos="x,y!" attribute.
// Nodes, edges, and clusters are ordered by id so output is
// byte-deterministic.
func Emit(d model.Diagram, positional bool) []byte {
	var buf bytes.Buffer

	buf.WriteString("digraph G {\n")
	if d.Title != "" {
		fmt.Fprintf(&buf, "    label=%q;\n", d.Title)
	}
	buf.WriteString("    rankdir=TB;\n")
	buf.WriteString("    node [fontname=\"Arial\"];\n")
	buf.WriteString("\n")

	for _, n := range sortedNodes(d) {
		fmt.Fprintf(&buf, "    %s [%s];\n", n.ID, strings.Join(nodeAttrs(n, positional), ", "))
	}

	buf.WriteString("\n")

	for _, e := range sortedEdges(d) {
		attrs := edgeAttrs(e)
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "    %s -> %s [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "    %s -> %s;\n", e.From, e.To)
		}
	}

	for _, g := range sortedGroups(d) {
		fmt.Fprintf(&buf, "\n    subgraph cluster_%s {\n", g.ID)
		fmt.Fprintf(&buf, "        label=%q;\n", g.Label)
		members := append([]string(nil), g.NodeIDs...)
		sort.Strings(members)
		for _, id := range members {
			fmt.Fprintf(&buf, "        %s;\n", id)
		}
		buf.WriteString("    }\n")
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

func nodeAttrs(n model.Node, positional bool) []string {
	shape, ok := shapeNames[n.Type]
	if !ok {
		shape = "box"
	}

	attrs := []string{
		fmt.Sprintf("label=%q", n.Label),
		"shape=" + shape,
	}
	if n.Style != nil && n.Style.FillColor != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Style.FillColor), "style=filled")
	}
	if n.Style != nil && n.Style.StrokeColor != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", n.Style.StrokeColor))
	}
	if positional {
		x, y := n.Pos()
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(x), num(y)))
	}
	return attrs
}

func edgeAttrs(e model.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.IsDashed() {
		attrs = append(attrs, "style=dashed")
	}
	if e.IsLine() {
		attrs = append(attrs, "dir=none")
	}
	return attrs
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedNodes(d model.Diagram) []model.Node {
	nodes := append([]model.Node(nil), d.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
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
