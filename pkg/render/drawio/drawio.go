// Package drawio emits diagrams as draw.io (mxGraph) XML documents.
package drawio

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strconv"

	"github.com/wyeh/sketchpipe/pkg/model"
)

// cellStyles maps node types onto mxGraph style strings.
var cellStyles = map[string]string{
	model.NodeRectangle:     "rounded=0;whiteSpace=wrap;html=1;",
	model.NodeDiamond:       "rhombus;whiteSpace=wrap;html=1;",
	model.NodeCircle:        "ellipse;whiteSpace=wrap;html=1;aspect=fixed;",
	model.NodeEllipse:       "ellipse;whiteSpace=wrap;html=1;",
	model.NodeCylinder:      "shape=cylinder3;whiteSpace=wrap;html=1;",
	model.NodeParallelogram: "shape=parallelogram;whiteSpace=wrap;html=1;",
}

const groupStyle = "rounded=0;whiteSpace=wrap;html=1;verticalAlign=top;fillColor=none;dashed=1;"

// groupPadding is the margin around member bounds when a group cell
// carries geometry.
const groupPadding = 20.0

// Emit renders d as an mxfile document. Group cells come before their
// members so draw.io stacks them underneath; node geometry is emitted
// only in positional mode. Everything is ordered by id so output is
// byte-deterministic.
func Emit(d model.Diagram, positional bool) []byte {
	var buf bytes.Buffer

	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	buf.WriteString("<mxfile host=\"sketchpipe\" type=\"device\">\n")
	buf.WriteString("  <diagram name=\"Page-1\" id=\"diagram_1\">\n")
	buf.WriteString("    <mxGraphModel dx=\"1000\" dy=\"600\" grid=\"1\" gridSize=\"10\">\n")
	buf.WriteString("      <root>\n")
	buf.WriteString("        <mxCell id=\"0\"/>\n")
	buf.WriteString("        <mxCell id=\"1\" parent=\"0\"/>\n")

	for _, g := range sortedGroups(d) {
		writeGroupCell(&buf, d, g, positional)
	}
	for _, n := range sortedNodes(d) {
		writeNodeCell(&buf, n, positional)
	}
	for _, e := range sortedEdges(d) {
		writeEdgeCell(&buf, e)
	}

	buf.WriteString("      </root>\n")
	buf.WriteString("    </mxGraphModel>\n")
	buf.WriteString("  </diagram>\n")
	buf.WriteString("</mxfile>\n")
	return buf.Bytes()
}

func writeNodeCell(buf *bytes.Buffer, n model.Node, positional bool) {
	style := cellStyles[model.NodeRectangle]
	if s, ok := cellStyles[n.Type]; ok {
		style = s
	}
	if n.Style != nil && n.Style.FillColor != "" {
		style += "fillColor=" + n.Style.FillColor + ";"
	}
	if n.Style != nil && n.Style.StrokeColor != "" {
		style += "strokeColor=" + n.Style.StrokeColor + ";"
	}

	if !positional {
		fmt.Fprintf(buf, "        <mxCell id=\"cell_%s\" value=\"%s\" style=\"%s\" vertex=\"1\" parent=\"1\"/>\n",
			n.ID, html.EscapeString(n.Label), style)
		return
	}

	x, y := n.Pos()
	w, h := n.Size()
	fmt.Fprintf(buf, "        <mxCell id=\"cell_%s\" value=\"%s\" style=\"%s\" vertex=\"1\" parent=\"1\">\n",
		n.ID, html.EscapeString(n.Label), style)
	fmt.Fprintf(buf, "          <mxGeometry x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" as=\"geometry\"/>\n",
		num(x), num(y), num(w), num(h))
	buf.WriteString("        </mxCell>\n")
}

func writeEdgeCell(buf *bytes.Buffer, e model.Edge) {
	style := "edgeStyle=orthogonalEdgeStyle;rounded=0;html=1;"
	if e.IsDashed() {
		style += "dashed=1;"
	}
	if e.IsLine() {
		style += "endArrow=none;"
	}

	fmt.Fprintf(buf, "        <mxCell id=\"cell_%s\" value=\"%s\" style=\"%s\" edge=\"1\" parent=\"1\" source=\"cell_%s\" target=\"cell_%s\">\n",
		e.ID, html.EscapeString(e.Label), style, e.From, e.To)
	buf.WriteString("          <mxGeometry relative=\"1\" as=\"geometry\"/>\n")
	buf.WriteString("        </mxCell>\n")
}

func writeGroupCell(buf *bytes.Buffer, d model.Diagram, g model.Group, positional bool) {
	if !positional {
		fmt.Fprintf(buf, "        <mxCell id=\"group_%s\" value=\"%s\" style=\"%s\" vertex=\"1\" parent=\"1\"/>\n",
			g.ID, html.EscapeString(g.Label), groupStyle)
		return
	}

	x, y, w, h := memberBounds(d, g)
	fmt.Fprintf(buf, "        <mxCell id=\"group_%s\" value=\"%s\" style=\"%s\" vertex=\"1\" parent=\"1\">\n",
		g.ID, html.EscapeString(g.Label), groupStyle)
	fmt.Fprintf(buf, "          <mxGeometry x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" as=\"geometry\"/>\n",
		num(x), num(y), num(w), num(h))
	buf.WriteString("        </mxCell>\n")
}

// memberBounds returns the bounding box of a group's member nodes grown
// by groupPadding on every side.
func memberBounds(d model.Diagram, g model.Group) (x, y, w, h float64) {
	first := true
	var minX, minY, maxX, maxY float64
	for _, id := range g.NodeIDs {
		n, ok := d.NodeByID(id)
		if !ok {
			continue
		}
		nx, ny := n.Pos()
		nw, nh := n.Size()
		if first {
			minX, minY, maxX, maxY = nx, ny, nx+nw, ny+nh
			first = false
			continue
		}
		minX, minY = min(minX, nx), min(minY, ny)
		maxX, maxY = max(maxX, nx+nw), max(maxY, ny+nh)
	}
	if first {
		return 0, 0, 0, 0
	}
	return minX - groupPadding, minY - groupPadding,
		maxX - minX + 2*groupPadding, maxY - minY + 2*groupPadding
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
