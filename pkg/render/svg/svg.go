// Package svg emits diagrams as standalone SVG documents.
//
// SVG is inherently positional: the emitter lays out by source geometry
// regardless of the requested layout mode.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strconv"

	"github.com/wyeh/sketchpipe/pkg/model"
)

// padding is the margin around the diagram bounding box.
const padding = 50.0

// groupPadding is the margin around member bounds for group rectangles.
const groupPadding = 15.0

// Emit renders d as an SVG document. Groups draw first so they sit
// behind their members, then edges, then nodes. Everything is ordered
// by id so output is byte-deterministic. An empty diagram produces a
// minimal fixed-size document.
func Emit(d model.Diagram, _ bool) []byte {
	if len(d.Nodes) == 0 {
		return []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"></svg>` + "\n")
	}

	minX, minY, maxX, maxY := bounds(d)
	width := maxX - minX + 2*padding
	height := maxY - minY + 2*padding
	ox, oy := -minX+padding, -minY+padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\">\n",
		num(width), num(height))
	buf.WriteString("  <defs><marker id=\"arrow\" markerWidth=\"10\" markerHeight=\"7\" refX=\"9\" refY=\"3.5\" orient=\"auto\">\n")
	buf.WriteString("    <polygon points=\"0 0, 10 3.5, 0 7\" fill=\"#333\"/></marker></defs>\n")

	for _, g := range sortedGroups(d) {
		writeGroup(&buf, d, g, ox, oy)
	}
	for _, e := range sortedEdges(d) {
		writeEdge(&buf, d, e, ox, oy)
	}
	for _, n := range sortedNodes(d) {
		writeNode(&buf, n, ox, oy)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func bounds(d model.Diagram) (minX, minY, maxX, maxY float64) {
	for i, n := range d.Nodes {
		x, y := n.Pos()
		w, h := n.Size()
		if i == 0 {
			minX, minY, maxX, maxY = x, y, x+w, y+h
			continue
		}
		minX, minY = min(minX, x), min(minY, y)
		maxX, maxY = max(maxX, x+w), max(maxY, y+h)
	}
	return minX, minY, maxX, maxY
}

func writeGroup(buf *bytes.Buffer, d model.Diagram, g model.Group, ox, oy float64) {
	first := true
	var minX, minY, maxX, maxY float64
	for _, id := range g.NodeIDs {
		n, ok := d.NodeByID(id)
		if !ok {
			continue
		}
		x, y := n.Pos()
		w, h := n.Size()
		if first {
			minX, minY, maxX, maxY = x, y, x+w, y+h
			first = false
			continue
		}
		minX, minY = min(minX, x), min(minY, y)
		maxX, maxY = max(maxX, x+w), max(maxY, y+h)
	}
	if first {
		return
	}

	x, y := minX-groupPadding+ox, minY-groupPadding+oy
	w, h := maxX-minX+2*groupPadding, maxY-minY+2*groupPadding
	fmt.Fprintf(buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"none\" stroke=\"#999\" stroke-width=\"1\" stroke-dasharray=\"4,4\"/>\n",
		num(x), num(y), num(w), num(h))
	if g.Label != "" {
		fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"Arial\" font-size=\"12\" fill=\"#999\">%s</text>\n",
			num(x+4), num(y+14), html.EscapeString(g.Label))
	}
}

func writeEdge(buf *bytes.Buffer, d model.Diagram, e model.Edge, ox, oy float64) {
	from, okFrom := d.NodeByID(e.From)
	to, okTo := d.NodeByID(e.To)
	if !okFrom || !okTo {
		return
	}

	x1, y1 := center(from)
	x2, y2 := center(to)

	fmt.Fprintf(buf, "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"#333\" stroke-width=\"2\"",
		num(x1+ox), num(y1+oy), num(x2+ox), num(y2+oy))
	if e.IsDashed() {
		buf.WriteString(" stroke-dasharray=\"8,4\"")
	}
	if !e.IsLine() {
		buf.WriteString(" marker-end=\"url(#arrow)\"")
	}
	buf.WriteString("/>\n")
}

func writeNode(buf *bytes.Buffer, n model.Node, ox, oy float64) {
	x, y := n.Pos()
	x, y = x+ox, y+oy
	w, h := n.Size()

	fill, stroke := "#fff", "#333"
	if n.Style != nil && n.Style.FillColor != "" {
		fill = n.Style.FillColor
	}
	if n.Style != nil && n.Style.StrokeColor != "" {
		stroke = n.Style.StrokeColor
	}

	switch n.Type {
	case model.NodeEllipse, model.NodeCircle:
		fmt.Fprintf(buf, "  <ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\"/>\n",
			num(x+w/2), num(y+h/2), num(w/2), num(h/2), fill, stroke)
	case model.NodeDiamond:
		fmt.Fprintf(buf, "  <polygon points=\"%s,%s %s,%s %s,%s %s,%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\"/>\n",
			num(x+w/2), num(y), num(x+w), num(y+h/2), num(x+w/2), num(y+h), num(x), num(y+h/2),
			fill, stroke)
	default:
		fmt.Fprintf(buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\" rx=\"5\"/>\n",
			num(x), num(y), num(w), num(h), fill, stroke)
	}

	fmt.Fprintf(buf, "  <text x=\"%s\" y=\"%s\" font-family=\"Arial\" font-size=\"14\" text-anchor=\"middle\">%s</text>\n",
		num(x+w/2), num(y+h/2+5), html.EscapeString(n.Label))
}

func center(n model.Node) (x, y float64) {
	x, y = n.Pos()
	w, h := n.Size()
	return x + w/2, y + h/2
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
