package model

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Diagram types.
const (
	DiagramFlowchart    = "flowchart"
	DiagramSequence     = "sequence"
	DiagramArchitecture = "architecture"
	DiagramERD          = "erd"
	DiagramMindmap      = "mindmap"
	DiagramFreeform     = "freeform"
)

// ValidDiagramTypes is the closed set of accepted diagram types.
var ValidDiagramTypes = map[string]bool{
	DiagramFlowchart:    true,
	DiagramSequence:     true,
	DiagramArchitecture: true,
	DiagramERD:          true,
	DiagramMindmap:      true,
	DiagramFreeform:     true,
}

// Node types.
const (
	NodeRectangle     = "rectangle"
	NodeEllipse       = "ellipse"
	NodeCircle        = "circle"
	NodeDiamond       = "diamond"
	NodeCylinder      = "cylinder"
	NodeParallelogram = "parallelogram"
)

// ValidNodeTypes is the closed set of accepted node types.
var ValidNodeTypes = map[string]bool{
	NodeRectangle:     true,
	NodeEllipse:       true,
	NodeCircle:        true,
	NodeDiamond:       true,
	NodeCylinder:      true,
	NodeParallelogram: true,
}

// Edge types.
const (
	EdgeArrow = "arrow"
	EdgeLine  = "line"
)

// Stroke styles.
const (
	StrokeSolid  = "solid"
	StrokeDashed = "dashed"
)

// Default node dimensions, used when a node carries no explicit size.
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 60.0
)

// =============================================================================
// Diagram - Canonical Intermediate Model
// =============================================================================

// Diagram is the canonical node/edge/group representation produced by
// extraction and consumed by rendering. Immutable once built: it is
// consumed and discarded per conversion request and has no further
// lifecycle.
//
// Node, edge, and group order is significant - renderers must preserve it
// so repeated renders of the same Diagram are byte-identical.
type Diagram struct {
	DiagramType string  `json:"diagramType"`
	Title       string  `json:"title,omitempty"`
	Nodes       []Node  `json:"nodes"`
	Edges       []Edge  `json:"edges"`
	Groups      []Group `json:"groups,omitempty"`
}

// NodeByID returns the node with the given id, or false when absent.
// Lookup is linear; diagrams are small enough that an index map is not
// worth the allocation per render.
func (d *Diagram) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// =============================================================================
// Node
// =============================================================================

// Style holds the optional fill/stroke color pair of a node.
type Style struct {
	FillColor   string `json:"fillColor,omitempty"`
	StrokeColor string `json:"strokeColor,omitempty"`
}

// Node is a single shape in the diagram.
//
// X and Y are pointers so positional renderers can distinguish "no
// position recorded" from an explicit origin position.
type Node struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Label      string   `json:"label"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	Style      *Style   `json:"style,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// Pos returns the node position, defaulting absent coordinates to 0.
func (n *Node) Pos() (x, y float64) {
	if n.X != nil {
		x = *n.X
	}
	if n.Y != nil {
		y = *n.Y
	}
	return x, y
}

// Size returns the node dimensions, substituting the 120×60 default for
// missing values.
func (n *Node) Size() (w, h float64) {
	w, h = n.Width, n.Height
	if w == 0 {
		w = DefaultNodeWidth
	}
	if h == 0 {
		h = DefaultNodeHeight
	}
	return w, h
}

// =============================================================================
// Edge
// =============================================================================

// EdgeStyle holds the optional stroke pattern of an edge.
type EdgeStyle struct {
	StrokeStyle string `json:"strokeStyle,omitempty"`
}

// Edge is a directed connection between two node ids.
type Edge struct {
	ID         string     `json:"id"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Type       string     `json:"type,omitempty"`
	Label      string     `json:"label,omitempty"`
	Style      *EdgeStyle `json:"style,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}

// IsDashed reports whether the edge carries a dashed stroke style.
func (e *Edge) IsDashed() bool {
	return e.Style != nil && e.Style.StrokeStyle == StrokeDashed
}

// IsLine reports whether the edge is an undirected line rather than an arrow.
func (e *Edge) IsLine() bool {
	return e.Type == EdgeLine
}

// =============================================================================
// Group
// =============================================================================

// Group is a named set of node ids mapped from a source frame.
// Membership is non-exclusive: a node may belong to more than one group
// and is emitted in each.
type Group struct {
	ID      string   `json:"id"`
	Label   string   `json:"label,omitempty"`
	NodeIDs []string `json:"nodeIds"`
}
