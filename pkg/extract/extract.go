// Package extract turns a resolved raw scene into the canonical diagram.
//
// Extraction runs three strictly ordered passes over the typed scene:
// shapes become nodes, connectors become edges, frames become groups.
// The order matters: edges only reference nodes that survived pass one,
// and groups only list members that survived pass one. Identifier
// assignment is deterministic over the scene's encounter order, so the
// same scene always extracts to the same diagram.
//
// Extraction never fails on degraded input. Connectors whose endpoints
// cannot be resolved to surviving nodes are dropped, unmapped shape
// kinds fall back to rectangles, and free-floating text is left behind.
// All of it is accounted for in the [Summary] returned alongside the
// diagram.
package extract

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/ident"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/observability"
	"github.com/wyeh/sketchpipe/pkg/scene"
	"github.com/wyeh/sketchpipe/pkg/scene/bind"
)

// =============================================================================
// Options and Summary
// =============================================================================

// Options configures one extraction run.
type Options struct {
	// Title is carried onto the diagram verbatim.
	Title string

	// DiagramType overrides type inference when non-empty. It must be a
	// member of model.ValidDiagramTypes.
	DiagramType string

	// Bind holds the binding-resolution thresholds.
	Bind bind.Options

	// Logger receives per-pass debug events. Defaults to a discard logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// UnmappedShape records a shape whose raw kind had no node-type mapping
// and fell back to a rectangle.
type UnmappedShape struct {
	ID   string // raw scene id
	Kind string // unrecognized raw kind
}

// Summary accounts for everything extraction kept, dropped, or coerced.
// Warnings here are not errors: the diagram alongside is always valid.
type Summary struct {
	NodeCount  int
	EdgeCount  int
	GroupCount int

	// DeletedElements counts scene elements skipped for their deleted flag.
	DeletedElements int

	// DroppedConnectors lists raw ids of connectors dropped because an
	// endpoint did not resolve to a surviving node.
	DroppedConnectors []string

	// UnmappedShapes lists shapes whose raw kind was coerced to rectangle.
	UnmappedShapes []UnmappedShape

	// UnattachedText lists raw ids of text elements bound to nothing.
	UnattachedText []string
}

// Warnings returns the total number of degraded-input records.
func (s *Summary) Warnings() int {
	return len(s.DroppedConnectors) + len(s.UnmappedShapes) + len(s.UnattachedText)
}

// =============================================================================
// Shape Kind Mapping
// =============================================================================

// nodeTypeByRawKind maps source-tool shape names onto the closed node-type
// enum. Unlisted kinds coerce to rectangle with an UnmappedShapes record;
// an empty kind is a plain rectangle with no record.
var nodeTypeByRawKind = map[string]string{
	"rectangle":     model.NodeRectangle,
	"box":           model.NodeRectangle,
	"ellipse":       model.NodeEllipse,
	"oval":          model.NodeEllipse,
	"circle":        model.NodeCircle,
	"diamond":       model.NodeDiamond,
	"rhombus":       model.NodeDiamond,
	"cylinder":      model.NodeCylinder,
	"database":      model.NodeCylinder,
	"parallelogram": model.NodeParallelogram,
}

// =============================================================================
// Extraction
// =============================================================================

// Extract converts a validated scene into a diagram plus its accounting
// summary. The returned diagram always satisfies model validation; the
// error return covers option mistakes and internal invariant breaks only.
func Extract(ctx context.Context, sc scene.Scene, opts Options) (model.Diagram, Summary, error) {
	opts.setDefaults()

	if opts.DiagramType != "" && !model.ValidDiagramTypes[opts.DiagramType] {
		return model.Diagram{}, Summary{}, errors.New(errors.ErrCodeInvalidInput,
			"unknown diagram type: %q", opts.DiagramType)
	}

	start := time.Now()
	observability.Extract().OnExtractStart(ctx, elementCount(sc))

	bindings := bind.Resolve(sc, opts.Bind)

	e := &extractor{
		sc:         sc,
		bindings:   &bindings,
		assigner:   ident.NewAssigner(),
		frameNames: make(map[string]string, len(sc.Frames)),
		nodeID:     make(map[string]string, len(sc.Shapes)),
		log:        opts.Logger,
	}
	for _, f := range sc.Frames {
		if !f.Deleted {
			e.frameNames[f.ID] = f.Name
		}
	}
	for _, t := range sc.Texts {
		if t.Deleted {
			e.summary.DeletedElements++
		}
	}

	var d model.Diagram
	d.Title = opts.Title

	e.extractNodes(ctx, &d)
	e.extractEdges(ctx, &d)
	e.extractGroups(ctx, &d)
	e.summary.UnattachedText = append(e.summary.UnattachedText, bindings.UnattachedText...)

	d.DiagramType = opts.DiagramType
	if d.DiagramType == "" {
		d.DiagramType = inferDiagramType(d.Nodes)
	}

	err := d.Validate()
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "extraction produced an invalid diagram")
	}
	observability.Extract().OnExtractComplete(ctx, len(d.Nodes), len(d.Edges), time.Since(start), err)
	if err != nil {
		return model.Diagram{}, Summary{}, err
	}

	return d, e.summary, nil
}

// extractor carries the per-run accumulator state across the three passes.
type extractor struct {
	sc       scene.Scene
	bindings *bind.Bindings
	assigner *ident.Assigner

	frameNames map[string]string // live frame raw id → display name
	nodeID     map[string]string // surviving shape raw id → assigned node id

	summary Summary
	log     *log.Logger
}

// extractNodes is pass one: every live shape becomes a node.
func (e *extractor) extractNodes(ctx context.Context, d *model.Diagram) {
	// Labels that repeat across the scene are qualified with their frame
	// name up front so every occurrence comes out distinguishable, not
	// just the later ones.
	ambiguous := e.ambiguousLabels()

	ordinal := 0
	for _, s := range e.sc.Shapes {
		if s.Deleted {
			e.summary.DeletedElements++
			continue
		}
		ordinal++

		label := e.shapeLabel(s, ordinal)
		frameName := e.frameNames[e.bindings.FrameOf(s.ID)]

		var id string
		if ambiguous[ident.Normalize(label)] {
			id = e.assigner.AssignQualified(label, frameName)
		} else {
			id = e.assigner.Assign(label, frameName)
		}
		e.nodeID[s.ID] = id

		x, y := s.Bounds.X, s.Bounds.Y
		n := model.Node{
			ID:         id,
			Type:       e.nodeType(s),
			Label:      label,
			X:          &x,
			Y:          &y,
			Width:      s.Bounds.Width,
			Height:     s.Bounds.Height,
			Confidence: 1.0,
		}
		if s.FillColor != "" || s.StrokeColor != "" {
			n.Style = &model.Style{FillColor: s.FillColor, StrokeColor: s.StrokeColor}
		}
		d.Nodes = append(d.Nodes, n)
	}

	e.summary.NodeCount = len(d.Nodes)
	e.log.Debug("extracted nodes", "count", len(d.Nodes))
	observability.Extract().OnPassComplete(ctx, "nodes", len(d.Nodes))
}

// extractEdges is pass two: live connectors with both endpoints resolved
// to surviving nodes become edges; the rest are dropped and recorded.
func (e *extractor) extractEdges(ctx context.Context, d *model.Diagram) {
	for _, c := range e.sc.Connectors {
		if c.Deleted {
			e.summary.DeletedElements++
			continue
		}

		ep := e.bindings.EndpointsFor(c.ID)
		from, fromOK := e.nodeID[ep.From]
		to, toOK := e.nodeID[ep.To]
		if !fromOK || !toOK {
			e.summary.DroppedConnectors = append(e.summary.DroppedConnectors, c.ID)
			e.log.Debug("dropped connector", "id", c.ID, "from", ep.From, "to", ep.To)
			continue
		}

		edgeType := model.EdgeArrow
		if c.RawKind == scene.ConnectorLine {
			edgeType = model.EdgeLine
		}

		edge := model.Edge{
			ID:         e.assigner.AssignEdge(from, to),
			From:       from,
			To:         to,
			Type:       edgeType,
			Label:      e.bindings.TextFor(c.ID),
			Confidence: 1.0,
		}
		if c.StrokeStyle == model.StrokeDashed {
			edge.Style = &model.EdgeStyle{StrokeStyle: model.StrokeDashed}
		}
		d.Edges = append(d.Edges, edge)
	}

	e.summary.EdgeCount = len(d.Edges)
	e.log.Debug("extracted edges", "count", len(d.Edges), "dropped", len(e.summary.DroppedConnectors))
	observability.Extract().OnPassComplete(ctx, "edges", len(d.Edges))
}

// extractGroups is pass three: live frames with at least one surviving
// member become groups.
func (e *extractor) extractGroups(ctx context.Context, d *model.Diagram) {
	for _, f := range e.sc.Frames {
		if f.Deleted {
			e.summary.DeletedElements++
			continue
		}

		var members []string
		for _, rawID := range e.bindings.MembersOf(f.ID) {
			if id, ok := e.nodeID[rawID]; ok {
				members = append(members, id)
			}
		}
		if len(members) == 0 {
			continue
		}

		label := f.Name
		if label == "" {
			label = "Group " + strconv.Itoa(len(d.Groups)+1)
		}
		d.Groups = append(d.Groups, model.Group{
			ID:      e.assigner.Assign(label, ""),
			Label:   label,
			NodeIDs: members,
		})
	}

	e.summary.GroupCount = len(d.Groups)
	e.log.Debug("extracted groups", "count", len(d.Groups))
	observability.Extract().OnPassComplete(ctx, "groups", len(d.Groups))
}

// shapeLabel picks the display label: bound text first, the shape's own
// inline text second, a positional fallback last.
func (e *extractor) shapeLabel(s scene.Shape, ordinal int) string {
	if t := e.bindings.TextFor(s.ID); t != "" {
		return t
	}
	if s.Text != "" {
		return s.Text
	}
	return "Shape " + strconv.Itoa(ordinal)
}

func (e *extractor) nodeType(s scene.Shape) string {
	if s.RawKind == "" {
		return model.NodeRectangle
	}
	if t, ok := nodeTypeByRawKind[s.RawKind]; ok {
		return t
	}
	e.summary.UnmappedShapes = append(e.summary.UnmappedShapes, UnmappedShape{ID: s.ID, Kind: s.RawKind})
	e.log.Debug("unmapped shape kind", "id", s.ID, "kind", s.RawKind)
	return model.NodeRectangle
}

// ambiguousLabels returns the normalized labels carried by more than one
// live shape. Deleted shapes do not make a label ambiguous.
func (e *extractor) ambiguousLabels() map[string]bool {
	counts := make(map[string]int)
	ordinal := 0
	for _, s := range e.sc.Shapes {
		if s.Deleted {
			continue
		}
		ordinal++
		counts[ident.Normalize(e.shapeLabel(s, ordinal))]++
	}

	ambiguous := make(map[string]bool)
	for label, n := range counts {
		if n > 1 {
			ambiguous[label] = true
		}
	}
	return ambiguous
}

// inferDiagramType classifies the extracted diagram when the caller gave
// no override: any decision diamond marks a flowchart, everything else is
// an architecture sketch.
func inferDiagramType(nodes []model.Node) string {
	for _, n := range nodes {
		if n.Type == model.NodeDiamond {
			return model.DiagramFlowchart
		}
	}
	return model.DiagramArchitecture
}

func elementCount(sc scene.Scene) int {
	return len(sc.Shapes) + len(sc.Texts) + len(sc.Connectors) + len(sc.Frames)
}
