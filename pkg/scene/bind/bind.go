// Package bind resolves implicit relationships between raw scene elements.
//
// Diagram sources rarely link everything explicitly: a text label may float
// over its shape without a container reference, an arrow may end near a
// box without a binding, a shape may sit inside a frame it never names.
// This package reconstructs those relationships from explicit linkage
// fields first and geometry second, behind named, independently tunable
// thresholds.
//
// Resolution never fails. Every heuristic degrades gracefully: text that
// attaches to nothing and connectors with an unresolvable endpoint are
// recorded on the [Bindings] result, not discarded silently - the
// extraction pipeline surfaces the counts.
package bind

import (
	"github.com/wyeh/sketchpipe/pkg/scene"
)

// DefaultProximityTolerance is the maximum distance, in scene units,
// between a connector endpoint and a shape boundary for geometric
// endpoint resolution.
const DefaultProximityTolerance = 50.0

// Options holds the tunable resolution thresholds.
type Options struct {
	// ProximityTolerance overrides DefaultProximityTolerance when > 0.
	ProximityTolerance float64
}

func (o Options) tolerance() float64 {
	if o.ProximityTolerance > 0 {
		return o.ProximityTolerance
	}
	return DefaultProximityTolerance
}

// Endpoints is the endpoint resolution of one connector. Resolved is
// false when either side failed to resolve; From/To hold raw shape ids.
type Endpoints struct {
	From, To string
	Resolved bool
}

// Bindings is the per-raw-id lookup produced by [Resolve] and consumed
// by the extraction pipeline.
type Bindings struct {
	textByContainer map[string]string    // container raw id → text content
	endpoints       map[string]Endpoints // connector raw id → resolution
	frameMembers    map[string][]string  // frame raw id → member shape raw ids
	frameOf         map[string]string    // shape raw id → nearest enclosing frame

	// UnattachedText lists ids of non-deleted text elements that resolved
	// to no container, in encounter order.
	UnattachedText []string

	// UnresolvedConnectors lists ids of non-deleted connectors with at
	// least one unresolvable endpoint, in encounter order.
	UnresolvedConnectors []string
}

// TextFor returns the text bound to the element with the given raw id
// (a shape label or a connector label), or "" when none is bound.
func (b *Bindings) TextFor(rawID string) string {
	return b.textByContainer[rawID]
}

// EndpointsFor returns the endpoint resolution for a connector.
func (b *Bindings) EndpointsFor(rawID string) Endpoints {
	return b.endpoints[rawID]
}

// MembersOf returns the raw shape ids belonging to a frame, in shape
// encounter order.
func (b *Bindings) MembersOf(frameID string) []string {
	return b.frameMembers[frameID]
}

// FrameOf returns the raw id of the nearest enclosing frame of a shape,
// or "" when the shape belongs to no frame. Used as the disambiguation
// context for identifier assignment.
func (b *Bindings) FrameOf(shapeID string) string {
	return b.frameOf[shapeID]
}

// Resolve computes all three resolutions for a scene:
//
//   - text→shape: explicit container reference wins when it names a live
//     shape or connector; else the smallest-area non-deleted shape whose
//     bounds contain the text centroid (smallest first so overlapping
//     outer shapes don't steal inner labels); equal areas tie-break on
//     encounter order, first shape wins.
//   - connector endpoints→shapes: explicit element references win per
//     endpoint; else the nearest non-deleted shape boundary within the
//     proximity tolerance.
//   - element→frame: explicit frame reference wins; else full containment
//     of the shape's bounds inside the frame's bounds. A shape may land in
//     several frames; FrameOf reports the smallest enclosing one.
func Resolve(sc scene.Scene, opts Options) Bindings {
	b := Bindings{
		textByContainer: make(map[string]string),
		endpoints:       make(map[string]Endpoints, len(sc.Connectors)),
		frameMembers:    make(map[string][]string, len(sc.Frames)),
		frameOf:         make(map[string]string),
	}

	resolveText(&b, sc)
	resolveEndpoints(&b, sc, opts.tolerance())
	resolveFrames(&b, sc)

	return b
}

func resolveText(b *Bindings, sc scene.Scene) {
	for _, t := range sc.Texts {
		if t.Deleted {
			continue
		}

		if t.ContainerID != "" {
			if !liveContainer(sc, t.ContainerID) {
				b.UnattachedText = append(b.UnattachedText, t.ID)
				continue
			}
			if _, taken := b.textByContainer[t.ContainerID]; !taken {
				b.textByContainer[t.ContainerID] = t.Text
			}
			continue
		}

		if id, ok := shapeAtCentroid(sc, t.Bounds); ok {
			if _, taken := b.textByContainer[id]; !taken {
				b.textByContainer[id] = t.Text
			}
			continue
		}

		b.UnattachedText = append(b.UnattachedText, t.ID)
	}
}

// liveContainer reports whether id names a non-deleted shape or connector,
// the two element kinds text can label. Text bound to anything else never
// reaches an output and is recorded as unattached instead.
func liveContainer(sc scene.Scene, id string) bool {
	for _, s := range sc.Shapes {
		if s.ID == id {
			return !s.Deleted
		}
	}
	for _, c := range sc.Connectors {
		if c.ID == id {
			return !c.Deleted
		}
	}
	return false
}

// shapeAtCentroid finds the smallest-area shape containing the centroid
// of the given bounds. Ties on area resolve to the earlier shape.
func shapeAtCentroid(sc scene.Scene, bounds scene.Bounds) (string, bool) {
	cx, cy := bounds.Center()

	best := -1
	for i, s := range sc.Shapes {
		if s.Deleted || !s.Bounds.ContainsPoint(cx, cy) {
			continue
		}
		if best < 0 || s.Bounds.Area() < sc.Shapes[best].Bounds.Area() {
			best = i
		}
	}

	if best < 0 {
		return "", false
	}
	return sc.Shapes[best].ID, true
}

func resolveEndpoints(b *Bindings, sc scene.Scene, tolerance float64) {
	for _, c := range sc.Connectors {
		if c.Deleted {
			continue
		}

		sx, sy := c.StartPoint()
		ex, ey := c.EndPoint()

		ep := Endpoints{
			From: resolveEndpoint(sc, c.Start, sx, sy, tolerance),
			To:   resolveEndpoint(sc, c.End, ex, ey, tolerance),
		}
		ep.Resolved = ep.From != "" && ep.To != ""

		b.endpoints[c.ID] = ep
		if !ep.Resolved {
			b.UnresolvedConnectors = append(b.UnresolvedConnectors, c.ID)
		}
	}
}

// resolveEndpoint resolves one connector endpoint to a raw shape id.
// Explicit bindings are trusted verbatim, even to deleted shapes - the
// extraction pipeline decides survival. Geometric fallback considers only
// live shapes.
func resolveEndpoint(sc scene.Scene, ep scene.Endpoint, x, y, tolerance float64) string {
	if ep.ElementID != "" {
		return ep.ElementID
	}

	best := -1
	bestDist := tolerance
	for i, s := range sc.Shapes {
		if s.Deleted {
			continue
		}
		if d := boundaryDistance(s.Bounds, x, y); d < bestDist || (best < 0 && d == bestDist) {
			best, bestDist = i, d
		}
	}

	if best < 0 {
		return ""
	}
	return sc.Shapes[best].ID
}

// boundaryDistance returns the Chebyshev distance from a point to a box:
// the larger of the per-axis overshoots, 0 when the point lies inside.
func boundaryDistance(b scene.Bounds, x, y float64) float64 {
	dx := axisDistance(x, b.X, b.X+b.Width)
	dy := axisDistance(y, b.Y, b.Y+b.Height)
	if dx > dy {
		return dx
	}
	return dy
}

func axisDistance(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}

func resolveFrames(b *Bindings, sc scene.Scene) {
	for _, f := range sc.Frames {
		if f.Deleted {
			continue
		}

		var members []string
		for _, s := range sc.Shapes {
			if s.Deleted {
				continue
			}
			switch {
			case s.FrameID == f.ID:
				members = append(members, s.ID)
			case s.FrameID == "" && f.Bounds.Contains(s.Bounds):
				members = append(members, s.ID)
			}
		}
		b.frameMembers[f.ID] = members
	}

	// FrameOf picks the smallest enclosing frame per shape so identifier
	// context uses the nearest container when frames nest.
	for _, s := range sc.Shapes {
		if s.Deleted {
			continue
		}

		if s.FrameID != "" {
			if frameAlive(sc, s.FrameID) {
				b.frameOf[s.ID] = s.FrameID
			}
			continue
		}

		best := -1
		for i, f := range sc.Frames {
			if f.Deleted || !f.Bounds.Contains(s.Bounds) {
				continue
			}
			if best < 0 || f.Bounds.Area() < sc.Frames[best].Bounds.Area() {
				best = i
			}
		}
		if best >= 0 {
			b.frameOf[s.ID] = sc.Frames[best].ID
		}
	}
}

func frameAlive(sc scene.Scene, id string) bool {
	for _, f := range sc.Frames {
		if f.ID == id {
			return !f.Deleted
		}
	}
	return false
}
