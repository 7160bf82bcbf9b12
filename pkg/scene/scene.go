// Package scene ingests raw diagram scenes into strongly-typed elements.
//
// A raw scene is an ordered sequence of loosely-typed element records, the
// kind of export a whiteboard tool produces: shapes, free-standing text,
// connectors, and frames, each with geometry, an optional style, and
// kind-specific linkage fields. The package validates that loose input
// once at ingestion into a closed set of element variants; downstream
// passes (binding resolution, extraction) operate only on the typed form
// and never see raw JSON.
//
// Encounter order is preserved per kind - extraction depends on it for
// deterministic identifier assignment.
package scene

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/wyeh/sketchpipe/pkg/errors"
)

// Element kinds.
const (
	KindShape     = "shape"
	KindText      = "text"
	KindConnector = "connector"
	KindFrame     = "frame"
)

// Connector kinds.
const (
	ConnectorArrow = "arrow"
	ConnectorLine  = "line"
)

// =============================================================================
// Geometry
// =============================================================================

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	X, Y          float64
	Width, Height float64
}

// Area returns the box area.
func (b Bounds) Area() float64 {
	return b.Width * b.Height
}

// Center returns the box centroid.
func (b Bounds) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// ContainsPoint reports whether the point lies inside the box, edges
// inclusive.
func (b Bounds) ContainsPoint(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// Contains reports whether o lies fully inside b, edges inclusive.
func (b Bounds) Contains(o Bounds) bool {
	return o.X >= b.X && o.Y >= b.Y &&
		o.X+o.Width <= b.X+b.Width && o.Y+o.Height <= b.Y+b.Height
}

// =============================================================================
// Typed Element Variants
// =============================================================================

// Shape is a drawable figure that becomes a diagram node.
// RawKind carries the source tool's shape name verbatim; extraction maps
// it to the closed node-type enum and warns on unmapped kinds.
type Shape struct {
	ID      string
	RawKind string
	Bounds  Bounds
	Deleted bool
	Text    string // inline label, used when no text element is bound
	FrameID string // explicit frame membership, may be empty

	FillColor   string
	StrokeColor string
	StrokeStyle string
}

// Text is a free-standing or container-bound text element.
type Text struct {
	ID          string
	Bounds      Bounds
	Deleted     bool
	Text        string
	ContainerID string // explicit text→shape binding, may be empty
	FrameID     string
}

// Endpoint is one end of a connector: an explicit element binding, a bare
// point for geometric resolution, or neither.
type Endpoint struct {
	ElementID string // explicit binding, preferred when set
	X, Y      float64
	HasPoint  bool
}

// Connector is an arrow or line that becomes a diagram edge.
type Connector struct {
	ID          string
	RawKind     string // "arrow" or "line"
	Bounds      Bounds
	Deleted     bool
	StrokeStyle string
	Start, End  Endpoint
	FrameID     string
}

// StartPoint returns the start coordinate for geometric endpoint
// resolution: the explicit point when present, else the top-left of the
// connector's bounds.
func (c *Connector) StartPoint() (x, y float64) {
	if c.Start.HasPoint {
		return c.Start.X, c.Start.Y
	}
	return c.Bounds.X, c.Bounds.Y
}

// EndPoint returns the end coordinate: the explicit point when present,
// else the bottom-right of the connector's bounds.
func (c *Connector) EndPoint() (x, y float64) {
	if c.End.HasPoint {
		return c.End.X, c.End.Y
	}
	return c.Bounds.X + c.Bounds.Width, c.Bounds.Y + c.Bounds.Height
}

// Frame is a grouping container that becomes a diagram group.
type Frame struct {
	ID      string
	Bounds  Bounds
	Deleted bool
	Name    string
}

// Scene holds the validated elements of one raw scene, split by kind
// with per-kind encounter order preserved.
type Scene struct {
	Shapes     []Shape
	Texts      []Text
	Connectors []Connector
	Frames     []Frame
}

// =============================================================================
// Ingestion
// =============================================================================

// rawElement is the loose wire form of a scene element. Kind-specific
// fields are all optional at this level; validation happens in fromRaw.
type rawElement struct {
	Kind    string  `json:"kind"`
	ID      string  `json:"id"`
	Deleted bool    `json:"deleted"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	// Style
	FillColor   string `json:"fillColor"`
	StrokeColor string `json:"strokeColor"`
	StrokeStyle string `json:"strokeStyle"`

	// Kind-specific linkage
	Shape       string       `json:"shape"`       // shape: raw shape kind
	Connector   string       `json:"connector"`   // connector: "arrow" or "line"
	Text        string       `json:"text"`        // shape inline label / text content
	ContainerID string       `json:"containerId"` // text: explicit shape binding
	FrameID     string       `json:"frameId"`     // any: explicit frame membership
	Name        string       `json:"name"`        // frame: display name
	Start       *rawEndpoint `json:"start"`       // connector
	End         *rawEndpoint `json:"end"`         // connector
}

type rawEndpoint struct {
	ElementID string   `json:"elementId"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
}

type rawScene struct {
	Elements []rawElement `json:"elements"`
}

// ReadScene decodes a raw scene JSON document from r and validates each
// element into its typed variant. It returns an INVALID_SCENE error when
// the JSON is malformed, an element is missing its kind or id, or an
// element carries an unknown kind. Deleted elements are kept - skipping
// them is the extraction pipeline's job, which also counts them.
func ReadScene(r io.Reader) (Scene, error) {
	var raw rawScene
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Scene{}, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	return fromRaw(raw)
}

// UnmarshalScene decodes raw scene JSON bytes. See [ReadScene].
func UnmarshalScene(data []byte) (Scene, error) {
	return ReadScene(bytes.NewReader(data))
}

func fromRaw(raw rawScene) (Scene, error) {
	var sc Scene
	seen := make(map[string]bool, len(raw.Elements))

	for i, el := range raw.Elements {
		if el.ID == "" {
			return Scene{}, errors.New(errors.ErrCodeInvalidScene, "element %d: missing id", i)
		}
		if seen[el.ID] {
			return Scene{}, errors.New(errors.ErrCodeInvalidScene, "duplicate element id: %q", el.ID)
		}
		seen[el.ID] = true

		bounds := Bounds{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height}

		switch el.Kind {
		case KindShape:
			sc.Shapes = append(sc.Shapes, Shape{
				ID:          el.ID,
				RawKind:     el.Shape,
				Bounds:      bounds,
				Deleted:     el.Deleted,
				Text:        el.Text,
				FrameID:     el.FrameID,
				FillColor:   el.FillColor,
				StrokeColor: el.StrokeColor,
				StrokeStyle: el.StrokeStyle,
			})
		case KindText:
			sc.Texts = append(sc.Texts, Text{
				ID:          el.ID,
				Bounds:      bounds,
				Deleted:     el.Deleted,
				Text:        el.Text,
				ContainerID: el.ContainerID,
				FrameID:     el.FrameID,
			})
		case KindConnector:
			kind := el.Connector
			if kind == "" {
				kind = ConnectorArrow
			}
			sc.Connectors = append(sc.Connectors, Connector{
				ID:          el.ID,
				RawKind:     kind,
				Bounds:      bounds,
				Deleted:     el.Deleted,
				StrokeStyle: el.StrokeStyle,
				Start:       endpointFromRaw(el.Start),
				End:         endpointFromRaw(el.End),
				FrameID:     el.FrameID,
			})
		case KindFrame:
			sc.Frames = append(sc.Frames, Frame{
				ID:      el.ID,
				Bounds:  bounds,
				Deleted: el.Deleted,
				Name:    el.Name,
			})
		case "":
			return Scene{}, errors.New(errors.ErrCodeInvalidScene, "element %q: missing kind", el.ID)
		default:
			return Scene{}, errors.New(errors.ErrCodeInvalidScene, "element %q: unknown kind %q", el.ID, el.Kind)
		}
	}

	return sc, nil
}

func endpointFromRaw(r *rawEndpoint) Endpoint {
	if r == nil {
		return Endpoint{}
	}
	ep := Endpoint{ElementID: r.ElementID}
	if r.X != nil && r.Y != nil {
		ep.X, ep.Y = *r.X, *r.Y
		ep.HasPoint = true
	}
	return ep
}
