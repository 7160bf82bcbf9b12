package model

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/wyeh/sketchpipe/pkg/errors"
)

// rawNode mirrors Node with pointer fields for the required keys so a
// missing key can be told apart from a zero value.
type rawNode struct {
	ID         *string  `json:"id"`
	Type       *string  `json:"type"`
	Label      *string  `json:"label"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Style      *Style   `json:"style"`
	Confidence *float64 `json:"confidence"`
}

type rawEdge struct {
	ID         *string    `json:"id"`
	From       *string    `json:"from"`
	To         *string    `json:"to"`
	Type       string     `json:"type"`
	Label      string     `json:"label"`
	Style      *EdgeStyle `json:"style"`
	Confidence *float64   `json:"confidence"`
}

type rawDiagram struct {
	DiagramType string    `json:"diagramType"`
	Title       string    `json:"title"`
	Nodes       []rawNode `json:"nodes"`
	Edges       []rawEdge `json:"edges"`
	Groups      []Group   `json:"groups"`
}

// ReadDiagram decodes an Intermediate Model JSON document from r, applies
// defaults, and validates the structural invariants.
//
// The input is typically vision-model output or a previously exported
// diagram:
//
//	{
//	  "diagramType": "flowchart",
//	  "nodes": [{"id": "start", "type": "ellipse", "label": "Start"}],
//	  "edges": [{"id": "e1", "from": "start", "to": "start"}]
//	}
//
// ReadDiagram returns a SCHEMA_ERROR if:
//   - the JSON is malformed
//   - a node is missing its id, type, or label field
//   - an edge is missing its id, from, or to field
//   - the assembled diagram violates any invariant checked by [Diagram.Validate]
//
// Defaults applied: edge type "arrow", node size 120×60 on access via
// [Node.Size], confidence 1.0 for nodes and edges. Vision confidence
// scores that are present are carried through unchanged.
func ReadDiagram(r io.Reader) (Diagram, error) {
	var raw rawDiagram
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Diagram{}, errors.Wrap(errors.ErrCodeSchema, err, "decode diagram")
	}
	return fromRaw(raw)
}

// UnmarshalDiagram decodes diagram JSON bytes. See [ReadDiagram].
func UnmarshalDiagram(data []byte) (Diagram, error) {
	return ReadDiagram(bytes.NewReader(data))
}

func fromRaw(raw rawDiagram) (Diagram, error) {
	d := Diagram{
		DiagramType: raw.DiagramType,
		Title:       raw.Title,
		Nodes:       make([]Node, 0, len(raw.Nodes)),
		Edges:       make([]Edge, 0, len(raw.Edges)),
		Groups:      raw.Groups,
	}

	for i, n := range raw.Nodes {
		if n.ID == nil {
			return Diagram{}, errors.New(errors.ErrCodeSchema, "node %d: missing required field %q", i, "id")
		}
		if n.Type == nil {
			return Diagram{}, errors.New(errors.ErrCodeSchema, "node %q: missing required field %q", *n.ID, "type")
		}
		if n.Label == nil {
			return Diagram{}, errors.New(errors.ErrCodeSchema, "node %q: missing required field %q", *n.ID, "label")
		}
		d.Nodes = append(d.Nodes, Node{
			ID:         *n.ID,
			Type:       *n.Type,
			Label:      *n.Label,
			X:          n.X,
			Y:          n.Y,
			Width:      n.Width,
			Height:     n.Height,
			Style:      n.Style,
			Confidence: confidenceOrDefault(n.Confidence),
		})
	}

	for i, e := range raw.Edges {
		if e.ID == nil {
			return Diagram{}, errors.New(errors.ErrCodeSchema, "edge %d: missing required field %q", i, "id")
		}
		if e.From == nil {
			return Diagram{}, errors.New(errors.ErrCodeSchema, "edge %q: missing required field %q", *e.ID, "from")
		}
		if e.To == nil {
			return Diagram{}, errors.New(errors.ErrCodeSchema, "edge %q: missing required field %q", *e.ID, "to")
		}
		typ := e.Type
		if typ == "" {
			typ = EdgeArrow
		}
		d.Edges = append(d.Edges, Edge{
			ID:         *e.ID,
			From:       *e.From,
			To:         *e.To,
			Type:       typ,
			Label:      e.Label,
			Style:      e.Style,
			Confidence: confidenceOrDefault(e.Confidence),
		})
	}

	if err := d.Validate(); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

func confidenceOrDefault(c *float64) float64 {
	if c == nil {
		return 1.0
	}
	return *c
}

// MarshalDiagram encodes a Diagram as indented JSON. The output is
// deterministic and can be re-imported with [UnmarshalDiagram] for
// round-trip processing.
func MarshalDiagram(d Diagram) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram")
	}
	return buf.Bytes(), nil
}

// WriteDiagram encodes a Diagram as JSON and writes it to w.
func WriteDiagram(d Diagram, w io.Writer) error {
	data, err := MarshalDiagram(d)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
