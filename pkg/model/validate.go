package model

import (
	"github.com/wyeh/sketchpipe/pkg/errors"
)

// Validate checks the structural invariants every Diagram must satisfy
// before rendering. It returns a SCHEMA_ERROR on the first violation:
//
//   - diagramType must be one of the closed enum values
//   - node ids must be pairwise distinct
//   - edge ids must be pairwise distinct
//   - every edge's from/to must reference an existing node
//   - every group must have a non-empty membership of existing nodes
//
// Violations are surfaced, never silently dropped - a caller holding a
// Diagram that passed Validate can hand it to any renderer.
func (d *Diagram) Validate() error {
	if !ValidDiagramTypes[d.DiagramType] {
		return errors.New(errors.ErrCodeSchema, "unknown diagramType: %q", d.DiagramType)
	}

	nodeIDs := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeSchema, "node with empty id")
		}
		if nodeIDs[n.ID] {
			return errors.New(errors.ErrCodeSchema, "duplicate node id: %q", n.ID)
		}
		nodeIDs[n.ID] = true
	}

	edgeIDs := make(map[string]bool, len(d.Edges))
	for _, e := range d.Edges {
		if e.ID == "" {
			return errors.New(errors.ErrCodeSchema, "edge with empty id")
		}
		if edgeIDs[e.ID] {
			return errors.New(errors.ErrCodeSchema, "duplicate edge id: %q", e.ID)
		}
		edgeIDs[e.ID] = true

		if !nodeIDs[e.From] {
			return errors.New(errors.ErrCodeSchema, "edge %q references unknown node %q", e.ID, e.From)
		}
		if !nodeIDs[e.To] {
			return errors.New(errors.ErrCodeSchema, "edge %q references unknown node %q", e.ID, e.To)
		}
	}

	for _, g := range d.Groups {
		if g.ID == "" {
			return errors.New(errors.ErrCodeSchema, "group with empty id")
		}
		if len(g.NodeIDs) == 0 {
			return errors.New(errors.ErrCodeSchema, "group %q has no members", g.ID)
		}
		for _, id := range g.NodeIDs {
			if !nodeIDs[id] {
				return errors.New(errors.ErrCodeSchema, "group %q references unknown node %q", g.ID, id)
			}
		}
	}

	return nil
}
