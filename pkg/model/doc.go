// Package model defines the canonical Intermediate Model for sketchpipe.
//
// The Intermediate Model decouples diagram sources (raw scene extraction,
// vision-model JSON) from output formats. A [Diagram] is a typed graph of
// nodes, edges, and groups with a closed diagram-type enum:
//
//	Diagram
//	├── Nodes:  shapes with position, size, style, confidence
//	├── Edges:  directed connections between node ids
//	└── Groups: named, non-exclusive node memberships
//
// # Invariants
//
// Every Diagram accepted by rendering must satisfy:
//   - node ids pairwise distinct
//   - edge ids pairwise distinct
//   - every edge's From/To resolves to an existing node
//   - every group's NodeIDs resolve to existing nodes, membership non-empty
//   - DiagramType is one of the closed enum values
//
// [Diagram.Validate] enforces these and returns a SCHEMA_ERROR structured
// error on violation. A Diagram is constructed once, by extraction or by
// [ReadDiagram] on external JSON, and treated as read-only thereafter.
//
// # Serialization
//
// The JSON schema matches the vision-model output format (camelCase keys,
// "diagramType", "nodeIds", "strokeStyle"). [ReadDiagram] applies defaults
// (120×60 size, arrow edges, confidence 1.0) and validates structural
// invariants; it does not re-validate vision confidence scores.
package model
