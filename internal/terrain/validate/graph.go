// Package validate implements the graph validator (spec §4.6): connection
// normalization, the 9 validation passes, and per-node memoized caching.
// Grounded on the original Python tools/mcp/gaea2/validation/
// gaea2_validation.py (property validation, int-coercion),
// gaea2_connection_validator.py (cycle DFS, orphan detection, quality
// score), and gaea2_connection_utils.py (normalize_connection).
package validate

// Position is a node's non-semantic 2D placement (spec §3).
type Position struct {
	X, Y float64
}

// Node is a graph vertex (spec §3).
type Node struct {
	ID         int
	Type       string
	Name       string
	Position   Position
	Properties map[string]interface{}
}

// Connection is the canonical graph edge shape (spec §3, §6): all accepted
// input shapes are normalized to this one before any validation pass runs.
type Connection struct {
	FromNode, ToNode int
	FromPort, ToPort string
}

// Graph is the (nodes, connections) pair the validator and repair engine
// operate on (spec §6 Canonical graph-payload shape).
type Graph struct {
	Nodes       []Node
	Connections []Connection
}
