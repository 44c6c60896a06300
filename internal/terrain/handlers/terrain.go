package handlers

import (
	"context"
	"fmt"
	"sort"

	"terrainforge/internal/terrain/pattern"
	"terrainforge/internal/terrain/repair"
	"terrainforge/internal/terrain/schema"
	"terrainforge/internal/terrain/validate"
)

// ValidateWorkflow runs the validator over the submitted graph and returns
// its full Result as a JSON-marshalable map (spec §4.9, §4.6). Validation
// errors are not handler failures: the envelope always carries
// success=true, with "valid" distinguishing a structurally sound graph from
// one that failed a pass (spec §7 "Validation errors").
func ValidateWorkflow(v *validate.Validator) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		g, err := decodeGraph(args)
		if err != nil {
			return nil, err
		}
		return encodeResult(v.Validate(g)), nil
	}
}

// RepairWorkflow runs the repair engine followed by a re-validation pass,
// and returns the repaired graph plus the list of fixes
// applied (spec §4.7, §4.9).
func RepairWorkflow(v *validate.Validator) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		g, err := decodeGraph(args)
		if err != nil {
			return nil, err
		}

		mode := repair.Conservative
		if aggressive, _ := args["aggressive"].(bool); aggressive {
			mode = repair.Aggressive
		}

		res := repair.Repair(g, mode)

		out := encodeGraph(res.Graph)
		out["fixes_applied"] = res.FixesApplied
		out["validation"] = encodeResult(v.Validate(res.Graph))
		return out, nil
	}
}

// CreateProject builds a node list from either a literal "nodes"/
// "connections" payload or a named template, validates it, and optionally
// repairs it, returning the assembled downstream project payload (spec §4.9
// "Terrain-domain handlers").
func CreateProject(v *validate.Validator) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		var g validate.Graph
		var err error

		if templateName, ok := args["template"].(string); ok && templateName != "" {
			g, err = graphFromTemplate(templateName)
		} else {
			g, err = decodeGraph(args)
		}
		if err != nil {
			return nil, err
		}

		if autoRepair, _ := args["auto_repair"].(bool); autoRepair {
			mode := repair.Conservative
			if aggressive, _ := args["aggressive"].(bool); aggressive {
				mode = repair.Aggressive
			}
			g = repair.Repair(g, mode).Graph
		}

		res := v.Validate(g)
		out := encodeGraph(g)
		out["validation"] = encodeResult(res)
		return out, nil
	}
}

// CreateFromTemplate expands a named template into a project payload,
// without validation options beyond a plain read-only validation pass
// (spec §4.5 templates, §4.9).
func CreateFromTemplate(v *validate.Validator) func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		name, _ := args["template"].(string)
		g, err := graphFromTemplate(name)
		if err != nil {
			return nil, err
		}

		out := encodeGraph(g)
		out["validation"] = encodeResult(v.Validate(g))
		return out, nil
	}
}

func graphFromTemplate(name string) (validate.Graph, error) {
	tmpl, ok := schema.Templates[name]
	if !ok {
		return validate.Graph{}, fmt.Errorf("terrain: unknown template %q", name)
	}

	expandedNodes, expandedConns := schema.Expand(tmpl, 0, 0)
	nodes := make([]validate.Node, 0, len(expandedNodes))
	for _, n := range expandedNodes {
		props := n.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		nodes = append(nodes, validate.Node{
			ID: n.ID, Type: n.Type, Name: n.Name,
			Position:   validate.Position{X: n.X, Y: n.Y},
			Properties: props,
		})
	}

	conns := make([]validate.Connection, 0, len(expandedConns))
	for _, c := range expandedConns {
		conns = append(conns, validate.Connection{
			FromNode: c.FromNode, ToNode: c.ToNode, FromPort: c.FromPort, ToPort: c.ToPort,
		})
	}

	return validate.Graph{Nodes: nodes, Connections: conns}, nil
}

// AnalyzePatterns returns, for a submitted graph, per-node successor
// suggestions, a 0-100 connection-quality score, top-5 suggested missing
// edges, and a suggested workflow when an "intent" argument is given (spec
// §4.8 "analyze workflow"/"suggest workflow" tools; the quality score and
// suggested-edges are grounded on get_connection_quality_score and
// suggest_connections in gaea2_connection_validator.py).
func AnalyzePatterns(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	out := map[string]interface{}{}

	if intent, ok := args["intent"].(string); ok && intent != "" {
		if tmpl, found := pattern.SuggestWorkflow(intent); found {
			out["suggested_workflow"] = map[string]interface{}{
				"intent":      tmpl.Intent,
				"description": tmpl.Description,
				"node_types":  tmpl.NodeTypes,
			}
		} else {
			out["suggested_workflow"] = nil
		}
	}

	g, err := decodeGraph(args)
	if err != nil {
		return nil, err
	}

	suggestions := make(map[string]interface{}, len(g.Nodes))
	for _, n := range g.Nodes {
		succ := pattern.Successors(n.Type)
		if succ == nil {
			continue
		}
		entries := make([]map[string]interface{}, 0, len(succ))
		for _, s := range succ {
			entries = append(entries, map[string]interface{}{
				"type":        s.Type,
				"probability": s.Probability,
				"frequency":   pattern.UsageFrequency(s.Type),
			})
		}
		suggestions[fmt.Sprintf("%d", n.ID)] = entries
	}
	out["successor_suggestions"] = suggestions
	out["connection_quality_score"] = connectionQualityScore(g)
	out["suggested_connections"] = suggestConnections(g)

	return out, nil
}

// connectionQualityScore mirrors get_connection_quality_score: start at
// 100, -10 for a connection whose (from-type, to-type) pair never appears
// in the successor table, -5 for one that appears but at under 10%
// probability, -10 per node with no connection at all, +10 if the graph's
// main connected chain is a supersequence of a known workflow template.
func connectionQualityScore(g validate.Graph) float64 {
	score := 100.0

	nodeTypes := make(map[int]string, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeTypes[n.ID] = n.Type
	}

	for _, c := range g.Connections {
		fromType, fromOK := nodeTypes[c.FromNode]
		toType, toOK := nodeTypes[c.ToNode]
		if !fromOK || !toOK {
			continue
		}
		succ := pattern.Successors(fromType)
		if succ == nil {
			continue
		}
		matched := false
		for _, s := range succ {
			if s.Type == toType {
				matched = true
				if s.Probability < 0.1 {
					score -= 5
				}
				break
			}
		}
		if !matched {
			score -= 10
		}
	}

	connected := make(map[int]bool, len(g.Nodes))
	for _, c := range g.Connections {
		connected[c.FromNode] = true
		connected[c.ToNode] = true
	}
	for _, n := range g.Nodes {
		if !connected[n.ID] {
			score -= 10
		}
	}

	if pattern.SequenceMatchesAnyTemplate(mainSequence(g)) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// mainSequence walks the graph from an incoming-free start node along its
// first outgoing edge at each step, stopping on a cycle or a dead end
// (mirrors _extract_main_sequence).
func mainSequence(g validate.Graph) []string {
	if len(g.Nodes) == 0 || len(g.Connections) == 0 {
		return nil
	}

	incoming := make(map[int]bool, len(g.Connections))
	for _, c := range g.Connections {
		incoming[c.ToNode] = true
	}
	byID := make(map[int]validate.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	start := g.Nodes[0]
	for _, n := range g.Nodes {
		if !incoming[n.ID] {
			start = n
			break
		}
	}

	var sequence []string
	visited := make(map[int]bool, len(g.Nodes))
	current, ok := start, true
	for ok && !visited[current.ID] {
		sequence = append(sequence, current.Type)
		visited[current.ID] = true

		var next validate.Node
		found := false
		for _, c := range g.Connections {
			if c.FromNode == current.ID {
				if n, exists := byID[c.ToNode]; exists {
					next, found = n, true
				}
				break
			}
		}
		current, ok = next, found
	}
	return sequence
}

// suggestConnections mirrors suggest_connections: for every node with no
// outgoing edge, propose an edge to another node of a type its successor
// table lists, skipping edges that already exist, sorted by probability and
// capped at 5.
func suggestConnections(g validate.Graph) []map[string]interface{} {
	existing := make(map[[2]int]bool, len(g.Connections))
	for _, c := range g.Connections {
		existing[[2]int{c.FromNode, c.ToNode}] = true
	}
	hasOutgoing := make(map[int]bool, len(g.Nodes))
	for _, c := range g.Connections {
		hasOutgoing[c.FromNode] = true
	}

	type candidate struct {
		fromID, toID     int
		fromType, toType string
		probability      float64
	}
	var candidates []candidate

	for _, n := range g.Nodes {
		if hasOutgoing[n.ID] {
			continue
		}
		succ := pattern.Successors(n.Type)
		if succ == nil {
			continue
		}
		targets := make(map[string]float64, len(succ))
		for _, s := range succ {
			targets[s.Type] = s.Probability
		}
		for _, other := range g.Nodes {
			if other.ID == n.ID {
				continue
			}
			prob, ok := targets[other.Type]
			if !ok || existing[[2]int{n.ID, other.ID}] {
				continue
			}
			candidates = append(candidates, candidate{n.ID, other.ID, n.Type, other.Type, prob})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].probability > candidates[j].probability
	})
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}

	out := make([]map[string]interface{}, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, map[string]interface{}{
			"from_node":   c.fromID,
			"to_node":     c.toID,
			"from_type":   c.fromType,
			"to_type":     c.toType,
			"probability": c.probability,
			"reason":      fmt.Sprintf("Common pattern: %s -> %s (%.0f%%)", c.fromType, c.toType, c.probability*100),
		})
	}
	return out
}
