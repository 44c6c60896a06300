// Package repair implements the graph repair engine (spec §4.7): bounded,
// deterministic auto-fixes applied to a user-submitted graph before it is
// handed to validate.Validator or the orchestrator. Grounded on the original
// Python tools/mcp/gaea2/validation/gaea2_error_recovery.py (essential
// property subsets, repair ordering) and
// tools/mcp/gaea2/validation/gaea2_connection_validator.py (dedup, dangling
// edge removal).
package repair

import (
	"fmt"
	"sort"

	"terrainforge/internal/terrain/pattern"
	"terrainforge/internal/terrain/schema"
	"terrainforge/internal/terrain/validate"
)

// Mode selects how much repair is permitted to invent (spec §4.7).
type Mode int

const (
	// Conservative applies only safe auto-fixes: normalization,
	// deduplication, property coercion/defaulting/pruning, and dangling
	// edge removal. It never adds or removes a node.
	Conservative Mode = iota
	// Aggressive additionally adds missing mandatory companion nodes,
	// auto-connects orphans via the pattern table, and adds an erosion ->
	// rivers edge where rivers have no upstream erosion. It still never inserts an export node (spec §9).
	Aggressive
)

// Result is the repair engine's output (spec §4.7): the repaired graph plus
// a human-readable list of fixes applied.
type Result struct {
	Graph        validate.Graph
	FixesApplied []string
}

// essentialProperties lists, per property-limited node type, the subset to
// keep when pruning to the 3-property cap (spec §4.7 step 3). Types absent
// from this table fall back to the first 3 property names in alphabetical
// order; the order in which the caller supplied properties is not used.
var essentialProperties = map[string][]string{
	"Snow":           {"Duration", "SnowLine", "Melt"},
	"Beach":          {"Width", "Slope"},
	"Coast":          {"Width", "Height", "Slope"},
	"Lakes":          {"Count", "Size"},
	"Glacier":        {"Flow", "Depth", "Melt"},
	"SeaLevel":       {"Level", "Swell"},
	"LavaFlow":       {"Temperature", "Viscosity"},
	"ThermalShatter": {"Intensity", "Scale"},
	"Ridge":          {"Scale", "Complexity"},
	"Strata":         {"Layers", "Scale", "Distortion"},
	"Voronoi":        {"Scale", "Cells", "Randomness"},
	"Terrace":        {"Steps", "Sharpness", "Uniformity"},
}

// Repair runs the conservative pass, and the aggressive passes if mode is
// Aggressive, over g (spec §4.7). It never removes a node the caller
// supplied (spec §8 "Repair conservativity"); aggressive mode may add nodes
// and edges but never an Export node (spec §9).
func Repair(g validate.Graph, mode Mode) Result {
	var fixes []string

	nodes := append([]validate.Node(nil), g.Nodes...)
	conns := append([]validate.Connection(nil), g.Connections...)

	conns, n := deduplicateConnections(conns)
	if n > 0 {
		fixes = append(fixes, fmt.Sprintf("Deduplicated %d connection(s)", n))
	}

	nodes, propFixes := coerceAndPrune(nodes)
	fixes = append(fixes, propFixes...)

	conns, removed := removeDanglingConnections(nodes, conns)
	if removed > 0 {
		fixes = append(fixes, fmt.Sprintf("Removed %d connection(s) with nonexistent endpoint(s)", removed))
	}

	if mode == Aggressive {
		nodes, conns, fixes = addMissingCompanions(nodes, conns, fixes)
		conns, fixes = connectOrphans(nodes, conns, fixes)
		conns, fixes = optimizeOrdering(nodes, conns, fixes)
	}

	return Result{
		Graph:        validate.Graph{Nodes: nodes, Connections: conns},
		FixesApplied: fixes,
	}
}

func deduplicateConnections(conns []validate.Connection) ([]validate.Connection, int) {
	seen := make(map[string]bool, len(conns))
	out := make([]validate.Connection, 0, len(conns))
	removed := 0
	for _, c := range conns {
		key := fmt.Sprintf("%d>%d:%s>%s", c.FromNode, c.ToNode, c.FromPort, c.ToPort)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out, removed
}

func coerceAndPrune(nodes []validate.Node) ([]validate.Node, []string) {
	var fixes []string
	out := make([]validate.Node, len(nodes))

	for i, n := range nodes {
		def, ok := schema.Lookup(n.Type)
		if !ok {
			out[i] = n
			continue
		}

		fixed := n
		fixed.Properties = applyDefaults(def, n.Properties)

		if schema.PropertyLimitedNodes[n.Type] && len(fixed.Properties) > 3 {
			fixed.Properties = pruneToEssential(n.Type, fixed.Properties)
			fixes = append(fixes, fmt.Sprintf("Pruned node %d (%s) to %d essential properties", n.ID, n.Type, len(fixed.Properties)))
		}

		out[i] = fixed
	}

	return out, fixes
}

// applyDefaults runs the property validator's coercion/clamp pass and adds
// defaults for any declared property missing from the input (spec §4.7
// step 3).
func applyDefaults(def schema.NodeDef, properties map[string]interface{}) map[string]interface{} {
	checked := validate.CoercedProperties(def, properties)

	for name, propDef := range def.Properties {
		if _, present := checked[name]; !present && propDef.Default != nil {
			checked[name] = propDef.Default
		}
	}
	return checked
}

func pruneToEssential(nodeType string, properties map[string]interface{}) map[string]interface{} {
	essential, ok := essentialProperties[nodeType]
	if !ok {
		keys := make([]string, 0, len(properties))
		for k := range properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 3 {
			keys = keys[:3]
		}
		essential = keys
	}

	out := make(map[string]interface{}, len(essential))
	for _, k := range essential {
		if v, ok := properties[k]; ok {
			out[k] = v
		}
	}

	// Fewer than 3 essential keys were present (or the map itself lists
	// fewer than 3, e.g. Beach/SeaLevel/LavaFlow): top up from whatever
	// other properties the node carries, in sorted order for determinism.
	if len(out) < 3 {
		keys := make([]string, 0, len(properties))
		for k := range properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if len(out) >= 3 {
				break
			}
			if _, already := out[k]; !already {
				out[k] = properties[k]
			}
		}
	}
	return out
}

func removeDanglingConnections(nodes []validate.Node, conns []validate.Connection) ([]validate.Connection, int) {
	exists := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		exists[n.ID] = true
	}

	out := make([]validate.Connection, 0, len(conns))
	removed := 0
	for _, c := range conns {
		if !exists[c.FromNode] || !exists[c.ToNode] {
			removed++
			continue
		}
		out = append(out, c)
	}
	return out, removed
}

// addMissingCompanions implements aggressive step 5: if any generator is
// present but no colorizer exists, add a TextureBase+SatMap chain; if any
// Rivers node has no upstream erosion node, insert one on its input edge.
func addMissingCompanions(nodes []validate.Node, conns []validate.Connection, fixes []string) ([]validate.Node, []validate.Connection, []string) {
	hasGenerator, hasColorizer := false, false
	lastGeneratorID := 0
	for _, n := range nodes {
		if def, ok := schema.Lookup(n.Type); ok {
			switch def.Category {
			case schema.CategoryGenerator:
				hasGenerator = true
				lastGeneratorID = n.ID
			case schema.CategoryColorizer:
				hasColorizer = true
			}
		}
	}

	nextID := maxNodeID(nodes) + 1

	if hasGenerator && !hasColorizer {
		textureID, satID := nextID, nextID+1
		nextID += 2
		nodes = append(nodes,
			validate.Node{ID: textureID, Type: "TextureBase", Name: "TextureBase"},
			validate.Node{ID: satID, Type: "SatMap", Name: "SatMap"},
		)
		conns = append(conns,
			validate.Connection{FromNode: lastGeneratorID, ToNode: textureID, FromPort: "Out", ToPort: "In"},
			validate.Connection{FromNode: textureID, ToNode: satID, FromPort: "Out", ToPort: "In"},
		)
		fixes = append(fixes, fmt.Sprintf("Added missing texture chain (TextureBase %d -> SatMap %d)", textureID, satID))
	}

	for _, n := range nodes {
		if n.Type != "Rivers" {
			continue
		}
		if hasUpstreamErosion(nodes, conns, n.ID) {
			continue
		}
		incoming := firstIncoming(conns, n.ID)
		if incoming == nil {
			continue
		}
		erosionID := nextID
		nextID++
		nodes = append(nodes, validate.Node{ID: erosionID, Type: "Erosion", Name: "Erosion"})
		conns = replaceEdgeEndpointWithInsertion(conns, *incoming, erosionID)
		fixes = append(fixes, fmt.Sprintf("Inserted erosion node %d upstream of Rivers node %d", erosionID, n.ID))
	}

	return nodes, conns, fixes
}

func hasUpstreamErosion(nodes []validate.Node, conns []validate.Connection, target int) bool {
	typeOf := make(map[int]string, len(nodes))
	for _, n := range nodes {
		typeOf[n.ID] = n.Type
	}
	visited := map[int]bool{}
	queue := []int{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, c := range conns {
			if c.ToNode != cur {
				continue
			}
			if typeOf[c.FromNode] == "Erosion" || typeOf[c.FromNode] == "Erosion2" {
				return true
			}
			queue = append(queue, c.FromNode)
		}
	}
	return false
}

func firstIncoming(conns []validate.Connection, target int) *validate.Connection {
	for i := range conns {
		if conns[i].ToNode == target {
			return &conns[i]
		}
	}
	return nil
}

func replaceEdgeEndpointWithInsertion(conns []validate.Connection, edge validate.Connection, insertedID int) []validate.Connection {
	out := make([]validate.Connection, 0, len(conns)+1)
	for _, c := range conns {
		if c == edge {
			out = append(out,
				validate.Connection{FromNode: edge.FromNode, ToNode: insertedID, FromPort: edge.FromPort, ToPort: "In"},
				validate.Connection{FromNode: insertedID, ToNode: edge.ToNode, FromPort: "Out", ToPort: edge.ToPort},
			)
			continue
		}
		out = append(out, c)
	}
	return out
}

// connectOrphans implements aggressive step 6: for each disconnected node,
// consult the pattern table for the highest-probability successor type
// present in the graph, or a predecessor that lists this node as a
// successor, and connect accordingly.
func connectOrphans(nodes []validate.Node, conns []validate.Connection, fixes []string) ([]validate.Connection, []string) {
	connected := map[int]bool{}
	for _, c := range conns {
		connected[c.FromNode] = true
		connected[c.ToNode] = true
	}

	typesPresent := map[string][]int{}
	for _, n := range nodes {
		typesPresent[n.Type] = append(typesPresent[n.Type], n.ID)
	}

	for _, n := range nodes {
		if connected[n.ID] {
			continue
		}
		if schema.IsStandalonePermitted(n.Type) {
			continue
		}

		if succs := pattern.Successors(n.Type); succs != nil {
			connected2 := false
			for _, s := range succs {
				if ids, ok := typesPresent[s.Type]; ok && len(ids) > 0 {
					conns = append(conns, validate.Connection{FromNode: n.ID, ToNode: ids[0], FromPort: "Out", ToPort: "In"})
					fixes = append(fixes, fmt.Sprintf("Connected orphan node %d (%s) to %d (%s) via pattern table", n.ID, n.Type, ids[0], s.Type))
					connected[n.ID] = true
					connected2 = true
					break
				}
			}
			if connected2 {
				continue
			}
		}

		for _, other := range nodes {
			if other.ID == n.ID {
				continue
			}
			for _, s := range pattern.Successors(other.Type) {
				if s.Type == n.Type {
					conns = append(conns, validate.Connection{FromNode: other.ID, ToNode: n.ID, FromPort: "Out", ToPort: "In"})
					fixes = append(fixes, fmt.Sprintf("Connected orphan node %d (%s) from predecessor %d (%s) via pattern table", n.ID, n.Type, other.ID, other.Type))
					connected[n.ID] = true
					break
				}
			}
			if connected[n.ID] {
				break
			}
		}
	}

	return conns, fixes
}

// optimizeOrdering implements aggressive step 7: ensure erosion precedes
// rivers on any path where both exist.
func optimizeOrdering(nodes []validate.Node, conns []validate.Connection, fixes []string) ([]validate.Connection, []string) {
	var erosionIDs, riverIDs []int
	for _, n := range nodes {
		switch n.Type {
		case "Erosion", "Erosion2":
			erosionIDs = append(erosionIDs, n.ID)
		case "Rivers":
			riverIDs = append(riverIDs, n.ID)
		}
	}
	if len(erosionIDs) == 0 || len(riverIDs) == 0 {
		return conns, fixes
	}

	for _, riverID := range riverIDs {
		if hasUpstreamErosion(nodes, conns, riverID) {
			continue
		}
		erosionID := erosionIDs[0]
		conns = append(conns, validate.Connection{FromNode: erosionID, ToNode: riverID, FromPort: "Out", ToPort: "In"})
		fixes = append(fixes, fmt.Sprintf("Added ordering edge from erosion node %d to rivers node %d", erosionID, riverID))
	}

	return conns, fixes
}

func maxNodeID(nodes []validate.Node) int {
	max := 0
	for _, n := range nodes {
		if n.ID > max {
			max = n.ID
		}
	}
	return max
}
