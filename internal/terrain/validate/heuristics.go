package validate

import "fmt"

var erosionTypes = map[string]bool{
	"Erosion":  true,
	"Erosion2": true,
}

var textureTypes = map[string]bool{
	"TextureBase":  true,
	"SatMap":       true,
	"ColorErosion": true,
}

// workflowHeuristics implements validation pass 9 (spec §4.6): soft,
// non-blocking advice about common companion nodes a well-formed graph
// tends to have, grounded on gaea2_connection_validator.py's workflow
// heuristic checks. It never produces errors, only warnings.
func workflowHeuristics(g Graph) []string {
	var warns []string

	hasErosion := false
	hasTexture := false
	hasRivers := false
	for _, n := range g.Nodes {
		switch {
		case erosionTypes[n.Type]:
			hasErosion = true
		case n.Type == "Rivers":
			hasRivers = true
		case textureTypes[n.Type]:
			hasTexture = true
		}
	}

	if hasErosion && !hasTexture {
		warns = append(warns, "Erosion node present without any texture base/colorizer node; terrain may look unweathered")
	}

	if hasRivers && !hasErosion {
		warns = append(warns, "Rivers node present without a preceding erosion pass; river carving typically follows erosion")
	}

	for _, n := range g.Nodes {
		if n.Type == "Export" || n.Type == "FileOutput" {
			continue
		}
		if out := countOutgoing(g, n.ID); out > 4 {
			warns = append(warns, fmt.Sprintf("Node %d (%s) fans out to %d downstream connections, which is unusually high", n.ID, n.Type, out))
		}
	}

	return warns
}

func countOutgoing(g Graph, id int) int {
	n := 0
	for _, c := range g.Connections {
		if c.FromNode == id {
			n++
		}
	}
	return n
}
