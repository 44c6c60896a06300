// Package pattern holds the read-only, offline-derived adjacency-probability
// tables (spec §4.8), grounded on the original Python
// tools/mcp/gaea2/utils/gaea2_pattern_knowledge.py. All tables here are
// fully read-only after package init; no synchronization is required to
// read them (spec §5 Shared resources).
package pattern

// Successor is one entry in a node type's successor distribution.
type Successor struct {
	Type        string
	Probability float64
}

// successorDistribution maps a node type to an ordered list of
// (successor-type, probability), highest first: NODE_CONNECTION_FREQUENCY,
// carried over verbatim. Used by the repair engine (spec §4.7 step 6) and
// an "analyze workflow" tool.
var successorDistribution = map[string][]Successor{
	"Mountain": {
		{Type: "Erosion2", Probability: 0.8},
		{Type: "Outcrops", Probability: 0.2},
	},
	"Erosion2": {
		{Type: "Rivers", Probability: 0.26},
		{Type: "TextureBase", Probability: 0.23},
		{Type: "ColorErosion", Probability: 0.19},
		{Type: "Height", Probability: 0.13},
		{Type: "Erosion2", Probability: 0.10},
	},
	"Rivers": {
		{Type: "Adjust", Probability: 0.37},
		{Type: "Height", Probability: 0.33},
		{Type: "TextureBase", Probability: 0.30},
	},
	"TextureBase": {
		{Type: "SatMap", Probability: 0.95},
		{Type: "Combine", Probability: 0.05},
	},
	"SatMap": {
		{Type: "Combine", Probability: 0.64},
		{Type: "ColorErosion", Probability: 0.14},
		{Type: "Mixer", Probability: 0.10},
		{Type: "Weathering", Probability: 0.08},
	},
	"Combine": {
		{Type: "Combine", Probability: 0.29},
		{Type: "Shear", Probability: 0.21},
		{Type: "Weathering", Probability: 0.10},
		{Type: "Erosion2", Probability: 0.04},
		{Type: "SatMap", Probability: 0.04},
	},
	"Crumble": {
		{Type: "Erosion2", Probability: 0.82},
		{Type: "Sandstone", Probability: 0.09},
		{Type: "Terraces", Probability: 0.09},
	},
	"Slump": {
		{Type: "FractalTerraces", Probability: 1.0},
	},
	"Island": {
		{Type: "Adjust", Probability: 0.67},
		{Type: "Blur", Probability: 0.33},
	},
	"Adjust": {
		{Type: "Combine", Probability: 0.56},
		{Type: "Blur", Probability: 0.33},
		{Type: "Tint", Probability: 0.11},
	},
	"Height": {
		{Type: "Combine", Probability: 0.71},
		{Type: "Debris", Probability: 0.14},
		{Type: "Rivers", Probability: 0.07},
		{Type: "Weathering", Probability: 0.07},
	},
}

// Successors returns the successor distribution for nodeType, or nil if
// none is known.
func Successors(nodeType string) []Successor {
	return successorDistribution[nodeType]
}

// usageFrequency is reported next to each successor suggestion by the
// analyze handler (spec §4.8): NODE_USAGE_FREQUENCY, how often each node type appears
// across the 31 analyzed real Gaea2 projects the original table was built
// from, carried over verbatim (top 20).
var usageFrequency = map[string]int{
	"SatMap": 50, "Combine": 48, "Erosion2": 31, "TextureBase": 20,
	"Adjust": 18, "Height": 14, "ColorErosion": 12, "Crumble": 11,
	"Rivers": 10, "FractalTerraces": 10, "Shear": 10, "Weathering": 9,
	"Slump": 9, "Island": 9, "Blur": 9, "Stratify": 8, "Outcrops": 7,
	"Debris": 7, "Terraces": 7, "Sandstone": 6,
}

// UsageFrequency returns how often nodeType appears in the analyzed corpus.
func UsageFrequency(nodeType string) int {
	return usageFrequency[nodeType]
}

// WorkflowTemplate is a named recipe keyed by terrain intent rather than by
// template name (spec §4.8's "suggest workflow" tool, distinct from the
// literal node-recipe catalog in internal/terrain/schema).
type WorkflowTemplate struct {
	Intent      string
	Description string
	NodeTypes   []string
}

// workflowTemplatesByIntent maps a terrain intent keyword to a recommended
// recipe: WORKFLOW_TEMPLATES, keyed the way get_workflow_for_terrain_type
// keys its terrain_workflows lookup, carried over verbatim.
var workflowTemplatesByIntent = map[string]WorkflowTemplate{
	"mountain": {
		Intent:      "mountain",
		Description: "Standard workflow for realistic mountain terrains",
		NodeTypes:   []string{"Mountain", "Erosion2", "Rivers", "Adjust", "TextureBase", "SatMap"},
	},
	"canyon": {
		Intent:      "canyon",
		Description: "Desert canyon with rock stratification",
		NodeTypes:   []string{"Canyon", "Sandstone", "Stratify", "Erosion2", "TextureBase", "SatMap"},
	},
	"volcano": {
		Intent:      "volcano",
		Description: "Volcanic landscape with thermal erosion",
		NodeTypes:   []string{"Volcano", "Combine", "Thermal2", "Erosion2", "Weathering", "SatMap"},
	},
	"terraced": {
		Intent:      "terraced",
		Description: "Complex terraced landscapes with deformation",
		NodeTypes:   []string{"Slump", "FractalTerraces", "Combine", "Shear", "Crumble", "Erosion2"},
	},
	"alien": {
		Intent:      "alien",
		Description: "Alien or lunar surface with craters",
		NodeTypes:   []string{"CraterField", "Outcrops", "Outcrops", "SatMap"},
	},
	"water": {
		Intent:      "water",
		Description: "Water-carved terrain features",
		NodeTypes:   []string{"Mountain", "Erosion2", "Rivers", "Adjust", "Height", "Combine"},
	},
	"stratified": {
		Intent:      "stratified",
		Description: "Layered rock formations",
		NodeTypes:   []string{"Sandstone", "Stratify", "Stratify", "SlopeBlur"},
	},
}

// SuggestWorkflow returns the recommended recipe for a terrain intent
// keyword, or ok=false if intent is not recognized.
func SuggestWorkflow(intent string) (WorkflowTemplate, bool) {
	t, ok := workflowTemplatesByIntent[intent]
	return t, ok
}

// SequenceMatchesAnyTemplate reports whether sequence (a graph's main
// connected node-type chain) is a supersequence of some workflow
// template's NodeTypes, in order but not necessarily contiguous: the
// "follows a common pattern" bonus check in
// get_connection_quality_score/_sequence_matches_template.
func SequenceMatchesAnyTemplate(sequence []string) bool {
	for _, t := range workflowTemplatesByIntent {
		if sequenceMatchesTemplate(sequence, t.NodeTypes) {
			return true
		}
	}
	return false
}

func sequenceMatchesTemplate(sequence, template []string) bool {
	if len(sequence) < len(template) {
		return false
	}
	j := 0
	for _, s := range sequence {
		if j < len(template) && s == template[j] {
			j++
		}
	}
	return j == len(template)
}

// PropertyPreset is one of {performance, balanced, detail} value sets for a
// heavy node's properties (spec §4.8).
type PropertyPreset string

const (
	PresetPerformance PropertyPreset = "performance"
	PresetBalanced    PropertyPreset = "balanced"
	PresetDetail      PropertyPreset = "detail"
)

// propertyRecommendations gives, for heavy simulation node types, default
// property values under each performance preset (spec §4.8, and repair
// step 8 "performance tuning"). Erosion2/Rivers values are
// PROPERTY_RECOMMENDATIONS' "common_patterns"/performance-vs-detail
// adjustments carried over verbatim; Erosion reuses Erosion2's Duration
// thresholds since the two share the same Duration property and the
// original table has no separate Erosion entry.
var propertyRecommendations = map[string]map[PropertyPreset]map[string]interface{}{
	"Erosion": {
		PresetPerformance: {"Duration": 0.04},
		PresetBalanced:    {"Duration": 0.07},
		PresetDetail:      {"Duration": 0.1},
	},
	"Erosion2": {
		PresetPerformance: {"Duration": 0.04},
		PresetBalanced:    {"Duration": 0.07},
		PresetDetail:      {"Duration": 0.1},
	},
	"Rivers": {
		PresetPerformance: {"Headwaters": 50},
		PresetBalanced:    {"Headwaters": 100},
		PresetDetail:      {"Headwaters": 200},
	},
	"Mountain": {
		PresetPerformance: {"Scale": 0.5},
		PresetBalanced:    {"Scale": 1.0},
		PresetDetail:      {"Scale": 2.0},
	},
}

// PropertyRecommendation returns the recommended property values for
// nodeType under preset, or nil if nodeType has no recommendations.
func PropertyRecommendation(nodeType string, preset PropertyPreset) map[string]interface{} {
	byPreset, ok := propertyRecommendations[nodeType]
	if !ok {
		return nil
	}
	return byPreset[preset]
}
