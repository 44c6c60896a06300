package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"terrainforge/internal/terrain/validate"
)

func TestRepairPrunesPropertyLimitedNode(t *testing.T) {
	g := validate.Graph{Nodes: []validate.Node{
		{ID: 1, Type: "Snow", Properties: map[string]interface{}{
			"Duration": 0.5, "SnowLine": 0.7, "Melt": 0.3, "Intensity": 0.8,
			"Coverage": 0.9, "Depth": 0.6, "Wetness": 0.4, "Temperature": -5.0,
		}},
	}}

	res := Repair(g, Conservative)

	assert.Len(t, res.Graph.Nodes[0].Properties, 3)
	assert.Contains(t, res.Graph.Nodes[0].Properties, "Duration")
	assert.Contains(t, res.Graph.Nodes[0].Properties, "SnowLine")
	assert.Contains(t, res.Graph.Nodes[0].Properties, "Melt")

	found := false
	for _, f := range res.FixesApplied {
		if f == "Pruned node 1 (Snow) to 3 essential properties" {
			found = true
		}
	}
	assert.True(t, found, "expected a pruning fix entry, got %v", res.FixesApplied)
}

func TestRepairDeduplicatesConnections(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Blur"}, {ID: 3, Type: "Export"}},
		Connections: []validate.Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 2, ToNode: 3, FromPort: "Out", ToPort: "In"},
		},
	}

	res := Repair(g, Conservative)

	assert.Len(t, res.Graph.Connections, 2)
	found := false
	for _, f := range res.FixesApplied {
		if f == "Deduplicated 1 connection(s)" {
			found = true
		}
	}
	assert.True(t, found, "expected a deduplication fix entry, got %v", res.FixesApplied)
}

func TestRepairRemovesDanglingConnections(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Blur"}},
		Connections: []validate.Connection{
			{FromNode: 2, ToNode: 99, FromPort: "Out", ToPort: "In"},
			{FromNode: 88, ToNode: 1, FromPort: "Out", ToPort: "In"},
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
		},
	}

	res := Repair(g, Conservative)

	assert.Len(t, res.Graph.Connections, 1)
}

func TestRepairConservativeNeverAddsOrRemovesNodes(t *testing.T) {
	g := validate.Graph{Nodes: []validate.Node{
		{ID: 1, Type: "Mountain"},
		{ID: 2, Type: "Rivers"},
	}}

	res := Repair(g, Conservative)

	assert.Len(t, res.Graph.Nodes, len(g.Nodes))
}

func TestRepairAggressiveAddsTextureChainWhenMissing(t *testing.T) {
	g := validate.Graph{Nodes: []validate.Node{{ID: 1, Type: "Mountain"}}}

	res := Repair(g, Aggressive)

	hasTexture, hasSat := false, false
	for _, n := range res.Graph.Nodes {
		if n.Type == "TextureBase" {
			hasTexture = true
		}
		if n.Type == "SatMap" {
			hasSat = true
		}
	}
	assert.True(t, hasTexture)
	assert.True(t, hasSat)
}

func TestRepairAggressiveInsertsErosionBeforeRivers(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Rivers"}},
		Connections: []validate.Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
		},
	}

	res := Repair(g, Aggressive)

	hasErosion := false
	for _, n := range res.Graph.Nodes {
		if n.Type == "Erosion" {
			hasErosion = true
		}
	}
	assert.True(t, hasErosion)
}

func TestRepairNeverInsertsExportNode(t *testing.T) {
	g := validate.Graph{Nodes: []validate.Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Erosion"}}}

	res := Repair(g, Aggressive)

	for _, n := range res.Graph.Nodes {
		assert.NotEqual(t, "Export", n.Type)
	}
}

func TestRepairConnectsOrphanViaPatternTable(t *testing.T) {
	g := validate.Graph{Nodes: []validate.Node{
		{ID: 1, Type: "Mountain"},
		{ID: 2, Type: "Erosion2"},
	}}

	res := Repair(g, Aggressive)

	connected := map[int]bool{}
	for _, c := range res.Graph.Connections {
		connected[c.FromNode] = true
		connected[c.ToNode] = true
	}
	assert.True(t, connected[1])
	assert.True(t, connected[2])
}

func TestRepairIsIdempotentOnAlreadyCleanGraph(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Erosion"}},
		Connections: []validate.Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
		},
	}

	first := Repair(g, Conservative)
	second := Repair(first.Graph, Conservative)

	assert.Equal(t, first.Graph, second.Graph)
	assert.Empty(t, second.FixesApplied)
}
