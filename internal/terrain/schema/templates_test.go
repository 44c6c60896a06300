package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandBasicTerrainChainsNodes(t *testing.T) {
	nodes, conns := Expand(Templates["basic_terrain"], 0, 0)
	require.Len(t, nodes, 5)
	require.Len(t, conns, 4)

	for _, c := range conns {
		assert.Equal(t, "Out", c.FromPort)
		assert.Equal(t, "In", c.ToPort)
	}
}

func TestExpandNodeIDsAreNonSequential(t *testing.T) {
	nodes, _ := Expand(Templates["basic_terrain"], 0, 0)
	for _, n := range nodes {
		assert.NotEqual(t, 0, n.ID)
	}
	// Ids are drawn from a fixed non-sequential pool, not 1,2,3,...
	assert.NotEqual(t, 1, nodes[0].ID)
}

func TestExpandIsDeterministic(t *testing.T) {
	n1, c1 := Expand(Templates["river_valley"], 10, 20)
	n2, c2 := Expand(Templates["river_valley"], 10, 20)
	assert.Equal(t, n1, n2)
	assert.Equal(t, c1, c2)
}

func TestExpandAllNodeTypesExistInCatalog(t *testing.T) {
	for name, tmpl := range Templates {
		for _, tn := range tmpl.Nodes {
			_, ok := Lookup(tn.Type)
			assert.Truef(t, ok, "template %s references unknown type %s", name, tn.Type)
		}
	}
}
