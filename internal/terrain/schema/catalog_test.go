package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKnownType(t *testing.T) {
	def, ok := Lookup("Mountain")
	assert.True(t, ok)
	assert.Equal(t, CategoryGenerator, def.Category)
}

func TestLookupUnknownType(t *testing.T) {
	_, ok := Lookup("InvalidType")
	assert.False(t, ok)
}

func TestPropertyLimitedNodesAreCatalogedWithProperties(t *testing.T) {
	// Several property-limited node schemas define more than 3 properties
	// (so graphs can plausibly violate the cap); the cap itself
	// is enforced by the validator/repair engine, not the schema.
	for typ := range PropertyLimitedNodes {
		def, ok := Lookup(typ)
		assert.Truef(t, ok, "property-limited type %s must be in the catalog", typ)
		assert.NotEmptyf(t, def.Properties, "property-limited type %s should define properties", typ)
	}
}

func TestCompatibilityMatrixHeightfieldAndMask(t *testing.T) {
	assert.True(t, Compatible(PortHeightfield, PortMask))
	assert.True(t, Compatible(PortMask, PortHeightfield))
}

func TestCompatibilityMatrixColorOnlyToColor(t *testing.T) {
	assert.True(t, Compatible(PortColor, PortColor))
	assert.False(t, Compatible(PortColor, PortHeightfield))
	assert.False(t, Compatible(PortHeightfield, PortColor))
}

func TestErosionHasMultiOutputPorts(t *testing.T) {
	def, ok := Lookup("Erosion")
	assert.True(t, ok)
	names := make(map[string]bool)
	for _, p := range def.OutPorts {
		names[p.Name] = true
	}
	assert.True(t, names["Out"])
	assert.True(t, names["Flow"])
	assert.True(t, names["Wear"])
	assert.True(t, names["Deposits"])
}

func TestStandaloneAndFanInAndPortalClassification(t *testing.T) {
	assert.True(t, IsStandalonePermitted("Export"))
	assert.False(t, IsStandalonePermitted("Mountain"))
	assert.True(t, IsFanIn("Combine"))
	assert.True(t, IsPortal("PortalTransmit"))
}
