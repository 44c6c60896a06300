package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessorsOrderedHighestFirst(t *testing.T) {
	succ := Successors("Mountain")
	if assert.NotEmpty(t, succ) {
		for i := 1; i < len(succ); i++ {
			assert.GreaterOrEqual(t, succ[i-1].Probability, succ[i].Probability)
		}
	}
}

func TestSuccessorsUnknownTypeReturnsNil(t *testing.T) {
	assert.Nil(t, Successors("NotARealType"))
}

func TestSuggestWorkflowKnownIntent(t *testing.T) {
	tmpl, ok := SuggestWorkflow("volcano")
	assert.True(t, ok)
	assert.Contains(t, tmpl.NodeTypes, "Thermal2")
}

func TestSuggestWorkflowUnknownIntent(t *testing.T) {
	_, ok := SuggestWorkflow("underwater-city")
	assert.False(t, ok)
}

func TestPropertyRecommendationScalesWithPreset(t *testing.T) {
	perf := PropertyRecommendation("Erosion", PresetPerformance)
	detail := PropertyRecommendation("Erosion", PresetDetail)
	assert.Less(t, perf["Duration"].(float64), detail["Duration"].(float64))
}
