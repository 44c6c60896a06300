package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrainforge/internal/terrain/validate"
)

func nodeArg(id int, typ string, props map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{"id": id, "type": typ}
	if props != nil {
		m["properties"] = props
	}
	return m
}

func connArg(from, to int, fromPort, toPort string) map[string]interface{} {
	return map[string]interface{}{"from_node": from, "to_node": to, "from_port": fromPort, "to_port": toPort}
}

func TestValidateWorkflowReportsInvalidType(t *testing.T) {
	handler := ValidateWorkflow(validate.New())
	args := map[string]interface{}{
		"nodes": []interface{}{nodeArg(1, "Mountain", nil), nodeArg(2, "NotAType", nil)},
	}

	result, err := handler(context.Background(), args)
	require.NoError(t, err)

	out := result.(map[string]interface{})
	assert.Equal(t, false, out["valid"])
}

func TestRepairWorkflowDeduplicatesAndReportsFixes(t *testing.T) {
	handler := RepairWorkflow(validate.New())
	args := map[string]interface{}{
		"nodes": []interface{}{nodeArg(1, "Mountain", nil), nodeArg(2, "Blur", nil), nodeArg(3, "Export", nil)},
		"connections": []interface{}{
			connArg(1, 2, "Out", "In"),
			connArg(1, 2, "Out", "In"),
			connArg(2, 3, "Out", "In"),
		},
	}

	result, err := handler(context.Background(), args)
	require.NoError(t, err)

	out := result.(map[string]interface{})
	conns := out["connections"].([]map[string]interface{})
	assert.Len(t, conns, 2)
	assert.NotEmpty(t, out["fixes_applied"])
}

func TestCreateFromTemplateAssemblesProjectPayload(t *testing.T) {
	handler := CreateFromTemplate(validate.New())
	args := map[string]interface{}{"template": "basic_terrain"}

	result, err := handler(context.Background(), args)
	require.NoError(t, err)

	out := result.(map[string]interface{})
	nodes := out["nodes"].([]map[string]interface{})
	assert.Len(t, nodes, 5)
}

func TestCreateFromTemplateUnknownNameErrors(t *testing.T) {
	handler := CreateFromTemplate(validate.New())
	_, err := handler(context.Background(), map[string]interface{}{"template": "nope"})
	assert.Error(t, err)
}

func TestAnalyzePatternsReturnsSuggestedWorkflow(t *testing.T) {
	result, err := AnalyzePatterns(context.Background(), map[string]interface{}{
		"intent": "volcano",
		"nodes":  []interface{}{nodeArg(1, "Mountain", nil)},
	})
	require.NoError(t, err)

	out := result.(map[string]interface{})
	assert.NotNil(t, out["suggested_workflow"])
	assert.NotEmpty(t, out["successor_suggestions"])
}

func TestAnalyzePatternsComputesConnectionQualityScore(t *testing.T) {
	result, err := AnalyzePatterns(context.Background(), map[string]interface{}{
		"nodes": []interface{}{
			nodeArg(1, "Mountain", nil),
			nodeArg(2, "Erosion2", nil),
		},
		"connections": []interface{}{connArg(1, 2, "Out", "In")},
	})
	require.NoError(t, err)

	out := result.(map[string]interface{})
	score := out["connection_quality_score"].(float64)
	assert.InDelta(t, 100.0, score, 0.01)
}

func TestAnalyzePatternsPenalizesUnusualAndOrphanedConnections(t *testing.T) {
	result, err := AnalyzePatterns(context.Background(), map[string]interface{}{
		"nodes": []interface{}{
			nodeArg(1, "Mountain", nil),
			nodeArg(2, "Erosion2", nil),
			nodeArg(3, "Height", nil),
			nodeArg(4, "Blur", nil),
		},
		// Mountain->Blur isn't in Mountain's successor table: -10 unusual.
		// Height (node 3) ends up with no connections at all: -10 orphan.
		"connections": []interface{}{
			connArg(1, 2, "Out", "In"),
			connArg(1, 4, "Out", "In"),
		},
	})
	require.NoError(t, err)

	out := result.(map[string]interface{})
	score := out["connection_quality_score"].(float64)
	assert.InDelta(t, 80.0, score, 0.01)
}

func TestCreateProjectAutoRepairPrunesProperties(t *testing.T) {
	handler := CreateProject(validate.New())
	args := map[string]interface{}{
		"nodes": []interface{}{nodeArg(1, "Snow", map[string]interface{}{
			"Duration": 0.5, "SnowLine": 0.7, "Melt": 0.3, "Intensity": 0.8,
			"Coverage": 0.9, "Depth": 0.6, "Wetness": 0.4, "Temperature": -5.0,
		})},
		"auto_repair": true,
	}

	result, err := handler(context.Background(), args)
	require.NoError(t, err)

	out := result.(map[string]interface{})
	nodes := out["nodes"].([]map[string]interface{})
	props := nodes[0]["properties"].(map[string]interface{})
	assert.Len(t, props, 3)
}
