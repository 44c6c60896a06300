package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsInvalidNodeTypes(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: 1, Type: "Mountain"},
		{ID: 2, Type: "InvalidType"},
		{ID: 3, Type: "Island"},
	}}

	res := New().Validate(g)

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "Invalid node type 'InvalidType'")
}

func TestValidatePropertyCountLimitReportsError(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: 1, Type: "Snow", Properties: map[string]interface{}{
			"Duration": 0.5, "SnowLine": 0.7, "Melt": 0.3, "Intensity": 0.8,
			"Coverage": 0.9, "Depth": 0.6, "Wetness": 0.4, "Temperature": -5.0,
		}},
	}}

	res := New().Validate(g)

	assert.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if e == "Node 1 (Snow) has 8 properties, exceeding the limit of 3" {
			found = true
		}
	}
	assert.True(t, found, "expected a property-count-limit error, got %v", res.Errors)
}

func TestValidateOrphanDetection(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: 1, Type: "Mountain"},
			{ID: 2, Type: "Blur"},
			{ID: 3, Type: "Volcano"},
			{ID: 4, Type: "Erosion"},
			{ID: 5, Type: "Export"},
		},
		Connections: []Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 2, ToNode: 4, FromPort: "Out", ToPort: "In"},
			{FromNode: 4, ToNode: 5, FromPort: "Out", ToPort: "In"},
		},
	}

	res := New().Validate(g)

	found := false
	for _, w := range res.Warnings {
		if w == "Node 3 (Volcano) is not connected to the workflow" {
			found = true
		}
	}
	assert.True(t, found, "expected orphan warning for node 3, got %v", res.Warnings)
}

func TestValidateDanglingEdges(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Blur"}},
		Connections: []Connection{
			{FromNode: 2, ToNode: 99, FromPort: "Out", ToPort: "In"},
			{FromNode: 88, ToNode: 1, FromPort: "Out", ToPort: "In"},
		},
	}

	res := New().Validate(g)

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "Connection references nonexistent node 99")
	assert.Contains(t, res.Errors, "Connection references nonexistent node 88")
}

func TestValidateDuplicateEdgesWarns(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1, Type: "Mountain"}, {ID: 2, Type: "Blur"}, {ID: 3, Type: "Export"}},
		Connections: []Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 2, ToNode: 3, FromPort: "Out", ToPort: "In"},
		},
	}

	res := New().Validate(g)

	found := false
	for _, w := range res.Warnings {
		if w == "Duplicate connection 1>2:Out>In appears 2 times" {
			found = true
		}
	}
	assert.True(t, found, "expected duplicate connection warning, got %v", res.Warnings)
}

func TestValidateCycleDetection(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1, Type: "Combine"}, {ID: 2, Type: "Blur"}, {ID: 3, Type: "Export"}},
		Connections: []Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 2, ToNode: 1, FromPort: "Out", ToPort: "In"},
			{FromNode: 2, ToNode: 3, FromPort: "Out", ToPort: "In"},
		},
	}

	res := New().Validate(g)

	require.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if strings.HasPrefix(e, "Circular dependency detected") {
			found = true
		}
	}
	assert.True(t, found, "expected circular dependency error, got %v", res.Errors)
}

func TestValidatorDeterministic(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: 1, Type: "Mountain"},
			{ID: 2, Type: "Erosion", Properties: map[string]interface{}{"Duration": 0.4}},
			{ID: 3, Type: "Export"},
		},
		Connections: []Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Out", ToPort: "In"},
			{FromNode: 2, ToNode: 3, FromPort: "Out", ToPort: "In"},
		},
	}

	v := New()
	first := v.Validate(g)
	second := v.Validate(g)

	assert.ElementsMatch(t, first.Errors, second.Errors)
	assert.ElementsMatch(t, first.Warnings, second.Warnings)
}

func TestValidatorCachesPerNodePropertyCheck(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: 1, Type: "Mountain", Properties: map[string]interface{}{"Seed": 1}},
		{ID: 2, Type: "Mountain", Properties: map[string]interface{}{"Seed": 1}},
	}}

	v := New()
	res := v.Validate(g)

	assert.Equal(t, 1, res.Stats.CacheHits)
	assert.Equal(t, 1, res.Stats.CacheMisses)
}

func TestValidatePropertyKindCoercesIntegralFloat(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: 1, Type: "Strata", Properties: map[string]interface{}{"Layers": 5.0}},
	}}

	res := New().Validate(g)

	for _, e := range res.Errors {
		assert.NotContains(t, e, "Layers")
	}
}

func TestValidatePropertyOutOfRangeWarns(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: 1, Type: "Voronoi", Properties: map[string]interface{}{"Cells": 9000}},
	}}

	res := New().Validate(g)

	found := false
	for _, w := range res.Warnings {
		if strings.HasPrefix(w, "Property 'Cells'") {
			found = true
		}
	}
	assert.True(t, found, "expected out-of-range warning, got %v", res.Warnings)
}

func TestValidatePortIncompatibilityIsWarningByDefault(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1, Type: "Erosion"}, {ID: 2, Type: "SatMap"}},
		Connections: []Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Flow", ToPort: "In"},
		},
	}

	res := New().Validate(g)

	assert.True(t, res.Valid)
	assert.NotEmpty(t, res.Warnings)
}

func TestValidatePortIncompatibilityIsErrorInStrictMode(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1, Type: "Erosion"}, {ID: 2, Type: "SatMap"}},
		Connections: []Connection{
			{FromNode: 1, ToNode: 2, FromPort: "Flow", ToPort: "In"},
		},
	}

	v := New()
	v.StrictMode = true
	res := v.Validate(g)

	assert.False(t, res.Valid)
}
