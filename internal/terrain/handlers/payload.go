// Package handlers implements the terrain-domain tool handlers (spec §4.9):
// thin, deterministic marshaling layers over the validator (§4.6), repair
// engine (§4.7), template catalog and pattern knowledge (§4.5, §4.8).
// Grounded on the original Python tools/mcp/gaea2/handlers/gaea2_handlers.py
// (create/repair/template/validate/analyze tool entry points) and
// gaea2_enhanced.py (project payload assembly).
package handlers

import (
	"fmt"

	"terrainforge/internal/terrain/schema"
	"terrainforge/internal/terrain/validate"
)

// decodeGraph parses the "nodes" and "connections" arguments of a tool
// invocation into the canonical Graph shape (spec §6 Canonical graph-payload
// shape), normalizing whichever connection shape was submitted.
func decodeGraph(args map[string]interface{}) (validate.Graph, error) {
	rawNodes, _ := args["nodes"].([]interface{})
	nodes := make([]validate.Node, 0, len(rawNodes))
	for _, rn := range rawNodes {
		m, ok := rn.(map[string]interface{})
		if !ok {
			return validate.Graph{}, fmt.Errorf("terrain: node entry is not an object: %v", rn)
		}
		n, err := decodeNode(m)
		if err != nil {
			return validate.Graph{}, err
		}
		nodes = append(nodes, n)
	}

	rawConns, _ := args["connections"].([]interface{})
	rawMaps := make([]map[string]interface{}, 0, len(rawConns))
	for _, rc := range rawConns {
		m, ok := rc.(map[string]interface{})
		if !ok {
			return validate.Graph{}, fmt.Errorf("terrain: connection entry is not an object: %v", rc)
		}
		rawMaps = append(rawMaps, m)
	}
	conns, errs := validate.NormalizeConnections(rawMaps)
	if len(errs) > 0 {
		return validate.Graph{}, fmt.Errorf("terrain: %d connection(s) could not be normalized: %v", len(errs), errs[0])
	}

	return validate.Graph{Nodes: nodes, Connections: conns}, nil
}

func decodeNode(m map[string]interface{}) (validate.Node, error) {
	id, ok := toInt(m["id"])
	if !ok {
		return validate.Node{}, fmt.Errorf("terrain: node missing integer id: %v", m)
	}
	n := validate.Node{
		ID:   id,
		Type: stringOr(m["type"], ""),
		Name: stringOr(m["name"], ""),
	}
	if pos, ok := m["position"].(map[string]interface{}); ok {
		n.Position = validate.Position{X: floatOr(pos["x"], 0), Y: floatOr(pos["y"], 0)}
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		n.Properties = props
	} else {
		n.Properties = map[string]interface{}{}
	}
	return n, nil
}

// encodeGraph assembles the downstream project payload shape: non-sequential
// ids, canonical connection shape, port records attached to input ports
// (spec §4.9 Terrain-domain handlers).
func encodeGraph(g validate.Graph) map[string]interface{} {
	nodes := make([]map[string]interface{}, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		entry := map[string]interface{}{
			"id":         n.ID,
			"type":       n.Type,
			"name":       n.Name,
			"position":   map[string]interface{}{"x": n.Position.X, "y": n.Position.Y},
			"properties": n.Properties,
		}
		if def, ok := schema.Lookup(n.Type); ok {
			ports := make([]map[string]interface{}, 0, len(def.InPorts))
			for _, p := range def.InPorts {
				ports = append(ports, map[string]interface{}{"name": p.Name, "type": string(p.Type)})
			}
			entry["input_ports"] = ports
		}
		nodes = append(nodes, entry)
	}

	conns := make([]map[string]interface{}, 0, len(g.Connections))
	for _, c := range g.Connections {
		conns = append(conns, map[string]interface{}{
			"from_node": c.FromNode,
			"to_node":   c.ToNode,
			"from_port": c.FromPort,
			"to_port":   c.ToPort,
		})
	}

	return map[string]interface{}{"nodes": nodes, "connections": conns}
}

func encodeResult(res validate.Result) map[string]interface{} {
	return map[string]interface{}{
		"valid":    res.Valid,
		"errors":   res.Errors,
		"warnings": res.Warnings,
		"stats": map[string]interface{}{
			"cache_hits":   res.Stats.CacheHits,
			"cache_misses": res.Stats.CacheMisses,
		},
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func floatOr(v interface{}, def float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return def
}

func stringOr(v interface{}, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
