package validate

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"terrainforge/internal/terrain/schema"
)

// Result is the validator's output (spec §4.6).
type Result struct {
	Valid      bool
	Errors     []string
	Warnings   []string
	FixedNodes []Node
	Stats      Stats
}

// Stats reports cache effectiveness, per spec §4.6 Caching.
type Stats struct {
	CacheHits   int
	CacheMisses int
}

// nodePropertyResult is the memoized per-node property-check outcome.
type nodePropertyResult struct {
	errors   []string
	warnings []string
	fixed    map[string]interface{}
}

// Validator runs the 9 validation passes over a Graph (spec §4.6) and
// memoizes per-node property validation on (type, hash(properties)).
//
// StrictMode escalates port-type incompatibility from a warning to an error
// (spec §9 Open Question: "An implementation may escalate this to an error
// behind a strict-mode flag"). It defaults to false.
type Validator struct {
	StrictMode bool

	mu         sync.Mutex
	cache      map[string]nodePropertyResult
	callHits   int
	callMisses int
}

// New constructs a Validator with an empty cache.
func New() *Validator {
	return &Validator{cache: make(map[string]nodePropertyResult)}
}

// Validate runs all 9 passes over g and returns the accumulated result. The
// validator never short-circuits: every pass runs and contributes to the
// final errors/warnings sets (spec §4.6 tie-breaks).
func (v *Validator) Validate(g Graph) Result {
	v.mu.Lock()
	v.callHits, v.callMisses = 0, 0
	v.mu.Unlock()

	var errs, warns []string

	// Pass 1: structural. Track duplicate ids so later passes can flag
	// edges touching a duplicated id (spec §4.6 tie-break).
	seenIDs := make(map[int]bool)
	duplicateIDs := make(map[int]bool)
	nodeByID := make(map[int]Node)
	for _, n := range g.Nodes {
		if n.Type == "" {
			errs = append(errs, fmt.Sprintf("Node %d missing type", n.ID))
		}
		if seenIDs[n.ID] {
			duplicateIDs[n.ID] = true
			errs = append(errs, fmt.Sprintf("Duplicate node id %d", n.ID))
		}
		seenIDs[n.ID] = true
		nodeByID[n.ID] = n
	}

	// Pass 2: type vocabulary.
	for _, n := range g.Nodes {
		if _, ok := schema.Lookup(n.Type); !ok {
			errs = append(errs, fmt.Sprintf("Invalid node type '%s'", n.Type))
		}
	}

	// Passes 3 & 4: property check + property-count limit, memoized per node.
	fixedNodes := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		def, ok := schema.Lookup(n.Type)
		if !ok {
			fixedNodes = append(fixedNodes, n)
			continue
		}
		res := v.validateNodeProperties(n.Type, def, n.Properties)
		errs = append(errs, res.errors...)
		warns = append(warns, res.warnings...)

		if schema.PropertyLimitedNodes[n.Type] && len(n.Properties) > 3 {
			errs = append(errs, fmt.Sprintf("Node %d (%s) has %d properties, exceeding the limit of 3", n.ID, n.Type, len(n.Properties)))
		}

		fixed := n
		fixed.Properties = res.fixed
		fixedNodes = append(fixedNodes, fixed)
	}

	// Pass 5: port compatibility. Pass 6: duplicate edges.
	seenEdges := make(map[string]int)
	for _, c := range g.Connections {
		if duplicateIDs[c.FromNode] || duplicateIDs[c.ToNode] {
			// An edge touching a duplicated id (after the first) is
			// invalidated for compatibility purposes but still counted for
			// structural reporting (spec §4.6 tie-break).
			continue
		}

		fromNode, fromOK := nodeByID[c.FromNode]
		toNode, toOK := nodeByID[c.ToNode]
		if !fromOK {
			errs = append(errs, fmt.Sprintf("Connection references nonexistent node %d", c.FromNode))
		}
		if !toOK {
			errs = append(errs, fmt.Sprintf("Connection references nonexistent node %d", c.ToNode))
		}
		if fromOK && toOK {
			v.checkPortCompatibility(fromNode, toNode, c, &errs, &warns)
		}

		key := fmt.Sprintf("%d>%d:%s>%s", c.FromNode, c.ToNode, c.FromPort, c.ToPort)
		seenEdges[key]++
	}
	for key, count := range seenEdges {
		if count > 1 {
			warns = append(warns, fmt.Sprintf("Duplicate connection %s appears %d times", key, count))
		}
	}

	// Pass 7: cycles.
	if cycle := detectCycle(g); cycle != nil {
		errs = append(errs, fmt.Sprintf("Circular dependency detected involving nodes %v", cycle))
	}

	// Pass 8: orphans.
	connected := make(map[int]bool)
	for _, c := range g.Connections {
		connected[c.FromNode] = true
		connected[c.ToNode] = true
	}
	for _, n := range g.Nodes {
		if connected[n.ID] {
			continue
		}
		if schema.IsStandalonePermitted(n.Type) {
			continue
		}
		warns = append(warns, fmt.Sprintf("Node %d (%s) is not connected to the workflow", n.ID, n.Type))
	}

	// Pass 9: workflow heuristics.
	warns = append(warns, workflowHeuristics(g)...)

	sort.Strings(errs)
	sort.Strings(warns)

	return Result{
		Valid:      len(errs) == 0,
		Errors:     errs,
		Warnings:   warns,
		FixedNodes: fixedNodes,
		Stats:      v.stats(),
	}
}

func (v *Validator) checkPortCompatibility(from, to Node, c Connection, errs, warns *[]string) {
	fromDef, _ := schema.Lookup(from.Type)
	toDef, _ := schema.Lookup(to.Type)

	fromPort, ok1 := findPort(fromDef.OutPorts, c.FromPort)
	toPort, ok2 := findPort(toDef.InPorts, c.ToPort)
	if !ok1 {
		*errs = append(*errs, fmt.Sprintf("Unknown output port '%s' on node %d (%s)", c.FromPort, from.ID, from.Type))
		return
	}
	if !ok2 {
		*errs = append(*errs, fmt.Sprintf("Unknown input port '%s' on node %d (%s)", c.ToPort, to.ID, to.Type))
		return
	}

	if !schema.Compatible(fromPort.Type, toPort.Type) {
		msg := fmt.Sprintf("Incompatible port types on connection %d->%d: %s -> %s", from.ID, to.ID, fromPort.Type, toPort.Type)
		if v.StrictMode {
			*errs = append(*errs, msg)
		} else {
			*warns = append(*warns, msg)
		}
	}
}

func findPort(ports []schema.Port, name string) (schema.Port, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return schema.Port{}, false
}

// cacheKey computes (type, hash(properties)) for the memoization cache.
// encoding/json marshals map keys in sorted order, so the byte sequence
// (and therefore the hash) is stable regardless of map iteration order.
func cacheKey(nodeType string, properties map[string]interface{}) string {
	data, _ := json.Marshal(properties)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", nodeType, sum)
}

func (v *Validator) validateNodeProperties(nodeType string, def schema.NodeDef, properties map[string]interface{}) nodePropertyResult {
	key := cacheKey(nodeType, properties)

	v.mu.Lock()
	if cached, ok := v.cache[key]; ok {
		v.callHits++
		v.mu.Unlock()
		return cached
	}
	v.mu.Unlock()

	result := validateProperties(def, properties)

	v.mu.Lock()
	v.cache[key] = result
	v.callMisses++
	v.mu.Unlock()

	return result
}

func (v *Validator) stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Stats{CacheHits: v.callHits, CacheMisses: v.callMisses}
}
