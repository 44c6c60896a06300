// Package schema holds the static, read-only graph schema tables (spec
// §4.5): the node catalog, per-node property schemas, port typing and
// compatibility matrix, and the template catalog. Grounded on the original
// Python tools/mcp/gaea2/schema/gaea2_schema.py (NODE_CATEGORIES,
// COMMON_NODE_PROPERTIES) for the catalog proper, and
// tools/mcp/gaea2/errors/gaea2_error_recovery.py's PROPERTY_LIMITED_NODES
// set for the capped-property node types.
//
// Per spec §9 Design Notes ("ship them as compiled-in constants... rather
// than loading from JSON at startup"), every table here is a Go literal
// built once at package init, not read from disk.
package schema

// Category partitions every node type in the catalog (spec §3).
type Category string

const (
	CategoryGenerator Category = "generator"
	CategoryModifier  Category = "modifier"
	CategorySimulator Category = "simulator"
	CategoryAnalyzer  Category = "analyzer"
	CategoryColorizer Category = "colorizer"
	CategoryOutput    Category = "output"
	CategoryUtility   Category = "utility"
)

// PortType is one of the small closed set of port data types (spec §3).
type PortType string

const (
	PortHeightfield PortType = "heightfield"
	PortMask        PortType = "mask"
	PortColor       PortType = "color"
	PortScalar      PortType = "scalar"
	PortFlowData    PortType = "flow_data"
	PortWearData    PortType = "wear_data"
	PortDepositData PortType = "deposit_data"
)

// Port is a named input or output on a node (spec §3 Port descriptor).
type Port struct {
	Name     string
	Type     PortType
	Optional bool
}

// PropertyKind is the type of value a PropertyDef holds (spec §3).
type PropertyKind string

const (
	KindInt     PropertyKind = "int"
	KindFloat   PropertyKind = "float"
	KindBool    PropertyKind = "bool"
	KindString  PropertyKind = "string"
	KindEnum    PropertyKind = "enum"
	KindFloat2  PropertyKind = "float2"
)

// PropertyDef describes one property a node type accepts (spec §3).
type PropertyDef struct {
	Kind        PropertyKind
	Default     interface{}
	Min, Max    float64
	HasRange    bool
	Enum        []string
	Description string
}

// NodeDef is one entry in the node catalog: a type's category, ports, and
// property schema (spec §3 Node catalog).
type NodeDef struct {
	Type       string
	Category   Category
	InPorts    []Port
	OutPorts   []Port
	Properties map[string]PropertyDef
}

// compatibility is the port compatibility matrix (spec §3, §4.5): a port of
// type 'from' may connect to a port of type 'to' iff compatibility[from][to]
// is true. It is closed and total over PortType.
var compatibility = map[PortType]map[PortType]bool{
	PortHeightfield: {PortHeightfield: true, PortMask: true},
	PortMask:        {PortHeightfield: true, PortMask: true},
	PortColor:       {PortColor: true},
	PortScalar:      {PortScalar: true, PortMask: true},
	PortFlowData:    {PortFlowData: true},
	PortWearData:    {PortWearData: true},
	PortDepositData: {PortDepositData: true},
}

// Compatible reports whether a port of type from may connect to a port of
// type to.
func Compatible(from, to PortType) bool {
	row, ok := compatibility[from]
	if !ok {
		return false
	}
	return row[to]
}

// PropertyLimitedNodes is the closed set of node types that must carry at
// most 3 properties (spec §4.5, §8 scenario 2), else the downstream binary
// fails to load the graph.
var PropertyLimitedNodes = map[string]bool{
	"Snow":           true,
	"Beach":          true,
	"Coast":          true,
	"Lakes":          true,
	"Glacier":        true,
	"SeaLevel":       true,
	"LavaFlow":       true,
	"ThermalShatter": true,
	"Ridge":          true,
	"Strata":         true,
	"Voronoi":        true,
	"Terrace":        true,
}

// standalonePermitted lists node types allowed to have no connections
// without triggering the orphan warning (spec §4.6 pass 8).
var standalonePermitted = map[string]bool{
	"Export":   true,
	"Output":   true,
	"FileLoad": true,
}

// IsStandalonePermitted reports whether nodeType may legitimately have no
// connections.
func IsStandalonePermitted(nodeType string) bool {
	return standalonePermitted[nodeType]
}

// fanInTypes receive their secondary input from the node two positions back
// in a template chain, and their primary input from the node immediately
// before them (spec §4.5 template expansion fan-in exception).
var fanInTypes = map[string]bool{
	"Combine": true,
	"Mixer":   true,
}

// IsFanIn reports whether nodeType is a fan-in node for template expansion.
func IsFanIn(nodeType string) bool {
	return fanInTypes[nodeType]
}

// portalTypes break an implicit template chain: a portal transmit node has
// no outgoing chain edge, and a portal receive node has no incoming one
// (spec §4.5).
var portalTypes = map[string]bool{
	"PortalTransmit": true,
	"PortalReceive":  true,
}

// IsPortal reports whether nodeType is a portal transmit/receive node.
func IsPortal(nodeType string) bool {
	return portalTypes[nodeType]
}
