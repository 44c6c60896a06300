package schema

// TemplateNode is one entry in a Template's node recipe.
type TemplateNode struct {
	Type       string
	Properties map[string]interface{}
}

// Template is a named ordered node recipe that expands to a small subgraph
// (spec §3, §4.5).
type Template struct {
	Name  string
	Nodes []TemplateNode
}

// Templates is the template catalog (spec §4.5): named ordered node
// recipes such as "basic_terrain", "volcanic_terrain", "river_valley".
var Templates = map[string]Template{
	"basic_terrain": {
		Name: "basic_terrain",
		Nodes: []TemplateNode{
			{Type: "Mountain"},
			{Type: "Erosion", Properties: map[string]interface{}{"Duration": 0.3}},
			{Type: "TextureBase"},
			{Type: "SatMap"},
			{Type: "Export"},
		},
	},
	"volcanic_terrain": {
		Name: "volcanic_terrain",
		Nodes: []TemplateNode{
			{Type: "Volcano"},
			{Type: "LavaFlow", Properties: map[string]interface{}{"Coverage": 0.4}},
			{Type: "Erosion2", Properties: map[string]interface{}{"Duration": 0.2}},
			{Type: "TextureBase"},
			{Type: "Export"},
		},
	},
	"river_valley": {
		Name: "river_valley",
		Nodes: []TemplateNode{
			{Type: "Mountain"},
			{Type: "Erosion", Properties: map[string]interface{}{"Duration": 0.4}},
			{Type: "Rivers"},
			{Type: "Lakes"},
			{Type: "TextureBase"},
			{Type: "Export"},
		},
	},
	"mountain_range": {
		Name: "mountain_range",
		Nodes: []TemplateNode{
			{Type: "Mountain"},
			{Type: "Ridge"},
			{Type: "Snow", Properties: map[string]interface{}{"SnowLine": 0.65}},
			{Type: "Erosion"},
			{Type: "TextureBase"},
			{Type: "Export"},
		},
	},
	"island_chain": {
		Name: "island_chain",
		Nodes: []TemplateNode{
			{Type: "Island"},
			{Type: "Coast"},
			{Type: "Beach"},
			{Type: "SeaLevel"},
			{Type: "TextureBase"},
			{Type: "Export"},
		},
	},
}

// nodeIDPool mimics the ambient format's non-sequential 3-digit node ids
// (spec §4.5): a fixed, deterministic sequence so expansion output is
// reproducible across runs of the same template.
var nodeIDPool = []int{101, 205, 318, 427, 539, 642, 751, 860, 973, 184, 296, 407}

// ExpandedNode and ExpandedConnection are the (nodes, connections) shape a
// Template expands to.
type ExpandedNode struct {
	ID         int
	Type       string
	Name       string
	X, Y       float64
	Properties map[string]interface{}
}

type ExpandedConnection struct {
	FromNode, ToNode         int
	FromPort, ToPort         string
}

// Expand produces (nodes, connections) for tmpl starting at position
// (startX, startY), chaining nodes left-to-right with a default (Out -> In)
// edge, except: portal nodes break the chain, and fan-in nodes receive
// their secondary input from the node before the previous one with their
// primary input from the node immediately before them (spec §4.5).
func Expand(tmpl Template, startX, startY float64) ([]ExpandedNode, []ExpandedConnection) {
	nodes := make([]ExpandedNode, 0, len(tmpl.Nodes))
	const xStep = 200.0

	for i, tn := range tmpl.Nodes {
		id := nodeIDPool[i%len(nodeIDPool)]
		// Guarantee uniqueness even if the recipe is longer than the pool by
		// offsetting repeated cycles; in practice no shipped template is.
		if i >= len(nodeIDPool) {
			id += 1000 * (i / len(nodeIDPool))
		}
		nodes = append(nodes, ExpandedNode{
			ID:         id,
			Type:       tn.Type,
			Name:       tn.Type,
			X:          startX + float64(i)*xStep,
			Y:          startY,
			Properties: tn.Properties,
		})
	}

	var conns []ExpandedConnection
	for i := 1; i < len(nodes); i++ {
		cur := nodes[i]
		prev := nodes[i-1]

		if IsPortal(cur.Type) || IsPortal(prev.Type) {
			continue
		}

		if IsFanIn(cur.Type) && i >= 2 {
			secondary := nodes[i-2]
			conns = append(conns,
				ExpandedConnection{FromNode: prev.ID, ToNode: cur.ID, FromPort: "Out", ToPort: "In"},
				ExpandedConnection{FromNode: secondary.ID, ToNode: cur.ID, FromPort: "Out", ToPort: "In2"},
			)
			continue
		}

		conns = append(conns, ExpandedConnection{FromNode: prev.ID, ToNode: cur.ID, FromPort: "Out", ToPort: "In"})
	}

	return nodes, conns
}
