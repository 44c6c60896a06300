package schema

// commonProperties is the shared property pool many node schemas reuse by
// composition rather than duplication (spec §4.5).
var commonProperties = map[string]PropertyDef{
	"Seed":   {Kind: KindInt, Default: 0, HasRange: true, Min: 0, Max: 999999, Description: "random seed"},
	"Scale":  {Kind: KindFloat, Default: 1.0, HasRange: true, Min: 0.01, Max: 10, Description: "feature scale"},
	"Height": {Kind: KindFloat, Default: 1.0, HasRange: true, Min: 0, Max: 1, Description: "vertical displacement"},
	"X":      {Kind: KindFloat, Default: 0.0, Description: "x offset"},
	"Y":      {Kind: KindFloat, Default: 0.0, Description: "y offset"},
	"Width":  {Kind: KindFloat, Default: 1.0, HasRange: true, Min: 0, Max: 1, Description: "feature width"},
}

func withCommon(names []string, overrides map[string]PropertyDef) map[string]PropertyDef {
	props := make(map[string]PropertyDef, len(names)+len(overrides))
	for _, n := range names {
		if def, ok := commonProperties[n]; ok {
			props[n] = def
		}
	}
	for k, v := range overrides {
		props[k] = v
	}
	return props
}

func generatorPorts() ([]Port, []Port) {
	return nil, []Port{{Name: "Out", Type: PortHeightfield}}
}

func modifierPorts() ([]Port, []Port) {
	return []Port{{Name: "In", Type: PortHeightfield}}, []Port{{Name: "Out", Type: PortHeightfield}}
}

func colorizerPorts() ([]Port, []Port) {
	return []Port{{Name: "In", Type: PortHeightfield}}, []Port{{Name: "Out", Type: PortColor}}
}

func analyzerPorts() ([]Port, []Port) {
	return []Port{{Name: "In", Type: PortHeightfield}}, []Port{{Name: "Out", Type: PortScalar}}
}

func outputPorts() ([]Port, []Port) {
	return []Port{{Name: "In", Type: PortHeightfield}}, nil
}

// Catalog is the full node catalog, keyed by type name (spec §4.5). The
// type lists below reproduce original_source's gaea2_schema.py
// NODE_CATEGORIES (primitive/terrain/modify/surface/simulate/derive/
// colorize/output/utility, 187 types total), folded into this repo's
// narrower 7-way Category (a Python category is a superset label; the Go
// Category only needs to capture port shape). Property-limited types
// (schema below) and the three multi-output erosion-class simulators are
// carved out of their Python category's generic loop and registered with
// dedicated schemas.
var Catalog = buildCatalog()

func buildCatalog() map[string]NodeDef {
	c := make(map[string]NodeDef)

	reg := func(typ string, cat Category, in, out []Port, props map[string]PropertyDef) {
		c[typ] = NodeDef{Type: typ, Category: cat, InPorts: in, OutPorts: out, Properties: props}
	}

	// Generators: {out: heightfield} only. NODE_CATEGORIES["terrain"] (minus
	// Ridge, a property-limited type below) and NODE_CATEGORIES["primitive"]
	// (minus Voronoi, likewise property-limited).
	for _, typ := range []string{
		"Canyon", "Crater", "CraterField", "DuneSea", "Island", "Mountain",
		"MountainRange", "MountainSide", "Plates", "Rugged", "Slump", "Uplift", "Volcano",
		"Cellular", "Cellular3D", "Cone", "Constant", "Cracks", "CutNoise",
		"DotNoise", "Draw", "DriftNoise", "File", "Gabor", "Hemisphere",
		"LinearGradient", "LineNoise", "MultiFractal", "Noise", "Object",
		"Pattern", "Perlin", "RadialGradient", "Shape", "TileInput", "WaveShine",
	} {
		in, out := generatorPorts()
		props := withCommon([]string{"Seed", "Scale", "Height"}, nil)
		reg(typ, CategoryGenerator, in, out, props)
	}

	// Modifiers: {in: heightfield, out: heightfield}. NODE_CATEGORIES["modify"]
	// and NODE_CATEGORIES["surface"] (Combine/Mixer are utility-category in
	// the original and registered there instead, despite the similar shape).
	for _, typ := range []string{
		"Adjust", "Aperture", "Autolevel", "BlobRemover", "Blur", "Clamp",
		"Clip", "Curve", "Deflate", "Denoise", "Dilate", "DirectionalWarp",
		"Distance", "Equalize", "Extend", "Filter", "Flip", "Fold", "GraphicEQ",
		"Heal", "Match", "Median", "Meshify", "Origami", "Pixelate", "Recurve",
		"Shaper", "Sharpen", "SlopeBlur", "SlopeWarp", "SoftClip", "Swirl",
		"ThermalShaper", "Threshold", "Transform", "Transform3D", "Transpose",
		"TriplanarDisplacement", "VariableBlur", "Warp", "Whorl",
		"Bomber", "Bulbous", "Contours", "Craggy", "Distress", "FractalTerraces",
		"Grid", "GroundTexture", "Outcrops", "Pockmarks", "RockNoise", "Rockscape",
		"Roughen", "Sand", "Sandstone", "Shatter", "Shear", "Steps", "Stones",
		"Stratify", "Terraces",
	} {
		in, out := modifierPorts()
		props := withCommon([]string{"Scale"}, nil)
		reg(typ, CategoryModifier, in, out, props)
	}

	// Simulators: most are single heightfield in/out; erosion-class nodes
	// are explicit multi-output overrides (spec §4.5). NODE_CATEGORIES
	// ["simulate"] minus Snow/Glacier (property-limited below) and minus
	// Erosion/Erosion2/Rivers (the multi-output override below).
	for _, typ := range []string{
		"Anastomosis", "Crumble", "Debris", "Dusting", "EasyErosion", "Hillify",
		"HydroFix", "IceFloe", "Lake", "Lichtenberg", "Scree", "Sea", "Sediments",
		"Shrubs", "Snowfield", "Thermal", "Thermal2", "Trees", "Wizard", "Wizard2",
	} {
		in, out := modifierPorts()
		props := withCommon([]string{"Scale"}, nil)
		reg(typ, CategorySimulator, in, out, props)
	}
	for _, typ := range []string{"Erosion", "Erosion2", "Rivers"} {
		in := []Port{{Name: "In", Type: PortHeightfield}}
		out := []Port{
			{Name: "Out", Type: PortHeightfield},
			{Name: "Flow", Type: PortFlowData},
			{Name: "Wear", Type: PortWearData},
			{Name: "Deposits", Type: PortDepositData},
		}
		props := withCommon([]string{"Seed", "Scale"}, map[string]PropertyDef{
			"Duration": {Kind: KindFloat, Default: 0.2, HasRange: true, Min: 0, Max: 1},
		})
		reg(typ, CategorySimulator, in, out, props)
	}

	// Analyzers: {in: heightfield, out: scalar}. NODE_CATEGORIES["derive"]
	// minus TextureBase, which is registered as a colorizer below since
	// downstream nodes (SatMap) treat its output as a color map, not a
	// scalar (spec §4.8 successor table).
	for _, typ := range []string{
		"Angle", "Curvature", "FlowMap", "FlowMapClassic", "Height", "Normals",
		"Occlusion", "Peaks", "RockMap", "Slope", "Soil", "Texturizer",
	} {
		in, out := analyzerPorts()
		reg(typ, CategoryAnalyzer, in, out, withCommon(nil, nil))
	}

	// Colorizers: {in: heightfield, out: color}. NODE_CATEGORIES["colorize"]
	// plus TextureBase (see analyzer note above).
	for _, typ := range []string{
		"CLUTer", "ColorErosion", "Gamma", "HSL", "RGBMerge", "RGBSplit",
		"SatMap", "Splat", "SuperColor", "Synth", "Tint", "WaterColor",
		"Weathering", "TextureBase",
	} {
		in, out := colorizerPorts()
		reg(typ, CategoryColorizer, in, out, withCommon(nil, nil))
	}

	// Output: {in: heightfield}, no out port. NODE_CATEGORIES["output"] plus
	// FileOutput, a save-to-disk sibling of Export that this repo's
	// orchestrator distinguishes from the project's own Export node (spec
	// §4.6 pass 8 standalone-permitted set).
	for _, typ := range []string{
		"AO", "Cartography", "Export", "Halftone", "LightX", "Mesher",
		"PointCloud", "Shade", "Sunlight", "TextureBaker", "Unity", "Unreal", "VFX",
		"FileOutput",
	} {
		in, out := outputPorts()
		reg(typ, CategoryOutput, in, out, withCommon(nil, nil))
	}

	// Utility. NODE_CATEGORIES["utility"], with Combine/Mixer kept as
	// heightfield-in/heightfield-out fan-in nodes (spec §4.5 template
	// expansion), Chokepoint kept as an analyzer-shaped bottleneck detector,
	// and Portal/PortalReceive/PortalTransmit/FileLoad given their
	// pass-through/load-only shapes.
	for _, typ := range []string{
		"Accumulator", "Compare", "Construction", "DataExtractor", "Edge",
		"Gate", "Layers", "LoopBegin", "LoopEnd", "Mask", "Math", "Repeat",
		"Reseed", "Route", "Seamless", "Switch", "Var",
	} {
		in, out := modifierPorts()
		reg(typ, CategoryUtility, in, out, withCommon(nil, nil))
	}
	for _, typ := range []string{"Combine", "Mixer"} {
		in, out := modifierPorts()
		reg(typ, CategoryUtility, in, out, withCommon(nil, nil))
	}
	{
		in, out := analyzerPorts()
		reg("Chokepoint", CategoryUtility, in, out, withCommon(nil, nil))
	}
	{
		in, out := modifierPorts()
		reg("Portal", CategoryUtility, in, out, withCommon(nil, nil))
	}
	reg("FileLoad", CategoryUtility, nil, []Port{{Name: "Out", Type: PortHeightfield}}, withCommon(nil, nil))
	reg("PortalTransmit", CategoryUtility,
		[]Port{{Name: "In", Type: PortHeightfield}}, nil, withCommon(nil, nil))
	reg("PortalReceive", CategoryUtility,
		nil, []Port{{Name: "Out", Type: PortHeightfield}}, withCommon(nil, nil))

	// Property-limited nodes (spec §4.5): a dedicated Gaea2 download set
	// that must stay at or under a 3-property cap, unrelated to the
	// gaea2_schema.py category lists above. Property names are a superset
	// of the essential subset in original_source's gaea2_error_recovery.py
	// essential_props_map (repair/repair.go keeps that subset verbatim; the
	// extras here let a submitted graph plausibly exceed the 3-property cap).
	propertyLimitedSchemas := map[string]map[string]PropertyDef{
		"Snow": {
			"Duration":    {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"SnowLine":    {Kind: KindFloat, Default: 0.7, HasRange: true, Min: 0, Max: 1},
			"Melt":        {Kind: KindFloat, Default: 0.3, HasRange: true, Min: 0, Max: 1},
			"Intensity":   {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Coverage":    {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Depth":       {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Wetness":     {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Temperature": {Kind: KindFloat, Default: -5},
		},
		"Beach": {
			"Width":     {Kind: KindFloat, Default: 0.1, HasRange: true, Min: 0, Max: 1},
			"Slope":     {Kind: KindFloat, Default: 0.3, HasRange: true, Min: 0, Max: 1},
			"Elevation": {Kind: KindFloat, Default: 0.0, HasRange: true, Min: -1, Max: 1},
			"Color":     {Kind: KindEnum, Default: "tan", Enum: []string{"tan", "white", "black"}},
		},
		"Coast": {
			"Width":     {Kind: KindFloat, Default: 0.2, HasRange: true, Min: 0, Max: 1},
			"Height":    {Kind: KindFloat, Default: 0.3, HasRange: true, Min: 0, Max: 1},
			"Slope":     {Kind: KindFloat, Default: 0.2, HasRange: true, Min: 0, Max: 1},
			"Variation": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
		},
		"Lakes": {
			"Count":     {Kind: KindInt, Default: 3, HasRange: true, Min: 0, Max: 50},
			"Size":      {Kind: KindFloat, Default: 0.3, HasRange: true, Min: 0, Max: 1},
			"Smoothing": {Kind: KindFloat, Default: 0.2, HasRange: true, Min: 0, Max: 1},
			"Depth":     {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
		},
		"Glacier": {
			"Flow":  {Kind: KindBool, Default: true},
			"Depth": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Melt":  {Kind: KindFloat, Default: 0.2, HasRange: true, Min: 0, Max: 1},
			"Scale": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
		},
		"SeaLevel": {
			"Level":     {Kind: KindFloat, Default: 0.0, HasRange: true, Min: -1, Max: 1},
			"Swell":     {Kind: KindFloat, Default: 0.1, HasRange: true, Min: 0, Max: 1},
			"Variation": {Kind: KindFloat, Default: 0.0, HasRange: true, Min: 0, Max: 1},
		},
		"LavaFlow": {
			"Temperature": {Kind: KindFloat, Default: 1200},
			"Viscosity":   {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Coverage":    {Kind: KindFloat, Default: 0.3, HasRange: true, Min: 0, Max: 1},
		},
		"ThermalShatter": {
			"Intensity": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Scale":     {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Duration":  {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
		},
		"Ridge": {
			"Scale":      {Kind: KindFloat, Default: 1.0, HasRange: true, Min: 0.01, Max: 10},
			"Complexity": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Height":     {Kind: KindFloat, Default: 1.0, HasRange: true, Min: 0, Max: 1},
		},
		"Strata": {
			"Layers":     {Kind: KindInt, Default: 5, HasRange: true, Min: 1, Max: 50},
			"Scale":      {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Distortion": {Kind: KindFloat, Default: 0.0, HasRange: true, Min: -1, Max: 1},
		},
		"Voronoi": {
			"Scale":      {Kind: KindFloat, Default: 1.0, HasRange: true, Min: 0.01, Max: 10},
			"Cells":      {Kind: KindInt, Default: 20, HasRange: true, Min: 1, Max: 500},
			"Randomness": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Seed":       {Kind: KindInt, Default: 0, HasRange: true, Min: 0, Max: 999999},
		},
		"Terrace": {
			"Steps":      {Kind: KindInt, Default: 5, HasRange: true, Min: 1, Max: 50},
			"Sharpness":  {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
			"Uniformity": {Kind: KindFloat, Default: 0.5, HasRange: true, Min: 0, Max: 1},
		},
	}
	for typ, props := range propertyLimitedSchemas {
		in, out := modifierPorts()
		reg(typ, CategoryModifier, in, out, props)
	}

	return c
}

// Lookup returns a node's catalog definition and whether it exists.
func Lookup(nodeType string) (NodeDef, bool) {
	def, ok := Catalog[nodeType]
	return def, ok
}
