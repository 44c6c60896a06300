package validate

import (
	"fmt"
	"sort"

	"terrainforge/internal/terrain/schema"
)

// CoercedProperties runs the same kind-coercion and range-clamp logic as the
// validator's property check (spec §4.6 pass 3) and returns just the fixed
// property map, discarding errors/warnings. The repair engine uses this to
// obtain a clamped/typed property map without depending on validator
// internals (spec §4.7 step 3).
func CoercedProperties(def schema.NodeDef, properties map[string]interface{}) map[string]interface{} {
	return validateProperties(def, properties).fixed
}

// validateProperties implements validation pass 3 (spec §4.6): kind
// coercion, range/enum checking, and unknown-property warnings. It never
// mutates its input; it returns a fixed copy with coercions/clamps applied,
// matching the original gaea2_validation.py semantics (ints may arrive as
// integral floats and are coerced; missing properties with defaults are
// left for the repair pass, not defaulted here).
func validateProperties(def schema.NodeDef, properties map[string]interface{}) nodePropertyResult {
	var errs, warns []string
	fixed := make(map[string]interface{}, len(properties))

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		value := properties[name]
		propDef, known := def.Properties[name]
		if !known {
			warns = append(warns, fmt.Sprintf("Unknown property '%s' for node type '%s'", name, def.Type))
			fixed[name] = value
			continue
		}

		coerced, err := coerceKind(propDef, value)
		if err != nil {
			// Tie-break (spec §4.6): kind mismatch is reported before range.
			errs = append(errs, fmt.Sprintf("Property '%s' on '%s': %v", name, def.Type, err))
			fixed[name] = value
			continue
		}

		if propDef.HasRange {
			if f, ok := asFloat(coerced); ok {
				if f < propDef.Min || f > propDef.Max {
					warns = append(warns, fmt.Sprintf("Property '%s' on '%s' value %v out of range [%v,%v], clamp available", name, def.Type, f, propDef.Min, propDef.Max))
					coerced = clamp(f, propDef.Min, propDef.Max, propDef.Kind)
				}
			}
		}

		if propDef.Kind == schema.KindEnum && len(propDef.Enum) > 0 {
			s, _ := coerced.(string)
			if !contains(propDef.Enum, s) {
				errs = append(errs, fmt.Sprintf("Property '%s' on '%s' value %q not in allowed set %v", name, def.Type, s, propDef.Enum))
			}
		}

		fixed[name] = coerced
	}

	return nodePropertyResult{errors: errs, warnings: warns, fixed: fixed}
}

func coerceKind(def schema.PropertyDef, value interface{}) (interface{}, error) {
	switch def.Kind {
	case schema.KindInt:
		switch n := value.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int64(n)) {
				return int(n), nil
			}
			return nil, fmt.Errorf("expected int, got non-integral float %v", n)
		default:
			return nil, fmt.Errorf("expected int, got %T", value)
		}
	case schema.KindFloat:
		if f, ok := asFloat(value); ok {
			return f, nil
		}
		return nil, fmt.Errorf("expected float, got %T", value)
	case schema.KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("expected bool, got %T", value)
	case schema.KindString, schema.KindEnum:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", value)
	case schema.KindFloat2:
		switch v := value.(type) {
		case []interface{}:
			if len(v) == 2 {
				return v, nil
			}
			return nil, fmt.Errorf("expected 2-element float pair, got length %d", len(v))
		default:
			return nil, fmt.Errorf("expected 2-element float pair, got %T", value)
		}
	default:
		return value, nil
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func clamp(f, min, max float64, kind schema.PropertyKind) interface{} {
	if f < min {
		f = min
	}
	if f > max {
		f = max
	}
	if kind == schema.KindInt {
		return int(f)
	}
	return f
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
