package validate

import "fmt"

// NormalizeConnection accepts any of the three shapes spec §4.6 describes:
//   - flat:       {from_node, to_node, from_port, to_port}
//   - nested:     {from: {node_id, port}, to: {node_id, port}}
//   - downstream: {From, To, FromPort, ToPort}
//
// and returns the canonical Connection. NormalizeConnection is idempotent:
// feeding an already-flat map back in (spec §8 "Connection normalization
// idempotence") yields the same result.
func NormalizeConnection(raw map[string]interface{}) (Connection, error) {
	if from, to, fromPort, toPort, ok := tryFlat(raw); ok {
		return Connection{FromNode: from, ToNode: to, FromPort: fromPort, ToPort: toPort}, nil
	}
	if from, to, fromPort, toPort, ok := tryNested(raw); ok {
		return Connection{FromNode: from, ToNode: to, FromPort: fromPort, ToPort: toPort}, nil
	}
	if from, to, fromPort, toPort, ok := tryDownstream(raw); ok {
		return Connection{FromNode: from, ToNode: to, FromPort: fromPort, ToPort: toPort}, nil
	}
	return Connection{}, fmt.Errorf("validate: unrecognized connection shape: %v", raw)
}

func tryFlat(raw map[string]interface{}) (from, to int, fromPort, toPort string, ok bool) {
	fn, ok1 := toInt(raw["from_node"])
	tn, ok2 := toInt(raw["to_node"])
	fp, ok3 := raw["from_port"].(string)
	tp, ok4 := raw["to_port"].(string)
	if ok1 && ok2 && ok3 && ok4 {
		return fn, tn, fp, tp, true
	}
	return 0, 0, "", "", false
}

func tryNested(raw map[string]interface{}) (from, to int, fromPort, toPort string, ok bool) {
	fromObj, ok1 := raw["from"].(map[string]interface{})
	toObj, ok2 := raw["to"].(map[string]interface{})
	if !ok1 || !ok2 {
		return 0, 0, "", "", false
	}
	fn, ok3 := toInt(fromObj["node_id"])
	tn, ok4 := toInt(toObj["node_id"])
	fp, _ := fromObj["port"].(string)
	tp, _ := toObj["port"].(string)
	if ok3 && ok4 {
		return fn, tn, fp, tp, true
	}
	return 0, 0, "", "", false
}

func tryDownstream(raw map[string]interface{}) (from, to int, fromPort, toPort string, ok bool) {
	fn, ok1 := toInt(raw["From"])
	tn, ok2 := toInt(raw["To"])
	fp, ok3 := raw["FromPort"].(string)
	tp, ok4 := raw["ToPort"].(string)
	if ok1 && ok2 && ok3 && ok4 {
		return fn, tn, fp, tp, true
	}
	return 0, 0, "", "", false
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

// NormalizeConnections normalizes a slice of raw connection maps, skipping
// (and reporting via the returned error slice) any shape NormalizeConnection
// cannot recognize rather than aborting the whole batch.
func NormalizeConnections(raw []map[string]interface{}) ([]Connection, []error) {
	out := make([]Connection, 0, len(raw))
	var errs []error
	for _, r := range raw {
		conn, err := NormalizeConnection(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, conn)
	}
	return out, errs
}
