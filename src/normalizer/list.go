package normalizer

// EnsureList flattens the broker's habit of returning a bare object where a
// list of one is expected. nil yields an empty list; scalars are wrapped.
func EnsureList(v interface{}) []interface{} {
	switch val := v.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return val
	case []map[string]interface{}:
		out := make([]interface{}, 0, len(val))
		for _, m := range val {
			out = append(out, m)
		}
		return out
	default:
		return []interface{}{val}
	}
}

// ensureObjects is EnsureList restricted to the JSON objects in v.
func ensureObjects(v interface{}) []Raw {
	items := EnsureList(v)
	out := make([]Raw, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}

	return out
}
