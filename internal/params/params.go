// Package params provides coercion helpers for the loosely typed parameter
// maps that flow from configuration into module behaviors. Numbers decoded
// from configuration always arrive as float64, but cue parameters written
// by hand in tests may use Go integer literals, so every numeric accessor
// accepts both.
package params

// Float returns the numeric value under key, or def when the key is absent.
// The second result reports whether the value was present and numeric.
func Float(m map[string]any, key string, def float64) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return def, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return def, false
}

// Int returns the integer value under key, or def when absent.
func Int(m map[string]any, key string, def int) (int, bool) {
	f, ok := Float(m, key, float64(def))
	return int(f), ok
}

// String returns the string value under key, or def when absent or not a
// string.
func String(m map[string]any, key string, def string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return def, false
	}
	s, ok := v.(string)
	if !ok {
		return def, false
	}
	return s, true
}

// FloatPairs interprets a configuration list as breakpoints: a list of
// two-element [time, value] lists. The second result reports whether the
// value had that shape.
func FloatPairs(v any) ([][2]float64, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	pairs := make([][2]float64, 0, len(list))
	for _, item := range list {
		point, ok := item.([]any)
		if !ok || len(point) != 2 {
			return nil, false
		}
		t, okT := asFloat(point[0])
		val, okV := asFloat(point[1])
		if !okT || !okV {
			return nil, false
		}
		pairs = append(pairs, [2]float64{t, val})
	}
	return pairs, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
