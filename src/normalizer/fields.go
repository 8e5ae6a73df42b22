package normalizer

import "github.com/SmooSenseAI/itrade/src/utils"

// Raw is a decoded broker JSON object.
type Raw = map[string]interface{}

func getMap(m Raw, key string) Raw {
	if m == nil {
		return Raw{}
	}

	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}

	return Raw{}
}

// has reports whether key is present with a non-null value.
func has(m Raw, key string) bool {
	v, found := m[key]
	return found && v != nil
}

func getString(m Raw, key string, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}

	return fallback
}

func getStringPtr(m Raw, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}

	return nil
}

func getFloat(m Raw, key string, fallback float64) float64 {
	if f, ok := utils.ToFloat64(m[key]); ok {
		return f
	}

	return fallback
}

func getFloatPtr(m Raw, key string) *float64 {
	if f, ok := utils.ToFloat64(m[key]); ok {
		return &f
	}

	return nil
}

func getIntPtr(m Raw, key string) *int {
	if i, ok := utils.ToInt64(m[key]); ok {
		v := int(i)
		return &v
	}

	return nil
}

func getInt64Ptr(m Raw, key string) *int64 {
	if i, ok := utils.ToInt64(m[key]); ok {
		return &i
	}

	return nil
}

func getBool(m Raw, key string) bool {
	v, _ := m[key].(bool)
	return v
}
