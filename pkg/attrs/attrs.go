// Package attrs inspects slog-style key-value attribute lists.
package attrs

// ExtractString returns the string value following the given key in an
// alternating [key1, value1, key2, value2, ...] slice, as passed to slog
// variadic logging calls. A missing key or a non-string value yields "".
func ExtractString(attrList []any, key string) string {
	for i := 0; i < len(attrList)-1; i += 2 {
		k, ok := attrList[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrList[i+1].(string); ok {
			return v
		}
	}
	return ""
}
