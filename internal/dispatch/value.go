package dispatch

import (
	"encoding/json"
	"strconv"
)

// Stringify renders an untyped argument for path or query insertion.
// Rules: strings verbatim; booleans "true"/"false"; json.Number keeps its
// literal form; other numbers in minimal decimal notation; nil renders
// empty; objects and arrays render as compact JSON. No schema checking
// happens here — coercion is purely textual.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
