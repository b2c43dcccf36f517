package formschema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when a date answer is parsed.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDate parses a date answer as entered by a date picker or sent as an
// ISO timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// coerceNumber converts a raw number-field value. set is false when the field
// holds no value (nil or blank text). ok is false when a value is present but
// is not numeric.
func coerceNumber(v any) (n float64, set bool, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, false, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), true, false
		}
		return f, true, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN(), true, false
		}
		return f, true, true
	case float64:
		return x, true, true
	case float32:
		return float64(x), true, true
	case int:
		return float64(x), true, true
	case int8:
		return float64(x), true, true
	case int16:
		return float64(x), true, true
	case int32:
		return float64(x), true, true
	case int64:
		return float64(x), true, true
	case uint:
		return float64(x), true, true
	case uint8:
		return float64(x), true, true
	case uint16:
		return float64(x), true, true
	case uint32:
		return float64(x), true, true
	case uint64:
		return float64(x), true, true
	default:
		return math.NaN(), true, false
	}
}

// stringSlice accepts the two shapes a multiple-choice selection takes:
// []string from in-process callers and []any from decoded JSON.
func stringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// isBlank reports whether v counts as "no answer" for a required check.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
