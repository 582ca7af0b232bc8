package docstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Document is one stored record. Typed getters are the only place raw field
// values are coerced; each returns the zero value when the field is absent
// or has an unusable type.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Has reports whether the field is present.
func (d Document) Has(field string) bool {
	_, ok := d.Data[field]
	return ok
}

// String returns a string field, or "".
func (d Document) String(field string) string {
	switch v := d.Data[field].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}

// Bool returns a bool field, or false. The strings "true" and "1" count as true.
func (d Document) Bool(field string) bool {
	switch v := d.Data[field].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return false
	}
}

// Int returns an integer field, or 0. Numeric strings are parsed.
func (d Document) Int(field string) int {
	v := d.Data[field]
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return 0
}

// Time returns a timestamp field, or the zero time. RFC3339 strings are parsed.
func (d Document) Time(field string) time.Time {
	switch v := d.Data[field].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Strings returns a list-of-strings field, or nil. Non-string elements are skipped.
func (d Document) Strings(field string) []string {
	switch v := d.Data[field].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// copyFields returns a shallow copy of fields with string slices cloned and
// the ServerTimestamp sentinel resolved to now.
func copyFields(fields map[string]interface{}, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch tv := v.(type) {
		case sentinel:
			if tv == ServerTimestamp {
				out[k] = now
				continue
			}
			out[k] = string(tv)
		case []string:
			cp := make([]string, len(tv))
			copy(cp, tv)
			out[k] = cp
		case []interface{}:
			cp := make([]interface{}, len(tv))
			copy(cp, tv)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
