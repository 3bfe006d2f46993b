package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// toRecord accepts decoded JSON objects directly and round-trips typed structs
// through encoding/json so both go through the same checks.
func toRecord(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, ErrNotRecord
	case map[string]any:
		return t, nil
	case json.RawMessage:
		return decodeRecord(t)
	case []byte:
		return decodeRecord(t)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNotRecord
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: got %T", ErrNotRecord, v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRecord, err)
	}
	return decodeRecord(raw)
}

func decodeRecord(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, ErrNotRecord
	}
	return m, nil
}

// reader pulls typed fields out of an untyped record, recording every
// shape violation instead of stopping at the first one.
type reader struct {
	errs *ValidationErrors
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func (r reader) object(m map[string]any, key, path string, required bool) (map[string]any, bool) {
	field := join(path, key)
	raw, ok := m[key]
	if !ok || raw == nil {
		if required {
			r.errs.Add(field, "is required")
		}
		return nil, false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		r.errs.Addf(field, "must be an object, got %s", typeName(raw))
		return nil, false
	}
	return obj, true
}

func (r reader) array(m map[string]any, key, path string, required bool) ([]any, bool) {
	field := join(path, key)
	raw, ok := m[key]
	if !ok || raw == nil {
		if required {
			r.errs.Add(field, "is required")
		}
		return nil, false
	}
	arr, ok := raw.([]any)
	if !ok {
		r.errs.Addf(field, "must be an array, got %s", typeName(raw))
		return nil, false
	}
	return arr, true
}

func (r reader) str(m map[string]any, key, path string, required bool) string {
	field := join(path, key)
	raw, ok := m[key]
	if !ok || raw == nil {
		if required {
			r.errs.Add(field, "is required")
		}
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		r.errs.Addf(field, "must be a string, got %s", typeName(raw))
		return ""
	}
	return s
}

// text is a required string that must not be blank
func (r reader) text(m map[string]any, key, path string) string {
	before := len(r.errs.Errors)
	s := r.str(m, key, path, true)
	if len(r.errs.Errors) == before && strings.TrimSpace(s) == "" {
		r.errs.Add(join(path, key), "must not be empty")
	}
	return s
}

func (r reader) number(m map[string]any, key, path string, required bool) (float64, bool) {
	field := join(path, key)
	raw, ok := m[key]
	if !ok || raw == nil {
		if required {
			r.errs.Add(field, "is required")
		}
		return 0, false
	}
	f, ok := toFloat(raw)
	if !ok {
		r.errs.Addf(field, "must be a number, got %s", typeName(raw))
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.errs.Add(field, "must be a finite number")
		return 0, false
	}
	return f, true
}

func (r reader) integer(m map[string]any, key, path string, required bool) (int, bool) {
	f, ok := r.number(m, key, path, required)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) {
		r.errs.Addf(join(path, key), "must be an integer, got %v", f)
		return 0, false
	}
	if math.Abs(f) > math.MaxInt32 {
		r.errs.Addf(join(path, key), "is out of range, got %g", f)
		return 0, false
	}
	return int(f), true
}

func (r reader) boolean(m map[string]any, key, path string) (bool, bool) {
	field := join(path, key)
	raw, ok := m[key]
	if !ok || raw == nil {
		r.errs.Add(field, "is required")
		return false, false
	}
	b, ok := raw.(bool)
	if !ok {
		r.errs.Addf(field, "must be a boolean, got %s", typeName(raw))
		return false, false
	}
	return b, true
}

func (r reader) enum(m map[string]any, key, path string, allowed []string, required bool) string {
	before := len(r.errs.Errors)
	s := r.str(m, key, path, required)
	if len(r.errs.Errors) != before {
		return ""
	}
	if s == "" && !required {
		return ""
	}
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	r.errs.Addf(join(path, key), "must be one of [%s], got %q", strings.Join(allowed, ", "), s)
	return ""
}

func (r reader) strings(m map[string]any, key, path string, required bool) []string {
	field := join(path, key)
	arr, ok := r.array(m, key, path, required)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			r.errs.Addf(index(field, i), "must be a string, got %s", typeName(item))
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r reader) objects(m map[string]any, key, path string, required bool) []map[string]any {
	field := join(path, key)
	arr, ok := r.array(m, key, path, required)
	if !ok {
		return nil
	}
	out := make([]map[string]any, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			r.errs.Addf(index(field, i), "must be an object, got %s", typeName(item))
			continue
		}
		out[i] = obj
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
