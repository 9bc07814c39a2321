package grading

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Raw answers arrive as decoded JSON: numbers are float64, selections
// are []any, grid responses are map[string]any. These helpers coerce
// loosely; anything that cannot be coerced is simply a wrong answer.

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asIndexSet coerces a selection list ([]any, []int, []float64) into a
// set of option indices.
func asIndexSet(v any) (map[int]struct{}, bool) {
	set := map[int]struct{}{}
	switch t := v.(type) {
	case nil:
		return nil, false
	case []int:
		for _, i := range t {
			set[i] = struct{}{}
		}
		return set, true
	case []float64:
		for _, f := range t {
			set[int(f)] = struct{}{}
		}
		return set, true
	case []any:
		for _, e := range t {
			f, ok := asFloat(e)
			if !ok {
				return nil, false
			}
			set[int(f)] = struct{}{}
		}
		return set, true
	default:
		return nil, false
	}
}

func setsEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// valuesEqual compares a correct value against a raw answer: numeric
// comparison when both sides coerce to numbers, exact string equality
// otherwise.
func valuesEqual(key, got any) bool {
	if kf, ok := asFloat(key); ok {
		if gf, ok := asFloat(got); ok {
			return kf == gf
		}
		return false
	}
	ks, ok := asString(key)
	if !ok {
		return false
	}
	gs, ok := asString(got)
	return ok && ks == gs
}

// keyString renders a row or column identifier uniformly: integral
// numbers as their index, everything else as a string.
func keyString(v any) string {
	if f, isNum := v.(float64); isNum {
		return strconv.Itoa(int(f))
	}
	if i, isInt := v.(int); isInt {
		return strconv.Itoa(i)
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return fmt.Sprint(v)
}

// normalizeGridKey turns either form of a grid answer key (an array of
// [row,col] pairs, or a row->column mapping) into a row->column lookup.
// An unusable key yields an empty map, which grades as a survey.
func normalizeGridKey(v any) map[string]string {
	out := map[string]string{}
	switch t := v.(type) {
	case map[string]string:
		for row, col := range t {
			out[row] = col
		}
	case map[string]any:
		for row, col := range t {
			out[row] = keyString(col)
		}
	case []any:
		for _, e := range t {
			pair, ok := e.([]any)
			if !ok || len(pair) != 2 {
				continue
			}
			out[keyString(pair[0])] = keyString(pair[1])
		}
	}
	return out
}

// asRowMap coerces a grid response into row->column selections.
func asRowMap(v any) (map[string]string, bool) {
	switch t := v.(type) {
	case map[string]string:
		return t, true
	case map[string]any:
		out := make(map[string]string, len(t))
		for row, col := range t {
			out[row] = keyString(col)
		}
		return out, true
	default:
		return nil, false
	}
}

// foldEqual compares two free-text answers after trimming whitespace,
// ignoring case.
func foldEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
