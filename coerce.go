package toolcase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coerceInputs validates the loosely-typed input map against the derived
// parameter list and coerces each value to its declared wire kind. Missing
// required parameters and uncoercible values are InputErrors naming the
// offending field. Absent optional parameters take their schema default.
// Keys not named by any parameter are dropped.
func coerceInputs(params []InputParameter, inputs map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for _, p := range params {
		v, present := inputs[p.Name]
		if !present {
			if p.Required {
				return nil, &InputError{Field: p.Name, Reason: "missing required parameter"}
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		if v == nil {
			if !p.ValueSchema.Nullable {
				return nil, &InputError{Field: p.Name, Reason: "must not be null"}
			}
			out[p.Name] = nil
			continue
		}
		coerced, err := coerceValue(p.ValueSchema, v)
		if err != nil {
			return nil, &InputError{Field: p.Name, Reason: err.Error()}
		}
		out[p.Name] = coerced
	}
	return out, nil
}

// coerceValue converts one value to the kind the schema declares. Arrays
// recurse into their element kind; enum membership is checked case-
// insensitively and normalized to the declared spelling.
func coerceValue(vs ValueSchema, v any) (any, error) {
	switch vs.ValType {
	case ValTypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		if len(vs.Enum) > 0 {
			return matchEnum(vs.Enum, s)
		}
		return s, nil

	case ValTypeInteger:
		return coerceInteger(v)

	case ValTypeNumber:
		return coerceNumber(v)

	case ValTypeBoolean:
		return coerceBoolean(v)

	case ValTypeArray:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", v)
		}
		inner := ValueSchema{ValType: vs.InnerValType, Enum: vs.Enum}
		out := make([]any, len(items))
		for i, item := range items {
			coerced, err := coerceValue(inner, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %v", i, err)
			}
			out[i] = coerced
		}
		return out, nil

	case ValTypeJSON:
		switch v.(type) {
		case map[string]any, []any:
			return v, nil
		}
		// Anything JSON-representable passes; the compiled schema has the
		// final word during argument parsing.
		if _, err := json.Marshal(v); err != nil {
			return nil, fmt.Errorf("value is not JSON-representable: %v", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown wire kind %q", vs.ValType)
}

// matchEnum checks closed-list membership, folding case, and returns the
// canonical (declared) spelling.
func matchEnum(enum []string, s string) (string, error) {
	for _, v := range enum {
		if v == s {
			return v, nil
		}
	}
	for _, v := range enum {
		if strings.EqualFold(v, s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("value %q is not one of %v", s, enum)
}

func coerceInteger(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got fractional number %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func coerceNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func coerceBoolean(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("cannot parse %q as boolean", b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}
