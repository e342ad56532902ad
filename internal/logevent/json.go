package logevent

import (
	"encoding/json"
	"fmt"
)

// FieldsFromJSON converts a JSON object into a Fields mapping, so experiment
// metadata files can be logged as-is. Arrays must be homogeneous: all
// numbers, all strings, or all objects are rejected.
func FieldsFromJSON(b []byte) (Fields, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return fieldsFromMap(m)
}

func fieldsFromMap(m map[string]interface{}) (Fields, error) {
	out := make(Fields, len(m))
	for k, raw := range m {
		v, err := valueFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func valueFromJSON(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Float(v), nil
	case string:
		return Str(v), nil
	case map[string]interface{}:
		f, err := fieldsFromMap(v)
		if err != nil {
			return Value{}, err
		}
		return Map(f), nil
	case []interface{}:
		return listFromJSON(v)
	default:
		return Value{}, fmt.Errorf("unsupported JSON value %T", raw)
	}
}

func listFromJSON(items []interface{}) (Value, error) {
	if len(items) == 0 {
		return Floats(nil), nil
	}
	switch items[0].(type) {
	case float64:
		nums := make([]float64, len(items))
		for i, it := range items {
			n, ok := it.(float64)
			if !ok {
				return Value{}, fmt.Errorf("mixed-type list at index %d", i)
			}
			nums[i] = n
		}
		return Floats(nums), nil
	case string:
		strs := make([]string, len(items))
		for i, it := range items {
			s, ok := it.(string)
			if !ok {
				return Value{}, fmt.Errorf("mixed-type list at index %d", i)
			}
			strs[i] = s
		}
		return Strs(strs), nil
	default:
		return Value{}, fmt.Errorf("unsupported list element %T", items[0])
	}
}
