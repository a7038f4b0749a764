package record

import (
	jsoncodec "github.com/goccy/go-json"

	"github.com/aleics/deltasearch/value"
)

// FlattenJSON walks a nested JSON object into the flat field map records
// store. Nested objects are flattened with dot-joined paths
// ("family.name"); nested arrays of objects are flattened and re-collected
// per leaf path into an Array value, preserving insertion order within one
// parent array.
func FlattenJSON(data []byte) (map[string]value.Value, error) {
	var raw map[string]any
	if err := jsoncodec.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	fields := map[string]value.Value{}
	for key, val := range raw {
		for path, v := range flattenValue(key, val) {
			fields[path] = v
		}
	}
	return fields, nil
}

func flattenValue(key string, raw any) map[string]value.Value {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return map[string]value.Value{key: value.Bool(v)}
	case string:
		return map[string]value.Value{key: value.String(v)}
	case float64:
		dec, err := value.Decimal(v)
		if err != nil {
			return nil
		}
		return map[string]value.Value{key: dec}
	case map[string]any:
		fields := map[string]value.Value{}
		for innerKey, innerVal := range v {
			path := key + "." + innerKey
			for p, fv := range flattenValue(path, innerVal) {
				fields[p] = fv
			}
		}
		return fields
	case []any:
		return flattenArray(key, v)
	default:
		return nil
	}
}

// flattenArray flattens a JSON array of (possibly nested) objects into one
// Array value per leaf path, unwrapping any Array produced by a nested
// element so that arrays of arrays collapse into a single flat Array
// (mirrors ExternalFieldValue::flatten's Seq branch in data.rs).
func flattenArray(key string, elements []any) map[string]value.Value {
	perPath := map[string][]value.Value{}
	order := []string{}

	for _, elem := range elements {
		for path, v := range flattenValue(key, elem) {
			if _, seen := perPath[path]; !seen {
				order = append(order, path)
			}
			if inner, ok := v.AsArray(); ok {
				perPath[path] = append(perPath[path], inner...)
			} else {
				perPath[path] = append(perPath[path], v)
			}
		}
	}

	fields := map[string]value.Value{}
	for _, path := range order {
		fields[path] = value.Array(perPath[path]...)
	}
	return fields
}
