package value

import "encoding/json"

// wireValue is the tagged-union envelope Value (de)serializes through. It is
// used by the record storage codec (via goccy/go-json, which honors the same
// json.Marshaler/Unmarshaler interfaces); FlattenJSON does not use it, as it
// reads plain JSON into map[string]any. Format stability across versions is
// not promised (§6).
type wireValue struct {
	Kind    string      `json:"kind"`
	Bool    *bool       `json:"bool,omitempty"`
	Integer *uint64     `json:"integer,omitempty"`
	String  *string     `json:"string,omitempty"`
	Decimal *float64    `json:"decimal,omitempty"`
	Array   []wireValue `json:"array,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toWire())
}

func (v Value) toWire() wireValue {
	switch v.kind {
	case KindBool:
		b := v.b
		return wireValue{Kind: "bool", Bool: &b}
	case KindInteger:
		i := v.i
		return wireValue{Kind: "integer", Integer: &i}
	case KindString:
		s := v.s
		return wireValue{Kind: "string", String: &s}
	case KindDecimal:
		d := v.d
		return wireValue{Kind: "decimal", Decimal: &d}
	case KindArray:
		elems := make([]wireValue, len(v.arr))
		for i, e := range v.arr {
			elems[i] = e.toWire()
		}
		return wireValue{Kind: "array", Array: elems}
	default:
		return wireValue{Kind: "bool", Bool: new(bool)}
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := fromWire(w)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromWire(w wireValue) (Value, error) {
	switch w.Kind {
	case "bool":
		if w.Bool == nil {
			return Value{}, errMalformed("bool")
		}
		return Bool(*w.Bool), nil
	case "integer":
		if w.Integer == nil {
			return Value{}, errMalformed("integer")
		}
		return Integer(*w.Integer), nil
	case "string":
		if w.String == nil {
			return Value{}, errMalformed("string")
		}
		return String(*w.String), nil
	case "decimal":
		if w.Decimal == nil {
			return Value{}, errMalformed("decimal")
		}
		return Decimal(*w.Decimal)
	case "array":
		elems := make([]Value, len(w.Array))
		for i, e := range w.Array {
			parsed, err := fromWire(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = parsed
		}
		return Array(elems...), nil
	default:
		return Value{}, errMalformed(w.Kind)
	}
}

func errMalformed(kind string) error {
	return &malformedValueError{kind: kind}
}

type malformedValueError struct{ kind string }

func (e *malformedValueError) Error() string {
	return "value: malformed wire value of kind " + e.kind
}
