package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueType tags which variant a Value holds.
type ValueType uint8

const (
	ValueNone ValueType = iota
	ValueString
	ValueNumber
	ValueBool
)

// Value is a single property value. It is a tagged union of string, number
// and bool; the zero Value means "absent".
type Value struct {
	typ ValueType
	str string
	num float64
	b   bool
}

func StringValue(s string) Value     { return Value{typ: ValueString, str: s} }
func NumberValue(n float64) Value    { return Value{typ: ValueNumber, num: n} }
func BoolValue(b bool) Value         { return Value{typ: ValueBool, b: b} }
func (v Value) Type() ValueType      { return v.typ }
func (v Value) IsZero() bool         { return v.typ == ValueNone }
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == ValueBool }

// OptionValue is a select option that has been checked against its field's
// options. It is stored as a string so content survives a plain JSON round
// trip unchanged.
func OptionValue(opt string) Value { return StringValue(opt) }

// AsNumber returns the numeric payload. Strings holding a number are accepted
// so values typed into free text fields still resolve.
func (v Value) AsNumber() (float64, bool) {
	switch v.typ {
	case ValueNumber:
		return v.num, true
	case ValueString:
		n, err := strconv.ParseFloat(v.str, 64)
		return n, err == nil
	}
	return 0, false
}

// String renders the value the way a form field displays it.
func (v Value) String() string {
	switch v.typ {
	case ValueString:
		return v.str
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// Truthy mirrors how the page scripts treat values: empty strings, zero and
// false are all falsy.
func (v Value) Truthy() bool {
	switch v.typ {
	case ValueString:
		return v.str != ""
	case ValueNumber:
		return v.num != 0
	case ValueBool:
		return v.b
	}
	return false
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		return json.Marshal(v.num)
	case ValueBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := valueFromAny(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

func valueFromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case float64:
		return NumberValue(x), nil
	case int:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	}
	return Value{}, fmt.Errorf("unsupported property value of type %T", raw)
}
