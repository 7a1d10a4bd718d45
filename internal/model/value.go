package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the discriminant shared by questions and answer values
type Kind string

const (
	KindInteger        Kind = "integer"
	KindDecimal        Kind = "decimal"
	KindText           Kind = "text"
	KindSingleChoice   Kind = "singleChoice"
	KindMultipleChoice Kind = "multipleChoice"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindInteger, KindDecimal, KindText, KindSingleChoice, KindMultipleChoice:
		return true
	}
	return false
}

// IsChoice reports whether questions of this kind carry an option set
func (k Kind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultipleChoice
}

// Value is an answer value. Exactly one payload field is meaningful,
// selected by kind. The zero Value has no kind and is invalid.
type Value struct {
	kind    Kind
	integer int64
	decimal float64
	text    string
	choices []string
}

func IntegerValue(v int64) Value   { return Value{kind: KindInteger, integer: v} }
func DecimalValue(v float64) Value { return Value{kind: KindDecimal, decimal: v} }
func TextValue(v string) Value     { return Value{kind: KindText, text: v} }

func SingleChoiceValue(v string) Value {
	return Value{kind: KindSingleChoice, text: v}
}

// MultipleChoiceValue builds a set value. Duplicates collapse and the first
// occurrence keeps its position.
func MultipleChoiceValue(choices ...string) Value {
	return Value{kind: KindMultipleChoice, choices: dedupe(choices)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Integer() (int64, bool)   { return v.integer, v.kind == KindInteger }
func (v Value) Decimal() (float64, bool) { return v.decimal, v.kind == KindDecimal }

// Text returns the string payload of text and single-choice values
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText || v.kind == KindSingleChoice
}

// Choices returns the selected options of a choice value
func (v Value) Choices() []string {
	switch v.kind {
	case KindSingleChoice:
		return []string{v.text}
	case KindMultipleChoice:
		out := make([]string, len(v.choices))
		copy(out, v.choices)
		return out
	}
	return nil
}

// Equal compares kind and payload. Multiple-choice sets ignore order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.integer == o.integer
	case KindDecimal:
		return v.decimal == o.decimal || (math.IsNaN(v.decimal) && math.IsNaN(o.decimal))
	case KindText, KindSingleChoice:
		return v.text == o.text
	case KindMultipleChoice:
		if len(v.choices) != len(o.choices) {
			return false
		}
		set := make(map[string]struct{}, len(v.choices))
		for _, c := range v.choices {
			set[c] = struct{}{}
		}
		for _, c := range o.choices {
			if _, ok := set[c]; !ok {
				return false
			}
		}
		return true
	}
	return true
}

// EncodedValue is the portable form of a Value: a kind tag plus a scalar
// or array payload.
type EncodedValue struct {
	Type  Kind        `json:"type" bson:"type"`
	Value interface{} `json:"value" bson:"value"`
}

// Encode returns the portable representation of v
func (v Value) Encode() EncodedValue {
	enc := EncodedValue{Type: v.kind}
	switch v.kind {
	case KindInteger:
		enc.Value = v.integer
	case KindDecimal:
		enc.Value = v.decimal
	case KindText, KindSingleChoice:
		enc.Value = v.text
	case KindMultipleChoice:
		choices := v.choices
		if choices == nil {
			choices = []string{}
		}
		enc.Value = choices
	}
	return enc
}

// DecodeValue parses an encoded value against the kind its question expects.
// An empty tag adopts the expected kind.
func DecodeValue(enc EncodedValue, expected Kind) (Value, error) {
	if !expected.Valid() {
		return Value{}, Errorf(ErrInvalidKind, "%q", expected)
	}
	if enc.Type != "" && enc.Type != expected {
		return Value{}, Errorf(ErrTypeMismatch, "got %s, want %s", enc.Type, expected)
	}

	switch expected {
	case KindInteger:
		n, ok := asInt64(enc.Value)
		if !ok {
			return Value{}, Errorf(ErrMalformedValue, "expected integer")
		}
		return IntegerValue(n), nil
	case KindDecimal:
		f, ok := asFloat64(enc.Value)
		if !ok {
			return Value{}, Errorf(ErrMalformedValue, "expected decimal")
		}
		return DecimalValue(f), nil
	case KindText:
		s, ok := enc.Value.(string)
		if !ok {
			return Value{}, Errorf(ErrMalformedValue, "expected string")
		}
		return TextValue(s), nil
	case KindSingleChoice:
		s, ok := enc.Value.(string)
		if !ok {
			return Value{}, Errorf(ErrMalformedValue, "expected option string")
		}
		return SingleChoiceValue(s), nil
	default:
		choices, ok := asStrings(enc.Value)
		if !ok {
			return Value{}, Errorf(ErrMalformedValue, "expected array of option strings")
		}
		return MultipleChoiceValue(choices...), nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Encode())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var enc EncodedValue
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&enc); err != nil {
		return Errorf(ErrMalformedValue, "%v", err)
	}
	if enc.Type == "" {
		return Errorf(ErrMalformedValue, "missing type tag")
	}
	decoded, err := DecodeValue(enc, enc.Type)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (v Value) MarshalBSON() ([]byte, error) {
	return bson.Marshal(v.Encode())
}

func (v *Value) UnmarshalBSON(data []byte) error {
	var enc EncodedValue
	if err := bson.Unmarshal(data, &enc); err != nil {
		return Errorf(ErrMalformedValue, "%v", err)
	}
	if enc.Type == "" {
		return Errorf(ErrMalformedValue, "missing type tag")
	}
	decoded, err := DecodeValue(enc, enc.Type)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func asInt64(raw interface{}) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat64(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
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

func asStrings(raw interface{}) ([]string, bool) {
	var items []interface{}
	switch a := raw.(type) {
	case []string:
		return a, true
	case []interface{}:
		items = a
	case primitive.A:
		items = a
	default:
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
