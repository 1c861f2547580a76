package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindText
	KindNumber
	KindBool
)

// Value is a single field of a schema-less record.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Absent returns the zero Value, used for missing keys and JSON null.
func Absent() Value { return Value{} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a float64.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v holds no value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Truthy reports whether v carries meaningful content. Absent, empty text,
// numeric zero and false are not truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindText:
		return v.text != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	default:
		return false
	}
}

// String returns the display text of v. Absent values render as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Float returns v as a number when it is a Number or text that parses fully
// as a finite number.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindText:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// BoolValue returns the boolean held by v and whether v is a Bool.
func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == KindBool
}

// MarshalJSON encodes v as the matching JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value. Objects and arrays are kept as text
// holding their compact encoding.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Absent()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Text(buf.String())
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", data, err)
		}
		*v = Number(f)
	}
	return nil
}
