package models

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindComposite:
		return "composite"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a single field value of a Record. It is a closed variant: the
// zero Value is Null, and the text of every other kind is fixed at
// construction time.
type Value struct {
	kind Kind
	text string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, text: strconv.FormatBool(b)}
}

// Int returns an integral number value.
func Int(i int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)}
}

// Uint returns an unsigned integral number value.
func Uint(u uint64) Value {
	return Value{kind: KindNumber, text: strconv.FormatUint(u, 10)}
}

// Float returns a floating point number value in its shortest round-trip form.
func Float(f float64) Value {
	return Value{kind: KindNumber, text: formatFloat(f)}
}

// Number returns a number value from decoded JSON number text. Text that
// is not an int64 is kept verbatim so precision and scale survive.
func Number(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	return Value{kind: KindNumber, text: n.String()}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Composite returns a value holding compact JSON text for a nested
// structure.
func Composite(jsonText string) Value {
	return Value{kind: KindComposite, text: jsonText}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the canonical text of v. Null renders as the empty string.
func (v Value) String() string { return v.text }

// ValueOf converts a decoded Go value into a Value. Maps and slices become
// Composite values holding their compact JSON form.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Text(x), nil
	case json.Number:
		return Number(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return Text(x.UTC().Format(time.RFC3339Nano)), nil
	case []byte:
		return Text(base64.StdEncoding.EncodeToString(x)), nil
	case map[string]any, []any:
		text, err := compactJSON(x)
		if err != nil {
			return Value{}, err
		}
		return Composite(text), nil
	}

	text, err := compactJSON(raw)
	if err != nil {
		return Value{}, fmt.Errorf("unsupported value of type %T: %w", raw, err)
	}
	return Composite(text), nil
}

// compactJSON renders v as single-line JSON without HTML escaping.
func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sanitizeNested(v)); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// sanitizeNested replaces values encoding/json cannot represent. Non-finite
// floats become null.
func sanitizeNested(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = sanitizeNested(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = sanitizeNested(e)
		}
		return out
	}
	return v
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		return trimExponent(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimExponent drops the leading zeros Go pads exponents with, so 1e-07
// renders as 1e-7.
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 > len(s) {
		return s
	}
	return s[:i+2] + strings.TrimLeft(s[i+2:], "0")
}
