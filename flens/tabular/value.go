package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the inferred type of a cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single typed cell. It is comparable: two values are equal only
// when both the kind and the payload match, so Int(1) != String("1") and
// Int(1) != Float(1). Filtering relaxes the numeric case, see FilterTable.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func Null() Value { return Value{kind: KindNull} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Str() string { return v.s }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool { return v.b }

// Native returns the Go value carried by v (nil for null).
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Native())
}

// UnmarshalJSON decodes JSON scalars: integers become Int, other numbers
// Float, strings String, booleans Bool and null Null.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(x)
	case bool:
		*v = Bool(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			*v = Int(i)
			return nil
		}
		f, err := x.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		*v = Float(f)
	default:
		return fmt.Errorf("unsupported filter value %s", string(data))
	}
	return nil
}

// ParseValue types a raw string with the same rules the delimited-text
// reader applies to a single cell.
func ParseValue(raw string) Value {
	return convertCell(raw, inferCellKind(raw))
}

// FromNative converts a decoded Go value into a Value.
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t))
		}
		return Int(int64(t))
	case float32:
		return FromNative(float64(t))
	case float64:
		if math.IsNaN(t) {
			return Null()
		}
		return Float(t)
	default:
		return String(fmt.Sprint(t))
	}
}

// missingMarkers are cell texts read as a missing value, matching the
// defaults of common dataframe readers.
var missingMarkers = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

func isMissing(s string) bool {
	_, ok := missingMarkers[s]
	return ok
}

// inferCellKind returns the narrowest kind a non-empty cell parses as.
// Non-finite numbers stay text so every value survives a JSON round trip.
func inferCellKind(raw string) Kind {
	s := strings.TrimSpace(raw)
	if s == "" || isMissing(s) {
		return KindNull
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KindInt
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return KindFloat
	}
	if isBoolLiteral(s) {
		return KindBool
	}
	return KindString
}

// widen merges the kind seen so far in a column with the kind of a new cell.
func widen(col, cell Kind) Kind {
	switch {
	case cell == KindNull:
		return col
	case col == KindNull:
		return cell
	case col == cell:
		return col
	case (col == KindInt && cell == KindFloat) || (col == KindFloat && cell == KindInt):
		return KindFloat
	default:
		return KindString
	}
}

func convertCell(raw string, kind Kind) Value {
	s := strings.TrimSpace(raw)
	if s == "" || isMissing(s) {
		return Null()
	}
	switch kind {
	case KindInt:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return Float(f)
		}
	case KindBool:
		if isBoolLiteral(s) {
			return Bool(strings.EqualFold(s, "true"))
		}
	}
	return String(raw)
}

func isBoolLiteral(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

// SortValues orders values by kind, then by payload, so set contents can be
// listed deterministically.
func SortValues(values []Value) {
	sort.Slice(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		switch a.kind {
		case KindString:
			return a.s < b.s
		case KindInt:
			return a.i < b.i
		case KindFloat:
			return a.f < b.f
		case KindBool:
			return !a.b && b.b
		default:
			return false
		}
	})
}
