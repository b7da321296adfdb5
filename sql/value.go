package sql

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	NullString  = "null"
	TrueString  = "true"
	FalseString = "false"
)

// Value is a runtime value; a nil Value is null.
type Value interface {
	fmt.Stringer

	// return -1 if v1 < v2
	// return 0 if v1 == v2
	// return 1 if v1 > v2
	Compare(v2 Value) (int, error)
}

type BoolValue bool

func (b BoolValue) String() string {
	if b {
		return TrueString
	}
	return FalseString
}

func (b1 BoolValue) Compare(v2 Value) (int, error) {
	if b2, ok := v2.(BoolValue); ok {
		if b1 {
			if b2 {
				return 0, nil
			}
			return 1, nil
		} else {
			if b2 {
				return -1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("sqlexpr: want boolean got %s", Format(v2))
}

type Int64Value int64

func (i Int64Value) String() string {
	return fmt.Sprintf("%v", int64(i))
}

func (i1 Int64Value) Compare(v2 Value) (int, error) {
	switch v2 := v2.(type) {
	case Int64Value:
		if i1 < v2 {
			return -1, nil
		} else if i1 > v2 {
			return 1, nil
		}
		return 0, nil
	case Float64Value:
		return compareFloats(float64(i1), float64(v2)), nil
	}
	return 0, fmt.Errorf("sqlexpr: want number got %s", Format(v2))
}

type Float64Value float64

func (d Float64Value) String() string {
	return fmt.Sprintf("%v", float64(d))
}

func (d1 Float64Value) Compare(v2 Value) (int, error) {
	switch v2 := v2.(type) {
	case Int64Value:
		return compareFloats(float64(d1), float64(v2)), nil
	case Float64Value:
		return compareFloats(float64(d1), float64(v2)), nil
	}
	return 0, fmt.Errorf("sqlexpr: want number got %s", Format(v2))
}

// compareFloats orders NaN below every other number and equal to itself.
func compareFloats(f1, f2 float64) int {
	if math.IsNaN(f1) {
		if math.IsNaN(f2) {
			return 0
		}
		return -1
	} else if math.IsNaN(f2) {
		return 1
	} else if f1 < f2 {
		return -1
	} else if f1 > f2 {
		return 1
	}
	return 0
}

type StringValue string

func (s StringValue) String() string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(string(s), "'", "''"))
}

func (s1 StringValue) Compare(v2 Value) (int, error) {
	if s2, ok := v2.(StringValue); ok {
		return strings.Compare(string(s1), string(s2)), nil
	}
	return 0, fmt.Errorf("sqlexpr: want string got %s", Format(v2))
}

type BytesValue []byte

var (
	hexDigits = [16]rune{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd',
		'e', 'f'}
)

func (b BytesValue) String() string {
	var buf bytes.Buffer
	buf.WriteString("'\\x")
	for _, v := range b {
		buf.WriteRune(hexDigits[v>>4])
		buf.WriteRune(hexDigits[v&0xF])
	}

	buf.WriteRune('\'')
	return buf.String()
}

func (b1 BytesValue) Compare(v2 Value) (int, error) {
	if b2, ok := v2.(BytesValue); ok {
		return bytes.Compare([]byte(b1), []byte(b2)), nil
	}
	return 0, fmt.Errorf("sqlexpr: want bytes got %s", Format(v2))
}

type ListValue []Value

func (l ListValue) String() string {
	var buf strings.Builder
	buf.WriteRune('[')
	for i, v := range l {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(Format(v))
	}
	buf.WriteRune(']')
	return buf.String()
}

func (l1 ListValue) Compare(v2 Value) (int, error) {
	if l2, ok := v2.(ListValue); ok {
		for i := 0; i < len(l1) && i < len(l2); i++ {
			if cmp := Compare(l1[i], l2[i]); cmp != 0 {
				return cmp, nil
			}
		}
		if len(l1) < len(l2) {
			return -1, nil
		} else if len(l1) > len(l2) {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("sqlexpr: want list got %s", Format(v2))
}

// MapValue is a mapping from string keys to values; it is always visited in key order.
type MapValue map[string]Value

// Keys returns the keys of the map in order.
func (m MapValue) Keys() []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func (m MapValue) String() string {
	var buf strings.Builder
	buf.WriteRune('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", StringValue(k), Format(m[k]))
	}
	buf.WriteRune('}')
	return buf.String()
}

func (m1 MapValue) Compare(v2 Value) (int, error) {
	m2, ok := v2.(MapValue)
	if !ok {
		return 0, fmt.Errorf("sqlexpr: want map got %s", Format(v2))
	}

	k1 := m1.Keys()
	k2 := m2.Keys()
	for i := 0; i < len(k1) && i < len(k2); i++ {
		if cmp := strings.Compare(k1[i], k2[i]); cmp != 0 {
			return cmp, nil
		}
		if cmp := Compare(m1[k1[i]], m2[k2[i]]); cmp != 0 {
			return cmp, nil
		}
	}
	if len(k1) < len(k2) {
		return -1, nil
	} else if len(k1) > len(k2) {
		return 1, nil
	}
	return 0, nil
}

func typeRank(v Value) int {
	switch v.(type) {
	case nil:
		return 0
	case BoolValue:
		return 1
	case Float64Value, Int64Value:
		return 2
	case StringValue:
		return 3
	case BytesValue:
		return 4
	case ListValue:
		return 5
	case MapValue:
		return 6
	default:
		panic(fmt.Sprintf("unexpected type for sql.Value: %T: %v", v, v))
	}
}

// Compare totally orders values: null first, then booleans, numbers, strings, bytes, lists,
// and maps.
func Compare(v1, v2 Value) int {
	r1 := typeRank(v1)
	r2 := typeRank(v2)
	if r1 < r2 {
		return -1
	} else if r1 > r2 {
		return 1
	} else if r1 == 0 {
		return 0
	}

	cmp, err := v1.Compare(v2)
	if err != nil {
		panic(fmt.Sprintf("sql.Compare(%s, %s): %s", v1, v2, err))
	}
	return cmp
}

func Equal(v1, v2 Value) bool {
	if _, ok := v1.(Float64Value); ok {
		if _, ok := v2.(Int64Value); ok {
			return false
		}
	} else if _, ok := v1.(Int64Value); ok {
		if _, ok := v2.(Float64Value); ok {
			return false
		}
	}
	return Compare(v1, v2) == 0
}

func Format(v Value) string {
	if v == nil {
		return NullString
	}

	return v.String()
}

// FromGo converts data decoded from YAML, HCL or JSON into a Value.
func FromGo(v interface{}) (Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Value:
		return v, nil
	case bool:
		return BoolValue(v), nil
	case string:
		return StringValue(v), nil
	case []byte:
		return BytesValue(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		return Int64Value(i), nil
	case float32, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		return Float64Value(f), nil
	case []interface{}:
		l := make(ListValue, 0, len(v))
		for _, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			l = append(l, ev)
		}
		return l, nil
	case []map[string]interface{}:
		l := make(ListValue, 0, len(v))
		for _, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			l = append(l, ev)
		}
		return l, nil
	case map[string]interface{}:
		m := make(MapValue, len(v))
		for k, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			m[k] = ev
		}
		return m, nil
	case map[interface{}]interface{}:
		m := make(MapValue, len(v))
		for k, e := range v {
			ks, err := cast.ToStringE(k)
			if err != nil {
				return nil, fmt.Errorf("sqlexpr: map key %v: %s", k, err)
			}
			ev, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			m[ks] = ev
		}
		return m, nil
	}
	return nil, fmt.Errorf("sqlexpr: unable to convert %T to a value: %v", v, v)
}
