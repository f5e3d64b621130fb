package qute

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// toDecimal coerces numbers and numeric strings. Booleans, nil and other
// types are not numbers.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Decimal{}, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint8:
		return decimal.NewFromUint64(uint64(n)), true
	case uint16:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case fmt.Stringer:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

// isNumber reports whether v is a Go numeric value or a decimal.
func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, decimal.Decimal, *decimal.Decimal:
		return true
	}
	return false
}

// valueEquals compares two numbers by decimal value and anything else by
// deep equality.
func valueEquals(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		da, _ := toDecimal(a)
		db, _ := toDecimal(b)
		return da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}

// toInt converts integral numbers and numeric strings.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	d, ok := toDecimal(v)
	if !ok || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// stringify returns the output text of a resolved value.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case notFound:
		return ""
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	}
	return fmt.Sprint(v)
}

// sortedMapKeys returns the keys of a map value in a stable order: numeric
// keys by value, everything else by its string form.
func sortedMapKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		if da, ok := toDecimal(a.Interface()); ok && isNumber(a.Interface()) {
			if db, ok := toDecimal(b.Interface()); ok && isNumber(b.Interface()) {
				return da.Cmp(db)
			}
		}
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return keys
}

// convertKey converts k to the key type of a map. Strings are never produced
// from integers by rune conversion.
func convertKey(k any, keyType reflect.Type) (reflect.Value, bool) {
	if k == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(k)
	if v.Type().AssignableTo(keyType) {
		return v, true
	}
	if keyType.Kind() == reflect.String {
		return reflect.ValueOf(stringify(k)).Convert(keyType), true
	}
	if v.Kind() == reflect.String {
		if d, ok := toDecimal(k); ok && isIntKind(keyType.Kind()) {
			return reflect.ValueOf(d.IntPart()).Convert(keyType), true
		}
		return reflect.Value{}, false
	}
	if v.Type().ConvertibleTo(keyType) {
		return v.Convert(keyType), true
	}
	return reflect.Value{}, false
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// indirect dereferences pointers and interfaces down to a concrete value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
