package value

import (
	"slices"
	"unicode/utf16"
)

// Value is a decoded variable value. Only the types in this package
// implement it.
type Value interface {
	value()
}

// Null is the nil value.
type Null struct{}

// String is a UTF-8 string.
type String string

// Int is a signed integer. Unsigned msgpack integers above MaxInt64 decode
// as Float.
type Int int64

// Float is a 64-bit float.
type Float float64

// Bool is a boolean.
type Bool bool

// Binary is a msgpack bin payload. It renders as a base64 string.
type Binary []byte

// Array is an ordered list of values.
type Array []Value

// Object maps string keys to values. Use SortedKeys for deterministic
// iteration.
type Object map[string]Value

func (Null) value()   {}
func (String) value() {}
func (Int) value()    {}
func (Float) value()  {}
func (Bool) value()   {}
func (Binary) value() {}
func (Array) value()  {}
func (Object) value() {}

// SortedKeys returns the keys of obj in RFC 8785 order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// compareKeys orders by UTF-16 code units, which differs from Go's UTF-8
// byte order for characters outside the BMP.
func compareKeys(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
