package value

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrTrailingData is returned by Decode when raw holds more than one value.
var ErrTrailingData = errors.New("trailing data after value")

// Decode decodes one msgpack value.
func Decode(raw []byte) (Value, error) {
	r := bytes.NewReader(raw)
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)

	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("decode value: %w (%d bytes)", ErrTrailingData, r.Len())
	}
	return FromNative(v)
}

// Encode encodes v as msgpack. Object keys are written in sorted order so
// equal values always encode to equal bytes.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encode(enc, v); err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return buf.Bytes(), nil
}

func encode(enc *msgpack.Encoder, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		return enc.EncodeNil()
	case String:
		return enc.EncodeString(string(val))
	case Int:
		return enc.EncodeInt(int64(val))
	case Float:
		return enc.EncodeFloat64(float64(val))
	case Bool:
		return enc.EncodeBool(bool(val))
	case Binary:
		return enc.EncodeBytes(val)
	case Array:
		if err := enc.EncodeArrayLen(len(val)); err != nil {
			return err
		}
		for i, elem := range val {
			if err := encode(enc, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		return nil
	case Object:
		if err := enc.EncodeMapLen(len(val)); err != nil {
			return err
		}
		for _, k := range val.SortedKeys() {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encode(enc, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

// FromNative converts the output of a generic decoder (msgpack, JSON with
// UseNumber, YAML) into a Value.
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val)), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case []byte:
		return Binary(bytes.Clone(val)), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	case map[any]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v: keys must be strings, got %T", k, k)
			}
			conv, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj[key] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(u)
	}
	return Int(u)
}
