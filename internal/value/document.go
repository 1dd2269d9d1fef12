package value

import (
	"errors"
	"fmt"

	"github.com/roach88/varstate/internal/document"
)

// ErrNotAnObject is returned when document input is not a JSON object.
var ErrNotAnObject = errors.New("document must be an object")

// DocumentFromJSON encodes a JSON object as a document. Entries are written
// in sorted name order.
func DocumentFromJSON(data []byte) ([]byte, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("document from json: %w, got %T", ErrNotAnObject, v)
	}
	return DocumentFromObject(obj)
}

// DocumentFromNative encodes a decoded map (for example from YAML) as a
// document.
func DocumentFromNative(m map[string]any) ([]byte, error) {
	obj := make(Object, len(m))
	for k, elem := range m {
		v, err := FromNative(elem)
		if err != nil {
			return nil, fmt.Errorf("document entry %q: %w", k, err)
		}
		obj[k] = v
	}
	return DocumentFromObject(obj)
}

// DocumentFromObject encodes obj as a document, one entry per key.
func DocumentFromObject(obj Object) ([]byte, error) {
	w := document.NewWriter()
	for _, k := range obj.SortedKeys() {
		raw, err := Encode(obj[k])
		if err != nil {
			return nil, fmt.Errorf("document entry %q: %w", k, err)
		}
		if err := w.WriteEntry([]byte(k), raw); err != nil {
			return nil, fmt.Errorf("document entry %q: %w", k, err)
		}
	}
	return w.Finish(), nil
}

// DocumentToObject decodes every entry of doc. A name occurring twice keeps
// its last value.
func DocumentToObject(doc []byte) (Object, error) {
	indexed, err := document.Index(doc)
	if err != nil {
		return nil, fmt.Errorf("document to object: %w", err)
	}

	obj := make(Object, indexed.Len())
	for name, raw := range indexed.All() {
		v, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("document entry %q: %w", name, err)
		}
		obj[string(name)] = v
	}
	if err := indexed.Err(); err != nil {
		return nil, fmt.Errorf("document to object: %w", err)
	}
	return obj, nil
}

// DocumentToJSON renders doc as one canonical JSON object.
func DocumentToJSON(doc []byte) ([]byte, error) {
	obj, err := DocumentToObject(doc)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(obj)
}
