package document

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/vmihailenco/msgpack/v5"
)

// Indexed is a read-only view over an encoded document.
type Indexed struct {
	doc    []byte
	count  int
	offset int
	err    error
}

// Index validates the header of doc. A zero-length doc is treated as an empty
// document. Entry content is validated lazily while iterating.
func Index(doc []byte) (*Indexed, error) {
	if len(doc) == 0 {
		return &Indexed{}, nil
	}

	count, n, err := readMapHeader(doc)
	if err != nil {
		return nil, err
	}
	// An entry takes at least two bytes: an empty fixstr name and a fixint value.
	if count > (len(doc)-n)/minEntryLen {
		return nil, fmt.Errorf("%w: header declares %d entries in %d bytes", ErrMalformed, count, len(doc)-n)
	}
	return &Indexed{doc: doc, count: count, offset: n}, nil
}

// IsEmpty reports whether the document declares no entries.
func (d *Indexed) IsEmpty() bool {
	return d.count == 0
}

// Len returns the entry count declared by the header.
func (d *Indexed) Len() int {
	return d.count
}

// All yields name/value views in document order. The sequence can be ranged
// over repeatedly; each pass rescans the source buffer. A decoding failure
// ends the sequence early and is reported by Err.
func (d *Indexed) All() iter.Seq2[[]byte, []byte] {
	return func(yield func(name, value []byte) bool) {
		d.err = d.scan(yield)
	}
}

// Err returns the decoding error of the most recent pass over All.
func (d *Indexed) Err() error {
	return d.err
}

// Entries decodes every entry. Names and values alias the indexed buffer.
func (d *Indexed) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, d.count)
	err := d.scan(func(name, value []byte) bool {
		entries = append(entries, Entry{Name: name, Value: value})
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *Indexed) scan(yield func(name, value []byte) bool) error {
	if d.count == 0 {
		return nil
	}

	r := bytes.NewReader(d.doc)
	dec := msgpack.NewDecoder(r)
	off := d.offset

	for i := 0; i < d.count; i++ {
		nameStart, nameEnd, err := stringSpan(d.doc, off)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		if _, err := r.Seek(int64(nameEnd), io.SeekStart); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		if err := dec.Skip(); err != nil {
			return fmt.Errorf("%w: value of entry %d: %v", ErrMalformed, i, err)
		}
		valueEnd := int(r.Size()) - r.Len()

		name := d.doc[nameStart:nameEnd:nameEnd]
		value := d.doc[nameEnd:valueEnd:valueEnd]
		if !yield(name, value) {
			return nil
		}
		off = valueEnd
	}
	return nil
}
