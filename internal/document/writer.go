package document

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Writer builds a document entry by entry. The map header is reserved up front
// and patched by Finish, so the final count never has to be known in advance.
//
// A Writer is reusable across documents via Reset and is not safe for
// concurrent use.
type Writer struct {
	buf   bytes.Buffer
	enc   *msgpack.Encoder
	count int
}

// NewWriter returns a Writer ready for the first entry.
func NewWriter() *Writer {
	w := &Writer{}
	w.enc = msgpack.NewEncoder(&w.buf)
	w.Reset()
	return w
}

// Reset discards all written entries and reserves a fresh header.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.count = 0
	var header [reservedHeaderLen]byte
	w.buf.Write(header[:])
}

// WriteEntry appends name as a msgpack string followed by the already encoded
// value bytes.
func (w *Writer) WriteEntry(name, value []byte) error {
	if err := w.enc.EncodeString(string(name)); err != nil {
		return fmt.Errorf("write entry %q: %w", name, err)
	}
	w.buf.Write(value)
	w.count++
	return nil
}

// Count returns the number of entries written since the last Reset.
func (w *Writer) Count() int {
	return w.count
}

// Finish patches the reserved header with the entry count and returns a copy
// of the encoded document. The Writer keeps its contents until Reset.
func (w *Writer) Finish() []byte {
	b := w.buf.Bytes()
	b[0] = msgpcode.Map32
	binary.BigEndian.PutUint32(b[1:reservedHeaderLen], uint32(w.count))
	return bytes.Clone(b)
}

// Encode writes entries in order into a new document.
func Encode(entries ...Entry) ([]byte, error) {
	w := NewWriter()
	for _, e := range entries {
		if err := w.WriteEntry(e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	return w.Finish(), nil
}

// Empty returns an encoded document without entries.
func Empty() []byte {
	return NewWriter().Finish()
}
