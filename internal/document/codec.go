package document

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

var (
	// ErrNotAMap is returned when the document root is not a msgpack map.
	ErrNotAMap = errors.New("document root is not a map")

	// ErrMalformed is returned when an entry cannot be decoded.
	ErrMalformed = errors.New("malformed document")
)

// reservedHeaderLen is the size of a map32 header: one code byte plus a
// big-endian uint32 entry count.
const reservedHeaderLen = 5

// minEntryLen is the encoded size of the smallest possible entry.
const minEntryLen = 2

// Entry is a single name/value pair of a document.
type Entry struct {
	Name  []byte
	Value []byte
}

// readMapHeader decodes the map header at the start of doc and returns the
// entry count and the header length.
func readMapHeader(doc []byte) (count, n int, err error) {
	c := doc[0]
	switch {
	case msgpcode.IsFixedMap(c):
		return int(c & msgpcode.FixedMapMask), 1, nil
	case c == msgpcode.Map16:
		if len(doc) < 3 {
			return 0, 0, fmt.Errorf("%w: truncated map16 header", ErrMalformed)
		}
		return int(doc[1])<<8 | int(doc[2]), 3, nil
	case c == msgpcode.Map32:
		if len(doc) < reservedHeaderLen {
			return 0, 0, fmt.Errorf("%w: truncated map32 header", ErrMalformed)
		}
		return int(doc[1])<<24 | int(doc[2])<<16 | int(doc[3])<<8 | int(doc[4]), reservedHeaderLen, nil
	default:
		return 0, 0, fmt.Errorf("%w: unexpected code 0x%02x", ErrNotAMap, c)
	}
}

// stringSpan returns the bounds of the string payload whose header starts at
// off. Names must be msgpack strings.
func stringSpan(doc []byte, off int) (start, end int, err error) {
	if off >= len(doc) {
		return 0, 0, fmt.Errorf("%w: missing entry name at offset %d", ErrMalformed, off)
	}

	c := doc[off]
	var size, header int
	switch {
	case msgpcode.IsFixedString(c):
		size, header = int(c&msgpcode.FixedStrMask), 1
	case c == msgpcode.Str8:
		if off+2 > len(doc) {
			return 0, 0, fmt.Errorf("%w: truncated str8 header at offset %d", ErrMalformed, off)
		}
		size, header = int(doc[off+1]), 2
	case c == msgpcode.Str16:
		if off+3 > len(doc) {
			return 0, 0, fmt.Errorf("%w: truncated str16 header at offset %d", ErrMalformed, off)
		}
		size, header = int(doc[off+1])<<8|int(doc[off+2]), 3
	case c == msgpcode.Str32:
		if off+5 > len(doc) {
			return 0, 0, fmt.Errorf("%w: truncated str32 header at offset %d", ErrMalformed, off)
		}
		size = int(doc[off+1])<<24 | int(doc[off+2])<<16 | int(doc[off+3])<<8 | int(doc[off+4])
		header = 5
	default:
		return 0, 0, fmt.Errorf("%w: entry name at offset %d is not a string (code 0x%02x)", ErrMalformed, off, c)
	}

	start = off + header
	end = start + size
	if end > len(doc) {
		return 0, 0, fmt.Errorf("%w: entry name at offset %d exceeds document", ErrMalformed, off)
	}
	return start, end, nil
}
