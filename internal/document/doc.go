// Package document implements the binary variable document exchanged between
// the engine and the variable store.
//
// A document is a msgpack map from variable name (msgpack string) to variable
// value (any single msgpack object). Values are opaque: the codec only measures
// the byte span a value declares for itself and never interprets it.
//
// # Writing
//
// Writer reserves a fixed-width map32 header before any entry is written and
// back-patches the entry count once the producer is done. Producers can filter
// or deduplicate entries while traversing without a second pass over the
// buffer.
//
// # Reading
//
// Index validates the map header and answers IsEmpty from the header alone.
// Entries are exposed as zero-copy views into the source buffer; the views are
// only valid as long as the caller keeps that buffer unchanged.
package document
