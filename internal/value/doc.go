// Package value converts between the opaque msgpack values held by the
// variable store and JSON.
//
// The store never looks inside a value. This package is used only at the
// edges: the CLI parses JSON input into encoded values and renders stored
// values back, and the harness renders traces for golden comparison.
//
// Rendering is canonical (RFC 8785): object keys are ordered by UTF-16 code
// units, strings are NFC-normalized and nothing is HTML-escaped, so equal
// values always render to identical bytes.
package value
