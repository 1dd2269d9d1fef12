// Package variable stores and resolves variables bound to the nested scopes of
// a running workflow instance.
//
// Scopes form a forest through child => parent links registered with
// CreateScope. Lookups walk from a scope towards its root and the nearest
// declaration wins; exports shadow outer declarations the same way. Bulk
// imports through SetVariablesFromDocument update the nearest scope that
// already declares a name and declare the remaining names at the topmost
// scope of the chain.
//
// Values are opaque encoded bytes. Names are compared byte for byte.
//
// All reads and writes go through the caller's store.TransactionContext. The
// State never commits; a multi-scope import is atomic only because the caller
// commits the surrounding transaction as one unit.
package variable
