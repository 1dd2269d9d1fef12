// Package store provides the SQLite-backed substrate for variable state.
//
// The substrate exposes independent key ranges as WITHOUT ROWID tables:
//   - scope_parents: child scope key => parent scope key
//   - variables: (scope key, name) => variable key and value
//   - temporary_variables: scope key => raw payload
//   - key_generator: partition id => next key counter
//
// It also owns the append-only variable_events log written by the exporter.
//
// # Transactions
//
// Components never commit or roll back. They issue statements through
// TransactionContext.Querier, and the caller decides the unit of atomicity
// with TransactionContext.Run. A failure inside Run rolls back every write
// made by every component during that call.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
