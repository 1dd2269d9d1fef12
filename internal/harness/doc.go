// Package harness runs YAML scenarios against a fresh variable store.
//
// A scenario is a list of steps (scope creation, variable writes, document
// merges, temporary payloads, removals) followed by expectations on the
// resulting state. Every step runs in its own committed transaction, keys
// come from a deterministic generator, and every listener notification is
// recorded in a trace that can be compared against a golden file.
//
// Scenario files are decoded strictly (unknown keys are errors) and then
// validated against an embedded CUE schema, so a misspelled op or a missing
// required field is reported before anything runs.
package harness
