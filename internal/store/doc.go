// Package store provides SQLite-backed persistence for character histories.
//
// Each character is stored as:
//   - a base memo and its canonical hash (characters)
//   - the full mutation log, including undone mutations past the cursor (mutations)
//   - the memo at the cursor and its canonical hash (snapshots)
//
// The log is authoritative. The snapshot is a cache used to detect replay
// drift: replaying the base through log[:cursor] must reproduce the
// snapshot hash exactly.
//
// Mutation IDs are content addressed over (character_id, seq, type, payload)
// using canonical JSON and domain-separated SHA-256 (see internal/canonical).
// Saving a history compares IDs to find the first divergent sequence and
// rewrites the log from there, so an apply after undo replaces the old redo
// tail atomically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Cascade deletes from characters
package store
