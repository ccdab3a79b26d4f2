// Package harness runs scripted character sessions as conformance tests.
//
// A scenario starts from a base memo, runs apply, check, undo and redo
// steps against an event source persisted in an in-memory store, and then
// checks the outcome of every step, the active log and the final memo.
//
// # Scenario Format
//
//	name: solar_session
//	description: "Exalting a mortal and learning a charm"
//	character: Harmonious Jade
//	steps:
//	  - apply:
//	      type: set_ability
//	      payload: {ability: war, dots: 3}
//	  - apply:
//	      type: spend_motes
//	      payload: {first: peripheral, amount: 1}
//	    expect:
//	      rejected: EXALT_ONLY
//	  - undo: true
//	  - redo: true
//	assertions:
//	  - type: log_count
//	    mutation: set_ability
//	    count: 1
//	  - type: final_state
//	    path: abilities.war.dots
//	    equals: 3
//
// # Assertion Types
//
//   - log_contains: the active log contains a mutation type
//   - log_order: mutation types appear in the active log in order
//   - log_count: a mutation type appears exactly N times
//   - cursor: the final cursor
//   - final_state: the memo value at a dotted path, or its absence
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite database and fills missing
// commitment and merit IDs from a counter, so traces are identical across
// runs. After the last step the stored log is replayed and must reproduce
// the stored snapshot.
package harness
