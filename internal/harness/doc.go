// Package harness runs binding scenarios against a throwaway form database.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: add_then_remove
//	description: "Handler is added once and removed with its library"
//	entity: account
//	form: |
//	  <form><tabs /></form>
//	ids: ["{lib-1}", "{handler-1}"]
//	steps:
//	  - op: upsert_handler
//	    event: onload
//	    library: new_/account.js
//	    function: Account.onLoad
//	  - op: delete_library
//	    library: new_/account.js
//	assertions:
//	  - type: library_count
//	    count: 0
//
// # Steps
//
//   - upsert_library: register a library
//   - upsert_handler: register a library and bind a handler to an event
//   - delete_library: remove a library and every handler bound to it
//   - delete_handler: remove handlers of a library on one event
//
// A step with expect_error must fail with that error code
// (invalid_argument, missing_structure or malformed_document).
//
// # Assertion Types
//
//   - library_count: number of registered libraries
//   - handler_count: number of handlers, optionally narrowed by event and library
//   - library_id: libraryUniqueId of a library
//   - handler_id: handlerUniqueId of a handler
//   - publish_count: number of publications of the entity
//
// # Deterministic Testing
//
// Every run opens a fresh in-memory store, imports the scenario form and
// applies each step through forms.Processor. New unique ids come from the
// scenario's ids list in order, or from testutil.SequentialIDs when the list
// is empty, so the final XML is reproducible for golden comparison.
package harness
