// Package manifest loads declarative script binding manifests written in CUE.
//
// A manifest names an entity, the kinds of forms to touch and the bindings
// that should exist or be removed:
//
//	entity: "lead"
//	forms: ["main", "quickcreate"]
//	handlers: [{
//		event:    "onload"
//		library:  "new_/scripts/lead.js"
//		function: "Lead.onLoad"
//	}]
//	remove: [{library: "new_/scripts/legacy.js"}]
//
// Files are unified with the embedded #Manifest schema, so unknown fields,
// unknown event names and empty names are rejected with CUE positions.
// Handlers default to parameters "", passExecutionContext true and
// enabled true.
package manifest
