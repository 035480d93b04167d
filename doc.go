// Package jsondo is the Composition Root for jsondo.
//
// jsondo edits a single JSON document on disk in response to events. An
// event names a dotted path, an action and its parameters:
//
//	{"path": "lights.kitchen", "todo": "insert", "value": {"on": true}}
//
// Actions:
//
//   - init: create an empty mapping at the path unless something is there.
//   - delete: remove the key, or with "keep" truncate a list to its first N items.
//   - insert: set the value, creating intermediate mappings.
//   - sort: sort a list, by "sort_by" for lists of objects, "asc" or "desc".
//
// Each event is a full read-modify-write of the file. Missing paths on
// delete and sort are silent no-ops; bad input is logged and dropped, never
// raised.
//
// Usage:
//
//	svc, err := jsondo.New("/config/json_storage.json",
//		jsondo.WithLogger(logger),
//	)
//
//	// Listen for json_do events on a bus
//	b := jsondo.NewBus(0, logger)
//	remove := svc.Listen(b)
//	defer remove()
package jsondo
