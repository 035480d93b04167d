package integration

import "github.com/aretw0/jsondo/pkg/core"

const (
	// Domain identifies the integration.
	Domain = "json_storage"
	// Title is the name given to created entries.
	Title = "JSON Storage"

	// ConfStoragePath is the only configuration key.
	ConfStoragePath = "storage_path"
	// DefaultStoragePath is offered when the user does not pick a path.
	DefaultStoragePath = "/config/json_storage.json"

	// EventJSONDo is the event the integration listens for.
	EventJSONDo = core.EventJSONDo
)

// Actions lists the accepted "todo" values.
var Actions = []core.Todo{core.TodoInit, core.TodoDelete, core.TodoInsert, core.TodoSort}
