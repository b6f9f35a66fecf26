package observable

import "github.com/zoobzio/capitan"

// Field keys for State events.
var (
	// KeyInstance is the ID of the State that emitted the event.
	KeyInstance = capitan.NewStringKey("instance")

	// KeyField is the name of the field involved.
	KeyField = capitan.NewStringKey("field")

	// KeyValue is the written value, formatted with fmt.Sprint.
	KeyValue = capitan.NewStringKey("value")

	// KeyType is the record type held by the State.
	KeyType = capitan.NewStringKey("type")

	// KeyFields is a field count: the schema size on creation, the number
	// of changed fields on a patch.
	KeyFields = capitan.NewIntKey("fields")

	// KeyStage is the patch pipeline stage that failed: "decode", "validate" or "commit".
	KeyStage = capitan.NewStringKey("stage")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyStatus is the watch status when the watch loop stops.
	KeyStatus = capitan.NewStringKey("status")

	// KeyOldStatus is the watch status before a transition.
	KeyOldStatus = capitan.NewStringKey("old_status")

	// KeyNewStatus is the watch status after a transition.
	KeyNewStatus = capitan.NewStringKey("new_status")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyWatcherType is the type name of the watcher implementation.
	KeyWatcherType = capitan.NewStringKey("watcher_type")
)
