package observable

import "github.com/zoobzio/capitan"

// State lifecycle signals.
var (
	// StateCreated is emitted when New builds a State.
	StateCreated = capitan.NewSignal(
		"observable.state.created",
		"Observable state created",
	)

	// FieldChanged is emitted after a field value is stored.
	FieldChanged = capitan.NewSignal(
		"observable.field.changed",
		"Field value written",
	)

	// ObserverAttached is emitted when the first observer is attached to a field.
	ObserverAttached = capitan.NewSignal(
		"observable.observer.attached",
		"Observer attached to field",
	)

	// ObserverReplaced is emitted when Attach replaces an existing observer.
	ObserverReplaced = capitan.NewSignal(
		"observable.observer.replaced",
		"Observer replaced on field",
	)
)

// Patch signals.
var (
	// PatchApplied is emitted when Apply commits a document.
	PatchApplied = capitan.NewSignal(
		"observable.patch.applied",
		"Patch applied to state",
	)

	// PatchFailed is emitted when Apply rejects a document.
	PatchFailed = capitan.NewSignal(
		"observable.patch.failed",
		"Patch rejected",
	)
)

// Watch signals.
var (
	// WatchStarted is emitted when a State begins watching a source.
	WatchStarted = capitan.NewSignal(
		"observable.watch.started",
		"State watching started",
	)

	// WatchStopped is emitted when the watch loop exits.
	WatchStopped = capitan.NewSignal(
		"observable.watch.stopped",
		"State watching stopped",
	)

	// WatchStatusChanged is emitted when the watch status transitions.
	WatchStatusChanged = capitan.NewSignal(
		"observable.watch.status.changed",
		"Watch status transition",
	)
)
