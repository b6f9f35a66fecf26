package observable

import "time"

// MetricsProvider receives callbacks on State activity for integration with
// Prometheus, StatsD and similar systems.
type MetricsProvider interface {
	// OnFieldChanged is called after a field value is stored.
	OnFieldChanged(field string)

	// OnObserverNotified is called after a field's observer returns.
	OnObserverNotified(field string)

	// OnPatchApplied is called when Apply commits. Changed is the number of
	// fields whose value differed.
	OnPatchApplied(changed int, duration time.Duration)

	// OnPatchFailed is called when Apply rejects a document. Stage is
	// "decode" or "validate".
	OnPatchFailed(stage string, duration time.Duration)

	// OnStatusChange is called when the watch status transitions.
	OnStatusChange(from, to Status)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Embed it to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnFieldChanged(_ string)                 {}
func (NoOpMetricsProvider) OnObserverNotified(_ string)             {}
func (NoOpMetricsProvider) OnPatchApplied(_ int, _ time.Duration)   {}
func (NoOpMetricsProvider) OnPatchFailed(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnStatusChange(_, _ Status)              {}
