package observable

// Status reports how a watched State is tracking its source.
type Status int32

const (
	// StatusIdle indicates Watch has not been called.
	StatusIdle Status = iota

	// StatusSynced indicates the last patch from the source was applied.
	StatusSynced

	// StatusDegraded indicates the last patch failed. The record keeps the
	// values of the last successful patch.
	StatusDegraded

	// StatusUnsynced indicates no patch from the source has ever applied.
	// The record still holds its initial values.
	StatusUnsynced
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSynced:
		return "synced"
	case StatusDegraded:
		return "degraded"
	case StatusUnsynced:
		return "unsynced"
	default:
		return "unknown"
	}
}
