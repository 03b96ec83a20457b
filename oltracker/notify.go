package oltracker

// Notifier is how the tracker publishes a successfully-applied state to
// the rest of the process (status RPCs, consensus-head watchers). Both
// calls happen only after a successful apply/rollback (spec §5,
// "Ordering guarantee").
type Notifier interface {
	NotifyOLStatusUpdate(State)
	NotifyConsensusUpdate(State)
}

// NopNotifier discards every notification. Useful for tests and for
// callers that poll State directly instead of subscribing to updates.
type NopNotifier struct{}

func (NopNotifier) NotifyOLStatusUpdate(State)  {}
func (NopNotifier) NotifyConsensusUpdate(State) {}
