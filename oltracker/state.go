package oltracker

import (
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
)

// State is the tracker's in-memory view: the mirrored EE account state as
// of the last epoch it accepted, plus the remote chain status that
// accompanied it (used to answer status watchers without re-polling).
type State struct {
	bestOLEpoch ids.EpochCommitment
	bestEEState ledger.AccountState
	status      ChainStatus
}

// NewState seeds a tracker state at epoch with the given EE account state
// and remote chain status.
func NewState(epoch ids.EpochCommitment, eeState ledger.AccountState, status ChainStatus) State {
	return State{bestOLEpoch: epoch, bestEEState: eeState, status: status}
}

// BestOLEpoch returns the epoch commitment this state was last extended to.
func (s State) BestOLEpoch() ids.EpochCommitment { return s.bestOLEpoch }

// BestEEState returns the mirrored EE account state at BestOLEpoch.
func (s State) BestEEState() ledger.AccountState { return s.bestEEState }

// OLStatus returns the remote chain status last observed when this state
// was built.
func (s State) OLStatus() ChainStatus { return s.status }

// buildTrackerState constructs the next tracker state in memory from a
// freshly-applied EE account state, the epoch it now sits at, and the
// remote status that triggered the extension or reorg (spec §4.6, extend
// step 2 / reorg step 4: "build the next tracker state" always happens
// before any persistence so a failure here leaves everything untouched).
func buildTrackerState(epoch ids.EpochCommitment, eeState ledger.AccountState, status ChainStatus) State {
	return NewState(epoch, eeState, status)
}
