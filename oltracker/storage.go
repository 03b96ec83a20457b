package oltracker

import (
	"context"

	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
)

// Storage is the tracker's persistence surface for the mirrored EE account
// state, keyed by the OL epoch commitment whose terminal block the stored
// state was produced under.
type Storage interface {
	// EeAccountState looks up a previously-stored state by the terminal
	// block id of the epoch it was stored under. The bool is false if no
	// such state was ever stored, not an error.
	EeAccountState(ctx context.Context, terminalBlockID ids.OLBlockID) (*ledger.AccountState, bool, error)
	// StoreEeAccountState persists state keyed by epoch, the final step of
	// an extend before the in-memory tracker state is swapped.
	StoreEeAccountState(ctx context.Context, epoch ids.EpochCommitment, state ledger.AccountState) error
	// RollbackEeAccountState discards every stored state newer than epoch.
	// This is the last fallible step of a reorg before the in-memory
	// tracker state is swapped (spec §4.6, "Atomicity contract").
	RollbackEeAccountState(ctx context.Context, epoch ids.EpochCommitment) error
}
