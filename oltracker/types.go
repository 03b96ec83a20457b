// Package oltracker implements the OL tracker task: a long-running loop
// that polls a remote OL (Orchestration Layer) chain and keeps a local
// mirror of one execution-environment account's state in lock-step with
// it, per spec §4.6. It never touches the STF's ledger or MMR directly —
// it is surrounding infrastructure, not the state transition function
// itself (spec §5).
package oltracker

import (
	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/ids"
)

// ChainStatus is the remote OL chain's reported head commitments.
type ChainStatus struct {
	Latest    ids.OLBlockCommitment
	Confirmed ids.EpochCommitment
	Finalized ids.EpochCommitment
}

// EpochSummary is one epoch's worth of remote chain data: the epoch it
// terminates, the epoch it must chain from, and the ordered account
// update operations that epoch committed.
type EpochSummary struct {
	Epoch     ids.EpochCommitment
	PrevEpoch ids.EpochCommitment
	Updates   []block.SnarkUpdateData
}
