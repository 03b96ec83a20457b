package oltracker

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/ledger"
)

// applyUpdateOperationUnconditionally folds one committed SNARK account
// update into the mirrored EE account state without re-validating seqno,
// inbox proofs or witness — this path only ever runs over operations the
// remote OL chain has already finalized, so they are ground truth (spec
// §4.6, "this path is post-consensus and is the ground truth").
func applyUpdateOperationUnconditionally(state *ledger.AccountState, op block.SnarkUpdateData) error {
	var outbound []bitcoinamount.Amount
	for _, t := range op.OutputTransfers {
		outbound = append(outbound, t.Amount)
	}
	for _, m := range op.OutputMessages {
		outbound = append(outbound, m.Value)
	}
	totalOut, err := bitcoinamount.SumChecked(outbound...)
	if err != nil {
		return err
	}
	newBalance, err := bitcoinamount.Sub(state.Balance, totalOut)
	if err != nil {
		return err
	}

	state.Balance = newBalance
	if state.Snark != nil {
		state.Snark.Seqno = op.SeqNo + 1
		state.Snark.NextInboxMsgIdx = op.NewNextInboxMsgIdx
		state.Snark.InnerStateRoot = op.NewInnerStateRoot
	}
	return nil
}

// applyEpochOperations applies every operation committed by one epoch, in
// order, to state.
func applyEpochOperations(state *ledger.AccountState, operations []block.SnarkUpdateData) error {
	for _, op := range operations {
		if err := applyUpdateOperationUnconditionally(state, op); err != nil {
			return err
		}
	}
	return nil
}
