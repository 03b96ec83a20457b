// Package stf implements the state transition function: process_block from
// spec §4.4. ProcessBlock is synchronous, single-threaded and free of I/O —
// every collaborator it touches is a plain in-memory value, never a
// suspending call, so the function can serve as the pre-image of a future
// SNARK circuit (spec §5).
package stf

import (
	"github.com/olrollup/ol-stf/asm"
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/chain"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/state"
	"github.com/olrollup/ol-stf/txn"
	"github.com/olrollup/ol-stf/xhash"
)

// ProcessBlockResult is process_block's success output: the state root
// computed from the accessor after every transaction in the block has been
// applied.
type ProcessBlockResult struct {
	ComputedStateRoot xhash.Hash
}

// ProcessBlock validates blk against parent and params, applies its effects
// to accessor, and returns the resulting state root. It never checks
// blk.Header.StateRoot against the computed root itself — see DESIGN.md's
// "state-root equality check" decision — callers that want reject-on-
// mismatch semantics should call ProcessAndVerifyBlock instead.
//
// On any returned error, accessor and its ledger are left exactly as found:
// every check in steps 1-3 below runs before any mutation, and every
// transaction applied by txn.Apply* is itself all-or-nothing.
func ProcessBlock(parentHeader block.Header, blk block.Block, params chain.Params, accessor state.Accessor, verifier txn.ProofVerifier) (ProcessBlockResult, error) {
	if err := checkHeaderChain(parentHeader, blk.Header); err != nil {
		return ProcessBlockResult{}, err
	}
	if err := checkBodyRoot(blk); err != nil {
		return ProcessBlockResult{}, err
	}

	// 4. Update global counters.
	accessor.SetCurSlot(blk.Header.Slot)
	accessor.SetCurEpoch(blk.Header.Epoch)

	// 5. Absorb L1 update, if present.
	if blk.Body.L1Update != nil {
		if err := absorbL1Update(*blk.Body.L1Update, params, accessor); err != nil {
			return ProcessBlockResult{}, err
		}
	}

	// 6. Apply transactions in order.
	for _, tx := range blk.Body.Transactions {
		if err := applyTx(tx, accessor, verifier); err != nil {
			return ProcessBlockResult{}, err
		}
	}

	// 7. Compute root.
	root := accessor.ComputeStateRoot()
	accessor.SetAccountsRoot(accessor.LedgerRoot())

	return ProcessBlockResult{ComputedStateRoot: root}, nil
}

// ProcessAndVerifyBlock is the production-policy wrapper around
// ProcessBlock: it additionally rejects the block with
// *StateRootMismatchError if the computed root disagrees with
// blk.Header.StateRoot (see DESIGN.md, "state-root equality check").
// cmd/stfdemo produces its own blocks and calls ProcessBlock instead.
func ProcessAndVerifyBlock(parentHeader block.Header, blk block.Block, params chain.Params, accessor state.Accessor, verifier txn.ProofVerifier) (ProcessBlockResult, error) {
	result, err := ProcessBlock(parentHeader, blk, params, accessor, verifier)
	if err != nil {
		return ProcessBlockResult{}, err
	}
	if result.ComputedStateRoot != blk.Header.StateRoot {
		return ProcessBlockResult{}, &StateRootMismatchError{Expected: blk.Header.StateRoot, Actual: result.ComputedStateRoot}
	}
	return result, nil
}

// checkHeaderChain implements spec §4.4 step 1 and the timestamp check of
// step 3 (grouped here since both are pure header-vs-header comparisons).
func checkHeaderChain(parent, header block.Header) error {
	parentID := parent.ID()
	if header.Parent != parentID {
		return &ParentMismatchError{Expected: parentID, Got: header.Parent}
	}
	if header.Slot != parent.Slot+1 {
		return &SlotRegressionError{ParentSlot: parent.Slot, BlockSlot: header.Slot}
	}
	if header.Epoch < parent.Epoch {
		return &EpochRegressionError{ParentEpoch: parent.Epoch, BlockEpoch: header.Epoch}
	}
	if header.Timestamp <= parent.Timestamp {
		return &TimestampRegressionError{ParentTimestamp: parent.Timestamp, BlockTimestamp: header.Timestamp}
	}
	return nil
}

// checkBodyRoot implements spec §4.4 step 2.
func checkBodyRoot(blk block.Block) error {
	computed := blk.Body.Root()
	if blk.Header.BodyRoot != computed {
		return &BodyRootMismatchError{Expected: blk.Header.BodyRoot, Actual: computed}
	}
	return nil
}

// absorbL1Update implements spec §4.4 step 5: height monotonicity, manifest
// appends to the ASM MMR, and deposit-log balance credits (creating the
// target account under policy if its ee_id resolves to an unknown id).
func absorbL1Update(update block.L1Update, params chain.Params, accessor state.Accessor) error {
	currentHeight := uint64(accessor.LastL1().Height)
	if update.NewL1Height <= currentHeight {
		return &L1HeightRegressionError{CurrentHeight: currentHeight, NewHeight: update.NewL1Height}
	}

	var lastManifestID ids.L1BlockID
	for _, manifest := range update.Manifests {
		accessor.AppendManifest(manifest.Hash())
		lastManifestID = manifest.L1BlockID

		for _, log := range manifest.Logs {
			deposit, ok := log.(asm.DepositLog)
			if !ok {
				continue
			}
			if err := absorbDeposit(deposit, params, accessor); err != nil {
				return err
			}
		}
	}

	newHeight, err := uint32FromHeight(update.NewL1Height)
	if err != nil {
		return err
	}
	commitment, err := ids.NewL1BlockCommitment(newHeight, lastManifestID)
	if err != nil {
		return err
	}
	accessor.SetLastL1(commitment)
	return nil
}

func uint32FromHeight(h uint64) (uint32, error) {
	if h >= uint64(ids.MaxL1Height) {
		return 0, &ids.InvalidL1HeightError{Height: uint32(h)}
	}
	return uint32(h), nil
}

// absorbDeposit credits a deposit's target account, creating it first under
// policy if its ee_id is unknown (spec §4.4 step 5, SPEC_FULL §C.5).
func absorbDeposit(deposit asm.DepositLog, params chain.Params, accessor state.Accessor) error {
	targetID := asm.DeriveAccountID(deposit.EeID)

	if _, ok := accessor.GetAccountState(targetID); !ok {
		if !params.AllowDepositAutocreate {
			return &UnknownDepositTargetError{AccountID: targetID}
		}
		if _, err := accessor.CreateNewAccount(targetID, ledger.AccountState{
			Balance: 0,
			Type:    ledger.AccountTypeSnark,
			Snark:   &ledger.SnarkState{},
		}); err != nil {
			return err
		}
	}

	if err := accessor.UpdateAccount(targetID, func(a *ledger.AccountState) error {
		newBal, err := bitcoinamount.Add(a.Balance, deposit.Amount)
		if err != nil {
			return err
		}
		a.Balance = newBal
		return nil
	}); err != nil {
		return err
	}

	newTotal, err := bitcoinamount.Add(accessor.TotalLedgerBalance(), deposit.Amount)
	if err != nil {
		return err
	}
	accessor.SetTotalLedgerBalance(newTotal)
	return nil
}

// applyTx dispatches a single body transaction to its kind-specific
// semantics (spec §4.4 step 6, §4.3).
func applyTx(tx block.Tx, accessor state.Accessor, verifier txn.ProofVerifier) error {
	switch {
	case tx.SnarkAccountUpdate != nil:
		return txn.ApplySnarkAccountUpdate(accessor, tx.SnarkAccountUpdate.Target, *tx.SnarkAccountUpdate, verifier)
	case tx.CreateAccount != nil:
		return txn.ApplyCreateAccount(accessor, *tx.CreateAccount)
	default:
		return &UnsupportedError{Op: "empty transaction"}
	}
}
