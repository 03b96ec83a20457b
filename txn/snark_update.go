// Package txn implements per-transaction-kind validation and effect: the
// SNARK-account-update semantics of spec §4.3 and plain account creation.
// Every exported Apply* function is the all-or-nothing transactional unit
// the STF driver calls once per body transaction — on any error the state
// accessor passed in must be left exactly as it was found.
package txn

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/state"
	"github.com/olrollup/ol-stf/xhash"
)

// ProofVerifier checks a SNARK account update's witness against the
// account's verifier key. Production implementations wrap a real proof
// system; NopVerifier below accepts everything and exists only for
// native/test mode, per spec §4.3 step 8's explicit allowance.
type ProofVerifier interface {
	VerifyAccountUpdate(vk []byte, data block.SnarkUpdateData, witness []byte) bool
}

// NopVerifier accepts every witness. Callers choose it explicitly (the tests
// and cmd/stfdemo do); chain.Params.NativeExecution does not select it.
// Production callers must supply a real verifier.
type NopVerifier struct{}

// VerifyAccountUpdate always reports success.
func (NopVerifier) VerifyAccountUpdate(vk []byte, data block.SnarkUpdateData, witness []byte) bool {
	return true
}

func entryHash(entry []byte) xhash.Hash {
	return xhash.TreeHash(entry)
}

// ApplySnarkAccountUpdate executes spec §4.3 steps 1-8 against accessor.
// Every read and intermediate computation happens before the first mutating
// call, so a returned error leaves accessor untouched.
func ApplySnarkAccountUpdate(accessor state.Accessor, target ledger.AccountID, tx block.SnarkAccountUpdateTx, verifier ProofVerifier) error {
	account, ok := accessor.GetAccountState(target)
	if !ok {
		return &ledger.AccountNotFoundError{AccountID: target}
	}
	if account.Type != ledger.AccountTypeSnark || account.Snark == nil {
		return &ledger.WrongAccountTypeError{AccountID: target, Expected: ledger.AccountTypeSnark, Actual: account.Type}
	}

	data := tx.Data

	// 2. Sequence number.
	if data.SeqNo != account.Snark.Seqno {
		return &ledger.SeqMismatchError{Expected: account.Snark.Seqno, Got: data.SeqNo}
	}

	// 3. Inbox consumption.
	start := account.Snark.NextInboxMsgIdx
	n := uint64(len(data.ProcessedMsgs))
	for k, msg := range data.ProcessedMsgs {
		idx := start + uint64(k)
		leaf, ok := accessor.InboxLeafAtIndex(target, idx)
		if !ok {
			return &InboxLeafNotFoundError{AccountID: target, Idx: idx}
		}
		if leaf != entryHash(msg.Entry) {
			return &InboxMismatchError{AccountID: target, Idx: idx}
		}
	}
	nextInboxMsgIdx := start + n
	if data.NewNextInboxMsgIdx != nextInboxMsgIdx {
		return &InboxMismatchError{AccountID: target, Idx: data.NewNextInboxMsgIdx}
	}

	// 4. Ledger (ASM) references.
	for _, ref := range data.LedgerRefs {
		leaf, ok := accessor.ASMLeafAtIndex(ref.Idx)
		if !ok {
			return &L1HeaderLeafNotFoundError{Idx: ref.Idx}
		}
		if leaf != ref.Hash {
			return &L1HeaderHashMismatchError{Idx: ref.Idx, Claimed: ref.Hash, Recorded: leaf}
		}
	}

	// 5. Outbound transfers: sum with checked arithmetic. Self-directed
	// transfers/messages are excluded: a transfer to self is a no-op beyond
	// the sequence increment (spec §4.3 step 5) and must not reduce the
	// sender's balance.
	totalOut, err := sumTransferValues(target, data.OutputTransfers, data.OutputMessages)
	if err != nil {
		return err
	}
	if totalOut > account.Balance {
		return &bitcoinamount.InsufficientBalanceError{Requested: totalOut, Available: account.Balance}
	}

	// Destinations must exist, and the total credit landing on each one must
	// not overflow its balance; verify both before mutating anything (a
	// missing destination rejects the whole block, per spec §4.3 step 5).
	// Transfers and messages bound for the same destination are summed
	// first so commit applies one checked credit per destination.
	credits := make(map[ledger.AccountID]bitcoinamount.Amount)
	destOrder := make([]ledger.AccountID, 0, len(data.OutputTransfers)+len(data.OutputMessages))
	addCredit := func(to ledger.AccountID, amount bitcoinamount.Amount) error {
		if to == target {
			return nil // self-transfer/message: no separate destination accounting
		}
		cur, seen := credits[to]
		if !seen {
			destOrder = append(destOrder, to)
		}
		sum, err := bitcoinamount.Add(cur, amount)
		if err != nil {
			return err
		}
		credits[to] = sum
		return nil
	}
	for _, out := range data.OutputTransfers {
		if err := addCredit(out.To, out.Amount); err != nil {
			return err
		}
	}
	for _, msg := range data.OutputMessages {
		if err := addCredit(msg.To, msg.Value); err != nil {
			return err
		}
	}
	for _, to := range destOrder {
		dest, ok := accessor.GetAccountState(to)
		if !ok {
			return &DestinationNotFoundError{AccountID: to}
		}
		if _, err := bitcoinamount.Add(dest.Balance, credits[to]); err != nil {
			return err
		}
	}

	// 8. Proof witness (verified before committing any mutation).
	if !verifier.VerifyAccountUpdate(account.Snark.UpdateVK, data, tx.Witness) {
		return &InvalidProofError{AccountID: target}
	}

	// --- All validation passed: commit every effect. ---

	for _, to := range destOrder {
		credit := credits[to]
		if err := accessor.UpdateAccount(to, func(a *ledger.AccountState) error {
			newBal, err := bitcoinamount.Add(a.Balance, credit)
			if err != nil {
				return err
			}
			a.Balance = newBal
			return nil
		}); err != nil {
			return err
		}
	}
	for _, msg := range data.OutputMessages {
		accessor.InboxAppend(msg.To, xhash.TreeHash(msg.Payload))
	}

	return accessor.UpdateAccount(target, func(a *ledger.AccountState) error {
		newBal, err := bitcoinamount.Sub(a.Balance, totalOut)
		if err != nil {
			return err
		}
		a.Balance = newBal
		a.Snark.Seqno = data.SeqNo + 1
		a.Snark.NextInboxMsgIdx = nextInboxMsgIdx
		a.Snark.InnerStateRoot = data.NewInnerStateRoot
		return nil
	})
}

// sumTransferValues checked-sums every outbound transfer and message value
// directed at an account other than target, bailing out with
// *bitcoinamount.OverflowError on the first overflow. Self-directed amounts
// are excluded from the total: they never leave the account, so they must
// not count toward what gets debited from it.
func sumTransferValues(target ledger.AccountID, transfers []block.OutputTransfer, messages []block.OutputMessage) (bitcoinamount.Amount, error) {
	amounts := make([]bitcoinamount.Amount, 0, len(transfers)+len(messages))
	for _, t := range transfers {
		if t.To == target {
			continue
		}
		amounts = append(amounts, t.Amount)
	}
	for _, m := range messages {
		if m.To == target {
			continue
		}
		amounts = append(amounts, m.Value)
	}
	return bitcoinamount.SumChecked(amounts...)
}
