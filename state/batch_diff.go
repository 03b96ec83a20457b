package state

import (
	"errors"

	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/mmr"
	"github.com/olrollup/ol-stf/xhash"
)

// ErrUnsupported is returned by every mutating Accessor method on a
// BatchDiffState: it is a read-only stacked view, never a write target.
var ErrUnsupported = errors.New("state: write unsupported on a read-only batch-diff view")

// WriteBatch is a speculative set of overrides recorded against a base
// Accessor without touching it. It is built by calling its own Set*/record
// methods — not through the Accessor interface — and is then stacked into
// a BatchDiffState for reading.
//
// This is the overlay the spec's design notes describe: "so that
// process_block can show each transaction the committed effects of its
// predecessors without exposing partial writes." The STF driver in this
// implementation does not need it for its own block application (each
// transaction's effects are committed to the live OLState directly, so the
// next transaction already observes them — see DESIGN.md); WriteBatch and
// BatchDiffState exist for external speculative readers, such as a mempool
// validating a queue of pending transactions against a shared base without
// committing any of them.
type WriteBatch struct {
	curSlot            *uint64
	curEpoch           *uint32
	lastL1             *ids.L1BlockCommitment
	totalLedgerBalance *bitcoinamount.Amount
	asmRecordedEpoch   *ids.EpochCommitment
	accountsRoot       *xhash.Hash

	accounts       map[ledger.AccountID]*ledger.AccountState
	createdSerials map[ledger.AccountID]ledger.AccountSerial
	nextSerial     *ledger.AccountSerial
}

// NewWriteBatch returns an empty batch.
func NewWriteBatch() *WriteBatch {
	return &WriteBatch{
		accounts:       make(map[ledger.AccountID]*ledger.AccountState),
		createdSerials: make(map[ledger.AccountID]ledger.AccountSerial),
	}
}

func (w *WriteBatch) SetCurSlot(v uint64)                        { w.curSlot = &v }
func (w *WriteBatch) SetCurEpoch(v uint32)                       { w.curEpoch = &v }
func (w *WriteBatch) SetLastL1(v ids.L1BlockCommitment)          { w.lastL1 = &v }
func (w *WriteBatch) SetTotalLedgerBalance(v bitcoinamount.Amount) { w.totalLedgerBalance = &v }
func (w *WriteBatch) SetAsmRecordedEpoch(v ids.EpochCommitment)  { w.asmRecordedEpoch = &v }
func (w *WriteBatch) SetAccountsRoot(v xhash.Hash)               { w.accountsRoot = &v }

// SetAccount records a full account-state override, used both to stage a
// mutation to an existing account and to stage a brand-new one.
func (w *WriteBatch) SetAccount(id ledger.AccountID, s *ledger.AccountState) {
	w.accounts[id] = s.Clone()
}

// RecordCreatedAccount additionally marks id as newly created at serial,
// so FindAccountIDBySerial and NextAccountSerial resolve correctly through
// the overlay.
func (w *WriteBatch) RecordCreatedAccount(id ledger.AccountID, serial ledger.AccountSerial, s *ledger.AccountState) {
	w.SetAccount(id, s)
	w.createdSerials[id] = serial
	next := serial + 1
	w.nextSerial = &next
}

// BatchDiffState is a read-only view stacking zero or more WriteBatches
// (newest last) over a base Accessor. Reads consult batches newest-first,
// falling back to base; every mutating method is a documented no-op
// (ErrUnsupported where the signature allows reporting it).
//
// MMR-backed reads (ASM/inbox) are NOT synthesized across batches — a
// BatchDiffState only overlays scalars and ledger accounts. This is a
// deliberate scope limitation: the overlay's documented purpose is
// validating pending transactions' balance/sequence effects against each
// other, which never requires a speculative MMR append to be visible
// before it is actually committed to the base accumulator.
type BatchDiffState struct {
	base    Accessor
	batches []*WriteBatch
}

// NewBatchDiffState stacks batches (oldest first) over base.
func NewBatchDiffState(base Accessor, batches ...*WriteBatch) *BatchDiffState {
	return &BatchDiffState{base: base, batches: batches}
}

func (b *BatchDiffState) CurSlot() uint64 {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].curSlot != nil {
			return *b.batches[i].curSlot
		}
	}
	return b.base.CurSlot()
}

func (b *BatchDiffState) SetCurSlot(uint64) {}

func (b *BatchDiffState) CurEpoch() uint32 {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].curEpoch != nil {
			return *b.batches[i].curEpoch
		}
	}
	return b.base.CurEpoch()
}

func (b *BatchDiffState) SetCurEpoch(uint32) {}

func (b *BatchDiffState) LastL1() ids.L1BlockCommitment {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].lastL1 != nil {
			return *b.batches[i].lastL1
		}
	}
	return b.base.LastL1()
}

func (b *BatchDiffState) SetLastL1(ids.L1BlockCommitment) {}

func (b *BatchDiffState) TotalLedgerBalance() bitcoinamount.Amount {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].totalLedgerBalance != nil {
			return *b.batches[i].totalLedgerBalance
		}
	}
	return b.base.TotalLedgerBalance()
}

func (b *BatchDiffState) SetTotalLedgerBalance(bitcoinamount.Amount) {}

func (b *BatchDiffState) AsmRecordedEpoch() ids.EpochCommitment {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].asmRecordedEpoch != nil {
			return *b.batches[i].asmRecordedEpoch
		}
	}
	return b.base.AsmRecordedEpoch()
}

func (b *BatchDiffState) SetAsmRecordedEpoch(ids.EpochCommitment) {}

func (b *BatchDiffState) AccountsRoot() xhash.Hash {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].accountsRoot != nil {
			return *b.batches[i].accountsRoot
		}
	}
	return b.base.AccountsRoot()
}

func (b *BatchDiffState) SetAccountsRoot(xhash.Hash) {}

func (b *BatchDiffState) GetAccountState(id ledger.AccountID) (*ledger.AccountState, bool) {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if a, ok := b.batches[i].accounts[id]; ok {
			return a.Clone(), true
		}
	}
	return b.base.GetAccountState(id)
}

func (b *BatchDiffState) UpdateAccount(ledger.AccountID, func(*ledger.AccountState) error) error {
	return ErrUnsupported
}

func (b *BatchDiffState) CreateNewAccount(ledger.AccountID, ledger.AccountState) (ledger.AccountSerial, error) {
	return 0, ErrUnsupported
}

func (b *BatchDiffState) FindAccountIDBySerial(serial ledger.AccountSerial) (ledger.AccountID, bool) {
	for i := len(b.batches) - 1; i >= 0; i-- {
		for id, s := range b.batches[i].createdSerials {
			if s == serial {
				return id, true
			}
		}
	}
	return b.base.FindAccountIDBySerial(serial)
}

func (b *BatchDiffState) NextAccountSerial() ledger.AccountSerial {
	for i := len(b.batches) - 1; i >= 0; i-- {
		if b.batches[i].nextSerial != nil {
			return *b.batches[i].nextSerial
		}
	}
	return b.base.NextAccountSerial()
}

func (b *BatchDiffState) LedgerRoot() xhash.Hash { return b.base.LedgerRoot() }

func (b *BatchDiffState) AppendManifest(xhash.Hash) uint64 { return 0 }
func (b *BatchDiffState) ASMLeaf(pos uint64) (xhash.Hash, bool)      { return b.base.ASMLeaf(pos) }
func (b *BatchDiffState) ASMLeafAtIndex(leafIndex uint64) (xhash.Hash, bool) {
	return b.base.ASMLeafAtIndex(leafIndex)
}
func (b *BatchDiffState) ASMProof(leafIndex uint64) (mmr.Proof, error) {
	return b.base.ASMProof(leafIndex)
}
func (b *BatchDiffState) ASMRoot() xhash.Hash { return b.base.ASMRoot() }

func (b *BatchDiffState) InboxAppend(ledger.AccountID, xhash.Hash) uint64 {
	return 0
}
func (b *BatchDiffState) InboxLeaf(account ledger.AccountID, pos uint64) (xhash.Hash, bool) {
	return b.base.InboxLeaf(account, pos)
}
func (b *BatchDiffState) InboxLeafAtIndex(account ledger.AccountID, leafIndex uint64) (xhash.Hash, bool) {
	return b.base.InboxLeafAtIndex(account, leafIndex)
}
func (b *BatchDiffState) InboxProof(account ledger.AccountID, leafIndex uint64) (mmr.Proof, error) {
	return b.base.InboxProof(account, leafIndex)
}
func (b *BatchDiffState) InboxLeafCount(account ledger.AccountID) uint64 {
	return b.base.InboxLeafCount(account)
}

// BatchDiffState satisfies Accessor in full so it can be read through the
// same interface as a live state.OLState. It is not used for transaction
// application: UpdateAccount and CreateNewAccount return ErrUnsupported.
var _ Accessor = (*BatchDiffState)(nil)

func (b *BatchDiffState) ComputeStateRoot() xhash.Hash {
	return xhash.TreeHash(
		xhash.PutUint64BE(nil, b.CurSlot()),
		xhash.PutUint32BE(nil, b.CurEpoch()),
		xhash.PutUint64BE(nil, uint64(b.LastL1().Height)),
		func() []byte { h := b.LastL1().ID; return h[:] }(),
		func() []byte { h := b.base.ASMRoot(); return h[:] }(),
		xhash.PutUint64BE(nil, uint64(b.TotalLedgerBalance())),
		func() []byte { h := b.base.LedgerRoot(); return h[:] }(),
	)
}
