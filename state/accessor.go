// Package state implements the OL state view the STF driver and
// transaction semantics operate on: global and epochal scalars, the ASM
// manifest MMR, per-account inbox MMRs, and the ledger, composed behind a
// single Accessor interface plus a read-only stacked overlay
// (BatchDiffState) for speculative reads outside block application.
package state

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/mmr"
	"github.com/olrollup/ol-stf/xhash"
)

// Accessor is the state accessor the STF driver and transaction semantics
// consume. It merges the spec's "state accessor" and "ledger provider"
// interfaces (§6) into one handle — both are owned by the STF for the
// duration of process_block, and the state accessor's own method list
// already reproduces every ledger operation transaction semantics need, so
// a single interface is what process_block is actually called with.
type Accessor interface {
	CurSlot() uint64
	SetCurSlot(uint64)
	CurEpoch() uint32
	SetCurEpoch(uint32)

	LastL1() ids.L1BlockCommitment
	SetLastL1(ids.L1BlockCommitment)

	TotalLedgerBalance() bitcoinamount.Amount
	SetTotalLedgerBalance(bitcoinamount.Amount)

	AsmRecordedEpoch() ids.EpochCommitment
	SetAsmRecordedEpoch(ids.EpochCommitment)

	AccountsRoot() xhash.Hash
	SetAccountsRoot(xhash.Hash)

	GetAccountState(id ledger.AccountID) (*ledger.AccountState, bool)
	UpdateAccount(id ledger.AccountID, f func(*ledger.AccountState) error) error
	CreateNewAccount(id ledger.AccountID, initial ledger.AccountState) (ledger.AccountSerial, error)
	FindAccountIDBySerial(serial ledger.AccountSerial) (ledger.AccountID, bool)
	NextAccountSerial() ledger.AccountSerial
	LedgerRoot() xhash.Hash

	// AppendManifest appends a manifest hash as a leaf to the ASM MMR and
	// returns its leaf index.
	AppendManifest(manifestHash xhash.Hash) uint64
	ASMLeaf(pos uint64) (xhash.Hash, bool)
	ASMLeafAtIndex(leafIndex uint64) (xhash.Hash, bool)
	ASMProof(leafIndex uint64) (mmr.Proof, error)
	ASMRoot() xhash.Hash

	// InboxAppend appends a message leaf to account's inbox MMR.
	InboxAppend(account ledger.AccountID, leaf xhash.Hash) uint64
	InboxLeaf(account ledger.AccountID, pos uint64) (xhash.Hash, bool)
	InboxLeafAtIndex(account ledger.AccountID, leafIndex uint64) (xhash.Hash, bool)
	InboxProof(account ledger.AccountID, leafIndex uint64) (mmr.Proof, error)
	InboxLeafCount(account ledger.AccountID) uint64

	// ComputeStateRoot derives the state root from the accessor's current
	// scalars, ASM root and ledger root, per §6's field order, without
	// mutating anything.
	ComputeStateRoot() xhash.Hash
}
