package state

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/mmr"
	"github.com/olrollup/ol-stf/xhash"
)

// accumulator is the global accumulator bounded collaborator: the ASM
// manifest MMR plus a registry of per-account inbox MMRs, keyed by account
// id as SPEC_FULL's design notes describe.
type accumulator struct {
	asm     *mmr.MMR
	inboxes map[ledger.AccountID]*mmr.MMR
}

func newAccumulator() *accumulator {
	return &accumulator{asm: mmr.New(), inboxes: make(map[ledger.AccountID]*mmr.MMR)}
}

func (a *accumulator) inbox(id ledger.AccountID) *mmr.MMR {
	m, ok := a.inboxes[id]
	if !ok {
		m = mmr.New()
		a.inboxes[id] = m
	}
	return m
}

func (a *accumulator) clone() *accumulator {
	cp := &accumulator{asm: a.asm, inboxes: make(map[ledger.AccountID]*mmr.MMR, len(a.inboxes))}
	for k, v := range a.inboxes {
		cp.inboxes[k] = v
	}
	return cp
}

// OLState is the real, mutable top-level OL state: the committed state a
// block is applied against.
type OLState struct {
	curSlot            uint64
	curEpoch           uint32
	lastL1             ids.L1BlockCommitment
	totalLedgerBalance bitcoinamount.Amount
	asmRecordedEpoch   ids.EpochCommitment
	accountsRoot       xhash.Hash

	accum  *accumulator
	ledger *ledger.Ledger
}

// New returns a fresh, empty OL state: slot and epoch zero, empty ledger,
// empty accumulator, zero last-L1 commitment. Genesis contents beyond this
// are supplied by ChainParams and applied by the caller before the first
// ProcessBlock call (see the chain package).
func New() *OLState {
	return &OLState{accum: newAccumulator(), ledger: ledger.New()}
}

func (s *OLState) CurSlot() uint64       { return s.curSlot }
func (s *OLState) SetCurSlot(v uint64)   { s.curSlot = v }
func (s *OLState) CurEpoch() uint32      { return s.curEpoch }
func (s *OLState) SetCurEpoch(v uint32)  { s.curEpoch = v }

func (s *OLState) LastL1() ids.L1BlockCommitment     { return s.lastL1 }
func (s *OLState) SetLastL1(v ids.L1BlockCommitment) { s.lastL1 = v }

func (s *OLState) TotalLedgerBalance() bitcoinamount.Amount     { return s.totalLedgerBalance }
func (s *OLState) SetTotalLedgerBalance(v bitcoinamount.Amount) { s.totalLedgerBalance = v }

func (s *OLState) AsmRecordedEpoch() ids.EpochCommitment     { return s.asmRecordedEpoch }
func (s *OLState) SetAsmRecordedEpoch(v ids.EpochCommitment) { s.asmRecordedEpoch = v }

func (s *OLState) AccountsRoot() xhash.Hash     { return s.accountsRoot }
func (s *OLState) SetAccountsRoot(v xhash.Hash) { s.accountsRoot = v }

func (s *OLState) GetAccountState(id ledger.AccountID) (*ledger.AccountState, bool) {
	return s.ledger.Get(id)
}

func (s *OLState) UpdateAccount(id ledger.AccountID, f func(*ledger.AccountState) error) error {
	return s.ledger.Update(id, f)
}

func (s *OLState) CreateNewAccount(id ledger.AccountID, initial ledger.AccountState) (ledger.AccountSerial, error) {
	serial := s.ledger.NextSerial()
	if err := s.ledger.Create(serial, id, initial); err != nil {
		return 0, err
	}
	return serial, nil
}

func (s *OLState) FindAccountIDBySerial(serial ledger.AccountSerial) (ledger.AccountID, bool) {
	return s.ledger.FindBySerial(serial)
}

func (s *OLState) NextAccountSerial() ledger.AccountSerial { return s.ledger.NextSerial() }
func (s *OLState) LedgerRoot() xhash.Hash                  { return s.ledger.Root() }

func (s *OLState) AppendManifest(manifestHash xhash.Hash) uint64 {
	return s.accum.asm.Append(manifestHash)
}

func (s *OLState) ASMLeaf(pos uint64) (xhash.Hash, bool) { return s.accum.asm.Get(pos) }

func (s *OLState) ASMLeafAtIndex(leafIndex uint64) (xhash.Hash, bool) {
	return s.accum.asm.GetLeaf(leafIndex)
}

func (s *OLState) ASMProof(leafIndex uint64) (mmr.Proof, error) {
	return s.accum.asm.Proof(leafIndex)
}

func (s *OLState) ASMRoot() xhash.Hash { return s.accum.asm.Root() }

func (s *OLState) InboxAppend(account ledger.AccountID, leaf xhash.Hash) uint64 {
	return s.accum.inbox(account).Append(leaf)
}

func (s *OLState) InboxLeaf(account ledger.AccountID, pos uint64) (xhash.Hash, bool) {
	return s.accum.inbox(account).Get(pos)
}

func (s *OLState) InboxLeafAtIndex(account ledger.AccountID, leafIndex uint64) (xhash.Hash, bool) {
	return s.accum.inbox(account).GetLeaf(leafIndex)
}

func (s *OLState) InboxProof(account ledger.AccountID, leafIndex uint64) (mmr.Proof, error) {
	return s.accum.inbox(account).Proof(leafIndex)
}

func (s *OLState) InboxLeafCount(account ledger.AccountID) uint64 {
	return s.accum.inbox(account).LeafCount()
}

// ComputeStateRoot derives the root per §6: tree_hash(cur_slot_u64_be,
// cur_epoch_u32_be, last_l1_height_u64_be, last_l1_id, asm_mmr_root,
// total_ledger_balance_u64_be, accounts_root). It reads the ledger root
// fresh rather than relying on the cached AccountsRoot field, since callers
// are expected to call SetAccountsRoot with this same value right after.
func (s *OLState) ComputeStateRoot() xhash.Hash {
	accountsRoot := s.ledger.Root()
	asmRoot := s.accum.asm.Root()
	lastL1ID := s.lastL1.ID

	return xhash.TreeHash(
		xhash.PutUint64BE(nil, s.curSlot),
		xhash.PutUint32BE(nil, s.curEpoch),
		xhash.PutUint64BE(nil, uint64(s.lastL1.Height)),
		lastL1ID[:],
		asmRootBytes(asmRoot),
		xhash.PutUint64BE(nil, uint64(s.totalLedgerBalance)),
		accountsRoot[:],
	)
}

func asmRootBytes(h xhash.Hash) []byte {
	b := make([]byte, 32)
	copy(b, h[:])
	return b
}
