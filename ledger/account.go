package ledger

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/xhash"
)

// AccountID is the 32-byte opaque identifier of an account.
type AccountID = xhash.Hash

// AccountSerial is the dense, monotonically increasing identifier assigned
// to an account at creation time. Serials are never reused and are
// contiguous from zero across the lifetime of a ledger.
type AccountSerial uint32

// AccountType tags which variant of type-specific sub-state an account
// carries. Snark is the only variant this core ships, but the tag exists so
// a future variant can be added without breaking the leaf encoding.
type AccountType uint8

const (
	// AccountTypeSnark is the only account variant this core implements:
	// a SNARK account whose updates carry a proof over its inner state
	// transition.
	AccountTypeSnark AccountType = iota
)

// SnarkState is the type-specific sub-state of a Snark-typed account.
type SnarkState struct {
	UpdateVK        []byte    // verifier key blob
	InnerStateRoot  xhash.Hash
	NextInboxMsgIdx uint64
	Seqno           uint64
}

// clone returns a deep copy of s, used whenever an account state is staged
// into an overlay so that speculative mutation never aliases the committed
// copy.
func (s *SnarkState) clone() *SnarkState {
	if s == nil {
		return nil
	}
	vk := make([]byte, len(s.UpdateVK))
	copy(vk, s.UpdateVK)
	cp := *s
	cp.UpdateVK = vk
	return &cp
}

// typeStateRoot derives the commitment for this sub-state, folded into the
// account's ledger leaf. The exact internal shape is this implementation's
// choice (the spec leaves it variant-specific and stable); it commits to
// every field that transaction semantics can mutate.
func (s *SnarkState) typeStateRoot() xhash.Hash {
	if s == nil {
		return xhash.Zero
	}
	return xhash.TreeHash(
		s.UpdateVK,
		s.InnerStateRoot[:],
		xhash.PutUint64BE(nil, s.NextInboxMsgIdx),
		xhash.PutUint64BE(nil, s.Seqno),
	)
}

// AccountState is the full state of one ledger account.
type AccountState struct {
	Serial  AccountSerial
	Balance bitcoinamount.Amount
	Type    AccountType
	Snark   *SnarkState // non-nil iff Type == AccountTypeSnark
}

// Clone returns a deep copy of the account state.
func (a *AccountState) Clone() *AccountState {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Snark = a.Snark.clone()
	return &cp
}

// typeStateRoot dispatches on the account's type tag to derive the
// type-specific sub-commitment folded into the ledger leaf.
func (a *AccountState) typeStateRoot() xhash.Hash {
	switch a.Type {
	case AccountTypeSnark:
		return a.Snark.typeStateRoot()
	default:
		return xhash.Zero
	}
}

// leafHash computes this account's ledger leaf:
// tree_hash(id, serial_u32_be, balance_u64_be, type_tag_u8, type_state_root).
func (a *AccountState) leafHash(id AccountID) xhash.Hash {
	buf := make([]byte, 0, 32+4+8+1)
	buf = append(buf, id[:]...)
	buf = xhash.PutUint32BE(buf, uint32(a.Serial))
	buf = xhash.PutUint64BE(buf, uint64(a.Balance))
	buf = append(buf, byte(a.Type))
	tsr := a.typeStateRoot()
	return xhash.TreeHash(buf, tsr[:])
}
