// Package block defines the OL block wire shape: header, body, transaction
// kinds and the L1 update a block may carry.
package block

import (
	"github.com/olrollup/ol-stf/asm"
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/xhash"
)

// Header is an OL block's header.
type Header struct {
	Timestamp uint64
	Slot      uint64
	Epoch     uint32
	Parent    ids.OLBlockID
	BodyRoot  xhash.Hash
	StateRoot xhash.Hash
	Signature []byte
}

// ID computes the OL block id: a tree-hash of the canonical header
// encoding (timestamp, slot, epoch, parent, body_root, state_root) in that
// field order, each big-endian fixed width. The signature is intentionally
// excluded — it authenticates the header, it is not part of its identity.
func (h Header) ID() ids.OLBlockID {
	return xhash.TreeHash(
		xhash.PutUint64BE(nil, h.Timestamp),
		xhash.PutUint64BE(nil, h.Slot),
		xhash.PutUint32BE(nil, h.Epoch),
		h.Parent[:],
		h.BodyRoot[:],
		h.StateRoot[:],
	)
}

// Transfer is a plain value transfer, used for the body's deposit list.
type Transfer struct {
	To     ledger.AccountID
	Amount bitcoinamount.Amount
}

// OutputTransfer is a SNARK account update's outbound value transfer.
type OutputTransfer struct {
	To     ledger.AccountID
	Amount bitcoinamount.Amount
}

// OutputMessage is a SNARK account update's outbound message, appended to
// the destination account's inbox MMR. Value is deducted from the sender's
// balance and credited to the destination under the same checked arithmetic
// as OutputTransfer, per spec §4.3 step 6.
type OutputMessage struct {
	To      ledger.AccountID
	Value   bitcoinamount.Amount
	Payload []byte
}

// ProcessedMsg is a claimed already-processed inbox message at offset
// Offset relative to the account's next_inbox_msg_idx at the start of the
// update.
type ProcessedMsg struct {
	Offset uint64
	Entry  []byte
}

// L1HeaderRef is a claimed reference to an ASM MMR leaf.
type L1HeaderRef struct {
	Idx  uint64
	Hash xhash.Hash
}

// SnarkUpdateData is the non-witness payload of a SNARK account update.
type SnarkUpdateData struct {
	NewInnerStateRoot  xhash.Hash
	NewNextInboxMsgIdx uint64
	SeqNo              uint64
	ProcessedMsgs      []ProcessedMsg
	LedgerRefs         []L1HeaderRef
	OutputTransfers    []OutputTransfer
	OutputMessages     []OutputMessage
	ExtraData          []byte
}

// SnarkAccountUpdateTx updates a SNARK account's state, backed by an
// externally-verified proof witness.
type SnarkAccountUpdateTx struct {
	Target  ledger.AccountID
	Data    SnarkUpdateData
	Witness []byte
}

// CreateAccountTx creates a brand-new account, used both at genesis and for
// admin-queued creations.
type CreateAccountTx struct {
	Target  ledger.AccountID
	Initial ledger.AccountState
}

// Tx is one transaction in a block body. Exactly one of the two fields is
// set; dispatch follows the spec's tagged-sum discipline rather than Go
// type assertions on an interface, since a transaction kind here is a
// closed, spec-fixed set.
type Tx struct {
	SnarkAccountUpdate *SnarkAccountUpdateTx
	CreateAccount      *CreateAccountTx
}

// L1Update is the L1 anchor advance a block may carry.
type L1Update struct {
	InnerStateRoot xhash.Hash
	NewL1Height    uint64
	Manifests      []asm.Manifest
}

// Body is an OL block's body.
type Body struct {
	// Deposits is part of the data model's declared body shape. The STF
	// driver's process_block algorithm never reads it directly — deposits
	// reach the ledger exclusively through L1Update manifests' DepositLog
	// entries — so it only ever participates in BodyRoot's commitment.
	Deposits     []Transfer
	Transactions []Tx
	L1Update     *L1Update
}

func encodeTransfer(t Transfer) []byte {
	buf := append([]byte{}, t.To[:]...)
	return xhash.PutUint64BE(buf, uint64(t.Amount))
}

func encodeOutputTransfer(t OutputTransfer) []byte {
	buf := append([]byte{}, t.To[:]...)
	return xhash.PutUint64BE(buf, uint64(t.Amount))
}

func encodeOutputMessage(m OutputMessage) []byte {
	buf := append([]byte{}, m.To[:]...)
	buf = xhash.PutUint64BE(buf, uint64(m.Value))
	return append(buf, m.Payload...)
}

func encodeSnarkUpdateData(d SnarkUpdateData) []byte {
	buf := append([]byte{}, d.NewInnerStateRoot[:]...)
	buf = xhash.PutUint64BE(buf, d.NewNextInboxMsgIdx)
	buf = xhash.PutUint64BE(buf, d.SeqNo)
	for _, m := range d.ProcessedMsgs {
		buf = xhash.PutUint64BE(buf, m.Offset)
		buf = append(buf, m.Entry...)
	}
	for _, r := range d.LedgerRefs {
		buf = xhash.PutUint64BE(buf, r.Idx)
		buf = append(buf, r.Hash[:]...)
	}
	for _, t := range d.OutputTransfers {
		buf = append(buf, encodeOutputTransfer(t)...)
	}
	for _, m := range d.OutputMessages {
		buf = append(buf, encodeOutputMessage(m)...)
	}
	buf = append(buf, d.ExtraData...)
	return buf
}

func encodeTx(tx Tx) []byte {
	switch {
	case tx.SnarkAccountUpdate != nil:
		u := tx.SnarkAccountUpdate
		buf := []byte{0x01}
		buf = append(buf, u.Target[:]...)
		buf = append(buf, encodeSnarkUpdateData(u.Data)...)
		buf = append(buf, u.Witness...)
		return buf
	case tx.CreateAccount != nil:
		c := tx.CreateAccount
		buf := []byte{0x02}
		buf = append(buf, c.Target[:]...)
		return buf
	default:
		return []byte{0x00}
	}
}

// Root computes the body commitment the header's BodyRoot must match:
// tree_hash over the encoded deposits, transactions and L1 update, in that
// order.
func (b Body) Root() xhash.Hash {
	parts := make([][]byte, 0, len(b.Deposits)+len(b.Transactions)+1)
	for _, d := range b.Deposits {
		parts = append(parts, encodeTransfer(d))
	}
	for _, tx := range b.Transactions {
		parts = append(parts, encodeTx(tx))
	}
	if b.L1Update != nil {
		u := b.L1Update
		buf := append([]byte{}, u.InnerStateRoot[:]...)
		buf = xhash.PutUint64BE(buf, u.NewL1Height)
		for _, m := range u.Manifests {
			h := m.Hash()
			buf = append(buf, h[:]...)
		}
		parts = append(parts, buf)
	}
	return xhash.TreeHash(parts...)
}

// Block is a full OL block: header plus body.
type Block struct {
	Header Header
	Body   Body
}
