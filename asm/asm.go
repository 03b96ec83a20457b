// Package asm defines the manifest and log shapes absorbed by the state
// transition function when a block carries an L1 update: one manifest per
// newly-confirmed L1 block, each carrying zero or more logs emitted by the
// Anchor State Machine's subprotocols. Deposit is the only log kind this
// core ships.
package asm

import (
	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/xhash"
)

// EeID identifies a deposit's target within the execution environment. The
// STF resolves it to a ledger AccountID via DeriveAccountID.
type EeID uint32

// Log is implemented by every kind of ASM log a manifest can carry.
type Log interface {
	isASMLog()
}

// DepositLog records a confirmed L1 deposit of Amount bound for the
// account resolved from EeID.
type DepositLog struct {
	EeID   EeID
	Amount bitcoinamount.Amount
}

func (DepositLog) isASMLog() {}

// Manifest commits the logs absorbed from one confirmed L1 block.
type Manifest struct {
	L1BlockID ids.L1BlockID
	Logs      []Log
}

// Hash computes the manifest's MMR-leaf commitment.
func (m Manifest) Hash() xhash.Hash {
	parts := [][]byte{m.L1BlockID[:]}
	for _, l := range m.Logs {
		if d, ok := l.(DepositLog); ok {
			eeID := xhash.PutUint32BE(nil, uint32(d.EeID))
			amount := xhash.PutUint64BE(nil, uint64(d.Amount))
			parts = append(parts, []byte{0x01}, eeID, amount) // 0x01 tags DepositLog
		}
	}
	return xhash.TreeHash(parts...)
}

// DeriveAccountID maps a deposit's EeID to the ledger account it credits.
// The mapping is this implementation's choice (the original bridge
// subprotocol's exact derivation is out of scope for the core STF): a
// stable, deterministic tree-hash keyed by the ee id.
func DeriveAccountID(eeID EeID) ledger.AccountID {
	return xhash.TreeHash([]byte("ee-account"), xhash.PutUint32BE(nil, uint32(eeID)))
}
