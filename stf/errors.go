package stf

import (
	"fmt"

	"github.com/olrollup/ol-stf/xhash"
)

// ParentMismatchError is returned when the block's declared parent does not
// hash-match the supplied parent header.
type ParentMismatchError struct {
	Expected xhash.Hash
	Got      xhash.Hash
}

func (e *ParentMismatchError) Error() string {
	return fmt.Sprintf("stf: parent mismatch: header declares %s, parent hashes to %s", e.Got.Hex(), e.Expected.Hex())
}

// SlotRegressionError is returned when the block's slot does not strictly
// increment the parent's.
type SlotRegressionError struct {
	ParentSlot uint64
	BlockSlot  uint64
}

func (e *SlotRegressionError) Error() string {
	return fmt.Sprintf("stf: slot regression: parent slot %d, block slot %d", e.ParentSlot, e.BlockSlot)
}

// EpochRegressionError is returned when the block's epoch is below the
// parent's.
type EpochRegressionError struct {
	ParentEpoch uint32
	BlockEpoch  uint32
}

func (e *EpochRegressionError) Error() string {
	return fmt.Sprintf("stf: epoch regression: parent epoch %d, block epoch %d", e.ParentEpoch, e.BlockEpoch)
}

// TimestampRegressionError is returned when the block's timestamp does not
// strictly increase on the parent's.
type TimestampRegressionError struct {
	ParentTimestamp uint64
	BlockTimestamp  uint64
}

func (e *TimestampRegressionError) Error() string {
	return fmt.Sprintf("stf: timestamp regression: parent %d, block %d", e.ParentTimestamp, e.BlockTimestamp)
}

// BodyRootMismatchError is returned when the header's declared body root
// does not match the body's computed commitment.
type BodyRootMismatchError struct {
	Expected xhash.Hash
	Actual   xhash.Hash
}

func (e *BodyRootMismatchError) Error() string {
	return fmt.Sprintf("stf: body root mismatch: header declares %s, body computes %s", e.Expected.Hex(), e.Actual.Hex())
}

// StateRootMismatchError is returned by ProcessAndVerifyBlock — never by
// ProcessBlock itself — when the caller's equality-check policy rejects a
// computed root that disagrees with the header's declared one. See
// DESIGN.md for why this check lives at the caller boundary.
type StateRootMismatchError struct {
	Expected xhash.Hash
	Actual   xhash.Hash
}

func (e *StateRootMismatchError) Error() string {
	return fmt.Sprintf("stf: state root mismatch: header declares %s, computed %s", e.Expected.Hex(), e.Actual.Hex())
}

// L1HeightRegressionError is returned when an L1 update's new height does
// not exceed the state's currently recorded L1 height.
type L1HeightRegressionError struct {
	CurrentHeight uint64
	NewHeight     uint64
}

func (e *L1HeightRegressionError) Error() string {
	return fmt.Sprintf("stf: l1 height regression: current %d, update claims %d", e.CurrentHeight, e.NewHeight)
}

// UnknownDepositTargetError is returned when a deposit log's ee_id resolves
// to an account that does not exist and ChainParams.AllowDepositAutocreate
// is false.
type UnknownDepositTargetError struct {
	AccountID xhash.Hash
}

func (e *UnknownDepositTargetError) Error() string {
	return fmt.Sprintf("stf: deposit targets unknown account %s and autocreate is disabled", e.AccountID.Hex())
}

// UnsupportedError is returned by the driver for a transaction that carries
// no recognised kind. The read-only state.BatchDiffState view reports its
// own refusals with state.ErrUnsupported, not with this type.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("stf: unsupported operation: %s", e.Op)
}
