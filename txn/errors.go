package txn

import (
	"fmt"

	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/xhash"
)

// InboxMismatchError is returned when a claimed processed inbox message does
// not hash to the MMR leaf recorded at its offset.
type InboxMismatchError struct {
	AccountID ledger.AccountID
	Idx       uint64
}

func (e *InboxMismatchError) Error() string {
	return fmt.Sprintf("txn: inbox leaf %d for account %s does not match claimed entry", e.Idx, e.AccountID.Hex())
}

// InboxLeafNotFoundError is returned when a claimed processed message offset
// is beyond the account's inbox MMR.
type InboxLeafNotFoundError struct {
	AccountID ledger.AccountID
	Idx       uint64
}

func (e *InboxLeafNotFoundError) Error() string {
	return fmt.Sprintf("txn: inbox leaf %d for account %s not found", e.Idx, e.AccountID.Hex())
}

// L1HeaderHashMismatchError is returned when a claimed ledger reference does
// not match the ASM MMR leaf at its index.
type L1HeaderHashMismatchError struct {
	Idx      uint64
	Claimed  xhash.Hash
	Recorded xhash.Hash
}

func (e *L1HeaderHashMismatchError) Error() string {
	return fmt.Sprintf("txn: l1 header ref at idx %d claimed %s, asm mmr has %s", e.Idx, e.Claimed.Hex(), e.Recorded.Hex())
}

// L1HeaderLeafNotFoundError is returned when a claimed ledger reference's
// idx is beyond the ASM MMR.
type L1HeaderLeafNotFoundError struct {
	Idx uint64
}

func (e *L1HeaderLeafNotFoundError) Error() string {
	return fmt.Sprintf("txn: l1 header ref at idx %d not found in asm mmr", e.Idx)
}

// InvalidProofError is returned when a SNARK account update's witness fails
// verification against the account's update_vk.
type InvalidProofError struct {
	AccountID ledger.AccountID
}

func (e *InvalidProofError) Error() string {
	return fmt.Sprintf("txn: invalid proof witness for account %s", e.AccountID.Hex())
}

// DestinationNotFoundError is returned when an outbound transfer or message
// targets an account that does not exist. The spec requires this to reject
// the whole block, not merely fail the transaction softly.
type DestinationNotFoundError struct {
	AccountID ledger.AccountID
}

func (e *DestinationNotFoundError) Error() string {
	return fmt.Sprintf("txn: destination account %s not found", e.AccountID.Hex())
}
