package ledger

import (
	"fmt"

	"github.com/olrollup/ol-stf/xhash"
)

// AccountNotFoundError is returned by Update when the account does not
// exist (Get and FindBySerial report a miss with a false bool instead).
type AccountNotFoundError struct {
	AccountID xhash.Hash
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("ledger: account %s not found", e.AccountID.Hex())
}

// AccountAlreadyExistsError is returned by Create when the id or the serial
// is already taken.
type AccountAlreadyExistsError struct {
	AccountID xhash.Hash
	Serial    uint32
}

func (e *AccountAlreadyExistsError) Error() string {
	return fmt.Sprintf("ledger: account %s (serial %d) already exists", e.AccountID.Hex(), e.Serial)
}

// WrongAccountTypeError is returned when an operation expects a specific
// account variant and the target account holds a different one.
type WrongAccountTypeError struct {
	AccountID xhash.Hash
	Expected  AccountType
	Actual    AccountType
}

func (e *WrongAccountTypeError) Error() string {
	return fmt.Sprintf("ledger: account %s has type %d, expected %d", e.AccountID.Hex(), e.Actual, e.Expected)
}

// SeqMismatchError is returned when a SNARK account update's claimed
// sequence number does not match the account's current one.
type SeqMismatchError struct {
	Expected uint64
	Got      uint64
}

func (e *SeqMismatchError) Error() string {
	return fmt.Sprintf("ledger: sequence mismatch: expected %d, got %d", e.Expected, e.Got)
}
