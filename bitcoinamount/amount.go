// Package bitcoinamount provides a checked fixed-width amount type for
// satoshi-denominated balances and transfers inside the state transition
// function. All arithmetic is overflow-checked; nothing here ever wraps
// silently the way a bare uint64 add would.
package bitcoinamount

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// Amount is a non-negative quantity of satoshis. The zero value is zero
// sats.
type Amount uint64

// MaxAmount is the largest representable Amount.
const MaxAmount Amount = 1<<64 - 1

// OverflowError is returned when an arithmetic operation on two Amounts
// would not fit in 64 bits.
type OverflowError struct {
	Op   string
	X, Y Amount
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("bitcoinamount: %s(%d, %d) overflows u64", e.Op, e.X, e.Y)
}

// InsufficientBalanceError is returned when a debit would drive a balance
// negative.
type InsufficientBalanceError struct {
	Requested Amount
	Available Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("bitcoinamount: insufficient balance: requested %d, available %d", e.Requested, e.Available)
}

// SafeAdd returns x+y and reports whether the addition overflowed, mirroring
// the bits.Add64-based SafeAdd helper this package is modeled on.
func SafeAdd(x, y Amount) (Amount, bool) {
	sum, carryOut := bits.Add64(uint64(x), uint64(y), 0)
	return Amount(sum), carryOut != 0
}

// SafeMul returns x*y and reports whether the multiplication overflowed.
func SafeMul(x, y Amount) (Amount, bool) {
	hi, lo := bits.Mul64(uint64(x), uint64(y))
	return Amount(lo), hi != 0
}

// SafeSub returns x-y and reports whether the subtraction underflowed.
func SafeSub(x, y Amount) (Amount, bool) {
	diff, borrowOut := bits.Sub64(uint64(x), uint64(y), 0)
	return Amount(diff), borrowOut != 0
}

// Add returns x+y, or an *OverflowError if the sum does not fit in u64.
func Add(x, y Amount) (Amount, error) {
	sum, overflow := SafeAdd(x, y)
	if overflow {
		return 0, &OverflowError{Op: "add", X: x, Y: y}
	}
	return sum, nil
}

// Sub debits amount from balance, returning an *InsufficientBalanceError if
// amount exceeds balance. This is the only subtraction path the ledger and
// transaction semantics packages are expected to use: a debit either
// succeeds in full or fails in full, with zero effect on the caller.
func Sub(balance, amount Amount) (Amount, error) {
	diff, underflow := SafeSub(balance, amount)
	if underflow {
		return 0, &InsufficientBalanceError{Requested: amount, Available: balance}
	}
	return diff, nil
}

// SumChecked sums amounts in a 256-bit accumulator, the way
// consensus/misc's blob gas math accumulates fee terms in a wide type
// before narrowing, so an output-transfer list of any length is summed
// without relying on per-step 64-bit overflow checks alone. It returns an
// *OverflowError if the final total does not fit back in 64 bits.
func SumChecked(amounts ...Amount) (Amount, error) {
	total := new(uint256.Int)
	for _, a := range amounts {
		total.Add(total, uint256.NewInt(uint64(a)))
	}
	if !total.IsUint64() {
		return 0, &OverflowError{Op: "sum", X: amounts[0]}
	}
	return Amount(total.Uint64()), nil
}
