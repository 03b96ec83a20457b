package txn

import (
	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/state"
)

// ApplyCreateAccount creates a brand-new account at the next available
// serial. It is used both for genesis-time account seeding and for
// admin-queued creations carried in a block body (spec §3, "Transaction
// kinds"). The only failure mode is *ledger.AccountAlreadyExistsError, which
// the ledger itself already makes all-or-nothing.
func ApplyCreateAccount(accessor state.Accessor, tx block.CreateAccountTx) error {
	initial := tx.Initial
	_, err := accessor.CreateNewAccount(tx.Target, initial)
	if err != nil {
		return err
	}
	return nil
}
