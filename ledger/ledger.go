// Package ledger implements the keyed set of accounts the state transition
// function reads and mutates: a map from AccountID to AccountState with a
// dense secondary index by serial, and a commitment (Root) derived by
// tree-hashing accounts in ascending serial order.
package ledger

import (
	"sort"

	"github.com/olrollup/ol-stf/xhash"
)

// Ledger is the keyed set of accounts.
type Ledger struct {
	accounts   map[AccountID]*AccountState
	bySerial   map[AccountSerial]AccountID
	nextSerial AccountSerial
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[AccountID]*AccountState),
		bySerial: make(map[AccountSerial]AccountID),
	}
}

// NextSerial returns the serial that would be assigned to the next created
// account.
func (l *Ledger) NextSerial() AccountSerial {
	return l.nextSerial
}

// Get returns a copy of the account state for id, if present. Callers
// mutate the ledger only through Update/Create; the returned value is a
// defensive copy.
func (l *Ledger) Get(id AccountID) (*AccountState, bool) {
	a, ok := l.accounts[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// FindBySerial resolves a dense serial back to its account id.
func (l *Ledger) FindBySerial(serial AccountSerial) (AccountID, bool) {
	id, ok := l.bySerial[serial]
	return id, ok
}

// Create inserts a brand-new account at the given serial, failing with
// *AccountAlreadyExistsError if either the id or the serial is already
// taken. serial must equal NextSerial(): callers obtain it from
// NextAccountSerial so serials stay contiguous from zero.
func (l *Ledger) Create(serial AccountSerial, id AccountID, state AccountState) error {
	if _, exists := l.accounts[id]; exists {
		return &AccountAlreadyExistsError{AccountID: id, Serial: serial}
	}
	if _, exists := l.bySerial[serial]; exists {
		return &AccountAlreadyExistsError{AccountID: id, Serial: serial}
	}

	stored := state.Clone()
	stored.Serial = serial
	l.accounts[id] = stored
	l.bySerial[serial] = id
	if serial >= l.nextSerial {
		l.nextSerial = serial + 1
	}
	return nil
}

// Update applies f to a mutable copy of the account's current state and,
// if f returns nil, commits the mutated copy back into the ledger. If f
// returns an error, the ledger is left entirely unchanged — this is what
// gives transaction semantics their all-or-nothing effect.
func (l *Ledger) Update(id AccountID, f func(*AccountState) error) error {
	existing, ok := l.accounts[id]
	if !ok {
		return &AccountNotFoundError{AccountID: id}
	}
	staged := existing.Clone()
	if err := f(staged); err != nil {
		return err
	}
	l.accounts[id] = staged
	return nil
}

// Root tree-hashes every account leaf in ascending serial order.
func (l *Ledger) Root() xhash.Hash {
	serials := make([]AccountSerial, 0, len(l.bySerial))
	for s := range l.bySerial {
		serials = append(serials, s)
	}
	sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })

	leaves := make([][]byte, 0, len(serials))
	for _, s := range serials {
		id := l.bySerial[s]
		a := l.accounts[id]
		leaf := a.leafHash(id)
		leaves = append(leaves, leaf[:])
	}
	if len(leaves) == 0 {
		return xhash.Zero
	}
	return xhash.TreeHash(leaves...)
}
