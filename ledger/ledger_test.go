package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/xhash"
)

func mkSnarkAccount(balance bitcoinamount.Amount) AccountState {
	return AccountState{
		Balance: balance,
		Type:    AccountTypeSnark,
		Snark:   &SnarkState{},
	}
}

func TestCreateAndGet(t *testing.T) {
	l := New()
	id := xhash.HashFromBytes([]byte("a0"))
	require.NoError(t, l.Create(l.NextSerial(), id, mkSnarkAccount(100)))

	got, ok := l.Get(id)
	require.True(t, ok)
	assert.Equal(t, bitcoinamount.Amount(100), got.Balance)
	assert.Equal(t, AccountSerial(0), got.Serial)
}

func TestCreateDuplicateIDFails(t *testing.T) {
	l := New()
	id := xhash.HashFromBytes([]byte("a0"))
	require.NoError(t, l.Create(l.NextSerial(), id, mkSnarkAccount(0)))
	err := l.Create(l.NextSerial(), id, mkSnarkAccount(0))
	require.Error(t, err)
	var already *AccountAlreadyExistsError
	require.ErrorAs(t, err, &already)
}

func TestSerialsAreContiguous(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		id := xhash.HashFromBytes([]byte{byte(i)})
		require.NoError(t, l.Create(l.NextSerial(), id, mkSnarkAccount(0)))
	}
	for i := 0; i < 5; i++ {
		id, ok := l.FindBySerial(AccountSerial(i))
		require.True(t, ok)
		assert.Equal(t, byte(i), id[0])
	}
	assert.Equal(t, AccountSerial(5), l.NextSerial())
}

func TestUpdateNotFound(t *testing.T) {
	l := New()
	err := l.Update(xhash.HashFromBytes([]byte("nope")), func(a *AccountState) error { return nil })
	require.Error(t, err)
	var notFound *AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateFailureLeavesAccountUnchanged(t *testing.T) {
	l := New()
	id := xhash.HashFromBytes([]byte("a0"))
	require.NoError(t, l.Create(l.NextSerial(), id, mkSnarkAccount(100)))

	err := l.Update(id, func(a *AccountState) error {
		a.Balance = 9999
		return &SeqMismatchError{Expected: 0, Got: 1}
	})
	require.Error(t, err)

	got, _ := l.Get(id)
	assert.Equal(t, bitcoinamount.Amount(100), got.Balance)
}

func TestUpdateSuccessCommits(t *testing.T) {
	l := New()
	id := xhash.HashFromBytes([]byte("a0"))
	require.NoError(t, l.Create(l.NextSerial(), id, mkSnarkAccount(100)))

	require.NoError(t, l.Update(id, func(a *AccountState) error {
		a.Balance = 50
		return nil
	}))

	got, _ := l.Get(id)
	assert.Equal(t, bitcoinamount.Amount(50), got.Balance)
}

func TestRootChangesWithState(t *testing.T) {
	l := New()
	empty := l.Root()
	assert.Equal(t, xhash.Zero, empty)

	id := xhash.HashFromBytes([]byte("a0"))
	require.NoError(t, l.Create(l.NextSerial(), id, mkSnarkAccount(100)))
	withAccount := l.Root()
	assert.NotEqual(t, empty, withAccount)

	require.NoError(t, l.Update(id, func(a *AccountState) error {
		a.Balance = 200
		return nil
	}))
	afterUpdate := l.Root()
	assert.NotEqual(t, withAccount, afterUpdate)
}

func TestRootOrderedBySerialNotInsertionIteration(t *testing.T) {
	l1 := New()
	idA := xhash.HashFromBytes([]byte("a"))
	idB := xhash.HashFromBytes([]byte("b"))
	require.NoError(t, l1.Create(l1.NextSerial(), idA, mkSnarkAccount(1)))
	require.NoError(t, l1.Create(l1.NextSerial(), idB, mkSnarkAccount(2)))

	l2 := New()
	require.NoError(t, l2.Create(l2.NextSerial(), idA, mkSnarkAccount(1)))
	require.NoError(t, l2.Create(l2.NextSerial(), idB, mkSnarkAccount(2)))

	assert.Equal(t, l1.Root(), l2.Root())
}
