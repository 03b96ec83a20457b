package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/state"
	"github.com/olrollup/ol-stf/xhash"
)

func TestApplyCreateAccountSucceeds(t *testing.T) {
	s := state.New()
	id := xhash.HashFromBytes([]byte("new"))

	require.NoError(t, ApplyCreateAccount(s, block.CreateAccountTx{
		Target:  id,
		Initial: mkSnarkAccount(500),
	}))

	got, ok := s.GetAccountState(id)
	require.True(t, ok)
	assert.Equal(t, ledger.AccountSerial(0), got.Serial)
}

func TestApplyCreateAccountDuplicateFails(t *testing.T) {
	s := state.New()
	id := xhash.HashFromBytes([]byte("new"))
	require.NoError(t, ApplyCreateAccount(s, block.CreateAccountTx{Target: id, Initial: mkSnarkAccount(0)}))

	err := ApplyCreateAccount(s, block.CreateAccountTx{Target: id, Initial: mkSnarkAccount(0)})
	require.Error(t, err)
	var already *ledger.AccountAlreadyExistsError
	require.ErrorAs(t, err, &already)
}
