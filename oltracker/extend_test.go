package oltracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/ids"
)

func TestHandleExtendEEStateAppliesAndPersistsInOrder(t *testing.T) {
	localEpoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	epoch6 := ids.EpochCommitment{Epoch: 6, ID: blockID(6)}
	epoch7 := ids.EpochCommitment{Epoch: 7, ID: blockID(7)}

	state := NewState(localEpoch, mkAccountState(100, 0), ChainStatus{Confirmed: localEpoch})
	storage := newFakeStorage()
	notifier := &fakeNotifier{}

	op := block.SnarkUpdateData{
		SeqNo: 0,
		OutputTransfers: []block.OutputTransfer{
			{To: blockID(1), Amount: 10},
		},
	}

	epochOps := []EpochOperations{
		{Epoch: epoch6, Operations: []block.SnarkUpdateData{op}},
		{Epoch: epoch7, Operations: nil},
	}
	status := ChainStatus{Confirmed: epoch7}

	err := handleExtendEEState(context.Background(), epochOps, status, &state, storage, notifier, discardLog())
	require.NoError(t, err)

	assert.Equal(t, epoch7, state.BestOLEpoch())
	assert.Equal(t, uint64(90), uint64(state.BestEEState().Balance))
	assert.Equal(t, uint64(1), state.BestEEState().Snark.Seqno)

	stored6, found, err := storage.EeAccountState(context.Background(), epoch6.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(90), uint64(stored6.Balance))

	assert.Len(t, notifier.statusCalls, 2)
	assert.Len(t, notifier.consensusCalls, 2)
}

func TestHandleExtendEEStateStopsOnApplyError(t *testing.T) {
	localEpoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	epoch6 := ids.EpochCommitment{Epoch: 6, ID: blockID(6)}

	state := NewState(localEpoch, mkAccountState(5, 0), ChainStatus{Confirmed: localEpoch})
	storage := newFakeStorage()
	notifier := &fakeNotifier{}

	op := block.SnarkUpdateData{
		OutputTransfers: []block.OutputTransfer{{To: blockID(1), Amount: 100}},
	}
	epochOps := []EpochOperations{{Epoch: epoch6, Operations: []block.SnarkUpdateData{op}}}

	err := handleExtendEEState(context.Background(), epochOps, ChainStatus{}, &state, storage, notifier, discardLog())
	require.Error(t, err)

	assert.Equal(t, localEpoch, state.BestOLEpoch())
	assert.Empty(t, notifier.statusCalls)
	_, found, _ := storage.EeAccountState(context.Background(), epoch6.ID)
	assert.False(t, found)
}

func TestHandleExtendEEStateStopsOnStoreError(t *testing.T) {
	localEpoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	epoch6 := ids.EpochCommitment{Epoch: 6, ID: blockID(6)}

	state := NewState(localEpoch, mkAccountState(100, 0), ChainStatus{Confirmed: localEpoch})
	storage := newFakeStorage()
	storage.storeErr = errors.New("disk full")
	notifier := &fakeNotifier{}

	epochOps := []EpochOperations{{Epoch: epoch6, Operations: nil}}

	err := handleExtendEEState(context.Background(), epochOps, ChainStatus{}, &state, storage, notifier, discardLog())
	require.Error(t, err)
	assert.Equal(t, localEpoch, state.BestOLEpoch())
	assert.Empty(t, notifier.statusCalls)
}
