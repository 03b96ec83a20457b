package oltracker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olrollup/ol-stf/ids"
)

func TestTaskRunCycleNoopLeavesStateUntouched(t *testing.T) {
	epoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	initial := NewState(epoch, mkAccountState(100, 0), ChainStatus{Confirmed: epoch})
	client := &fakeClient{status: ChainStatus{Confirmed: epoch}}
	storage := newFakeStorage()
	notifier := &fakeNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())

	task := NewTask(initial, client, storage, notifier, metrics, Config{MaxEpochsFetch: 10, GenesisEpoch: 0}, discardLog())
	require.NoError(t, task.runCycle(context.Background()))
	assert.Equal(t, epoch, task.State().BestOLEpoch())
	assert.Empty(t, notifier.statusCalls)
}

func TestTaskRunCycleExtendsAndNotifies(t *testing.T) {
	localEpoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	epoch6 := ids.EpochCommitment{Epoch: 6, ID: blockID(6)}
	initial := NewState(localEpoch, mkAccountState(100, 0), ChainStatus{Confirmed: localEpoch})

	client := &fakeClient{
		status: ChainStatus{Confirmed: epoch6},
		summaries: map[uint32]EpochSummary{
			6: {Epoch: epoch6, PrevEpoch: localEpoch},
		},
	}
	storage := newFakeStorage()
	notifier := &fakeNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())

	task := NewTask(initial, client, storage, notifier, metrics, Config{MaxEpochsFetch: 10, GenesisEpoch: 0}, discardLog())
	require.NoError(t, task.runCycle(context.Background()))

	assert.Equal(t, epoch6, task.State().BestOLEpoch())
	assert.Len(t, notifier.statusCalls, 1)
}

func TestTaskRunCycleReorgRollsBackToForkPoint(t *testing.T) {
	localEpoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	forkEpoch := ids.EpochCommitment{Epoch: 3, ID: blockID(3)}
	remoteConfirmed := ids.EpochCommitment{Epoch: 5, ID: blockID(99)}

	initial := NewState(localEpoch, mkAccountState(100, 0), ChainStatus{})
	storage := newFakeStorage()
	require.NoError(t, storage.StoreEeAccountState(context.Background(), forkEpoch, mkAccountState(50, 1)))

	client := &fakeClient{
		status: ChainStatus{Confirmed: remoteConfirmed},
		summaries: map[uint32]EpochSummary{
			5: {Epoch: remoteConfirmed},
			4: {Epoch: ids.EpochCommitment{Epoch: 4, ID: blockID(44)}},
			3: {Epoch: forkEpoch},
		},
	}
	notifier := &fakeNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())

	task := NewTask(initial, client, storage, notifier, metrics, Config{MaxEpochsFetch: 10, GenesisEpoch: 0}, discardLog())
	require.NoError(t, task.runCycle(context.Background()))

	assert.Equal(t, forkEpoch, task.State().BestOLEpoch())
}

func TestTaskRunStopsOnFatalError(t *testing.T) {
	localEpoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	remoteConfirmed := ids.EpochCommitment{Epoch: 5, ID: blockID(99)}

	initial := NewState(localEpoch, mkAccountState(100, 0), ChainStatus{})
	storage := newFakeStorage()

	client := &fakeClient{
		status: ChainStatus{Confirmed: remoteConfirmed},
		summaries: map[uint32]EpochSummary{
			5: {Epoch: remoteConfirmed},
			4: {Epoch: ids.EpochCommitment{Epoch: 4, ID: blockID(14)}},
			3: {Epoch: ids.EpochCommitment{Epoch: 3, ID: blockID(13)}},
			2: {Epoch: ids.EpochCommitment{Epoch: 2, ID: blockID(12)}},
			1: {Epoch: ids.EpochCommitment{Epoch: 1, ID: blockID(11)}},
			0: {Epoch: ids.EpochCommitment{Epoch: 0, ID: blockID(10)}},
		},
	}
	notifier := &fakeNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())

	task := NewTask(initial, client, storage, notifier, metrics, Config{MaxEpochsFetch: 10, GenesisEpoch: 0, PollInterval: time.Millisecond}, discardLog())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := task.Run(ctx)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestTaskRunStopsOnContextCancellation(t *testing.T) {
	epoch := ids.EpochCommitment{Epoch: 5, ID: blockID(5)}
	initial := NewState(epoch, mkAccountState(100, 0), ChainStatus{Confirmed: epoch})
	client := &fakeClient{status: ChainStatus{Confirmed: epoch}}
	storage := newFakeStorage()
	notifier := &fakeNotifier{}
	metrics := NewMetrics(prometheus.NewRegistry())

	task := NewTask(initial, client, storage, notifier, metrics, Config{MaxEpochsFetch: 10, GenesisEpoch: 0, PollInterval: time.Millisecond}, discardLog())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := task.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
