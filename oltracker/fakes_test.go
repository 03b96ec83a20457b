package oltracker

import (
	"context"
	"sync"

	"github.com/olrollup/ol-stf/bitcoinamount"
	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
	"github.com/olrollup/ol-stf/xhash"
)

// fakeClient serves ChainStatus/EpochSummary from in-memory fixtures keyed
// by epoch number, with optional forced errors.
type fakeClient struct {
	status     ChainStatus
	statusErr  error
	summaries  map[uint32]EpochSummary
	summaryErr error
}

func (f *fakeClient) ChainStatus(ctx context.Context) (ChainStatus, error) {
	if f.statusErr != nil {
		return ChainStatus{}, f.statusErr
	}
	return f.status, nil
}

func (f *fakeClient) EpochSummary(ctx context.Context, epoch uint32) (EpochSummary, error) {
	if f.summaryErr != nil {
		return EpochSummary{}, f.summaryErr
	}
	s, ok := f.summaries[epoch]
	if !ok {
		panic("fakeClient: no summary fixture for epoch")
	}
	return s, nil
}

// fakeStorage is an in-memory Storage backed by a map keyed on terminal
// block id, plus epoch bookkeeping so RollbackEeAccountState can discard
// anything newer than a given epoch.
type fakeStorage struct {
	mu          sync.Mutex
	byBlockID   map[ids.OLBlockID]ledger.AccountState
	epochOf     map[ids.OLBlockID]uint32
	storeErr    error
	rollbackErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		byBlockID: make(map[ids.OLBlockID]ledger.AccountState),
		epochOf:   make(map[ids.OLBlockID]uint32),
	}
}

func (f *fakeStorage) EeAccountState(ctx context.Context, terminalBlockID ids.OLBlockID) (*ledger.AccountState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byBlockID[terminalBlockID]
	if !ok {
		return nil, false, nil
	}
	cp := s
	return &cp, true, nil
}

func (f *fakeStorage) StoreEeAccountState(ctx context.Context, epoch ids.EpochCommitment, state ledger.AccountState) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byBlockID[epoch.ID] = state
	f.epochOf[epoch.ID] = epoch.Epoch
	return nil
}

func (f *fakeStorage) RollbackEeAccountState(ctx context.Context, epoch ids.EpochCommitment) error {
	if f.rollbackErr != nil {
		return f.rollbackErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, e := range f.epochOf {
		if e > epoch.Epoch {
			delete(f.byBlockID, id)
			delete(f.epochOf, id)
		}
	}
	return nil
}

// fakeNotifier records every notification it receives.
type fakeNotifier struct {
	mu             sync.Mutex
	statusCalls    []State
	consensusCalls []State
}

func (f *fakeNotifier) NotifyOLStatusUpdate(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, s)
}

func (f *fakeNotifier) NotifyConsensusUpdate(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consensusCalls = append(f.consensusCalls, s)
}

func blockID(b byte) ids.OLBlockID {
	return xhash.HashFromBytes([]byte{b})
}

func mkAccountState(balance uint64, seqno uint64) ledger.AccountState {
	return ledger.AccountState{
		Balance: bitcoinamount.Amount(balance),
		Type:    ledger.AccountTypeSnark,
		Snark:   &ledger.SnarkState{Seqno: seqno},
	}
}
