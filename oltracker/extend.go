package oltracker

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pkg/errors"
)

// handleExtendEEState applies epochOps in ascending epoch order, each
// following the 5-step atomicity discipline of spec §4.6 "Extension
// apply": clone+apply, build the next in-memory state, persist, only then
// swap state, then notify. Any failure in steps 1-3 of one epoch stops the
// loop and leaves *state exactly as it was for that epoch onward; whatever
// prior epochs in this same call already completed remain applied.
func handleExtendEEState(ctx context.Context, epochOps []EpochOperations, status ChainStatus, state *State, storage Storage, notifier Notifier, log logrus.FieldLogger) error {
	for _, epochOp := range epochOps {
		eeState := state.BestEEState()

		// 1. Apply all operations in the epoch to the local mirror.
		if err := applyEpochOperations(&eeState, epochOp.Operations); err != nil {
			log.WithError(err).WithField("epoch", epochOp.Epoch.Epoch).Error("failed to apply ol epoch operations")
			return errors.Wrap(err, "apply epoch operations")
		}

		// 2. Build next tracker state in memory.
		next := buildTrackerState(epochOp.Epoch, eeState, status)

		// 3. Atomically persist the ee state for this epoch.
		if err := storage.StoreEeAccountState(ctx, epochOp.Epoch, eeState); err != nil {
			log.WithError(err).WithField("epoch", epochOp.Epoch.Epoch).Error("failed to store ee account state")
			return errors.Wrap(err, "store ee account state")
		}

		// 4. Only now overwrite the in-memory state.
		*state = next

		// 5. Notify watchers.
		notifier.NotifyOLStatusUpdate(*state)
		notifier.NotifyConsensusUpdate(*state)
	}
	return nil
}
