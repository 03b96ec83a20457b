package oltracker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/olrollup/ol-stf/ids"
	"github.com/olrollup/ol-stf/ledger"
)

// findForkPoint searches epochs from latestConfirmed down to genesisEpoch
// for the last one whose terminal block state this tracker has stored
// locally — the last common ancestor between local storage and the remote
// chain (spec §4.6, "Reorg handling" step 2).
func findForkPoint(ctx context.Context, storage Storage, client Client, genesisEpoch, latestConfirmed uint32, log logrus.FieldLogger) (*ids.EpochCommitment, *ledger.AccountState, error) {
	if genesisEpoch > latestConfirmed {
		log.WithFields(logrus.Fields{"genesis_epoch": genesisEpoch, "latest_confirmed": latestConfirmed}).
			Warn("empty search range: genesis epoch is beyond latest confirmed epoch")
		return nil, nil, nil
	}

	for epoch := latestConfirmed; ; {
		log.WithField("epoch", epoch).Debug("checking epoch for fork point")

		summary, err := client.EpochSummary(ctx, epoch)
		if err != nil {
			return nil, nil, err
		}

		state, found, err := storage.EeAccountState(ctx, summary.Epoch.ID)
		if err != nil {
			return nil, nil, err
		}
		if found {
			log.WithField("epoch", epoch).Info("found fork point")
			commitment := summary.Epoch
			return &commitment, state, nil
		}

		if epoch == genesisEpoch {
			break
		}
		epoch--
	}
	return nil, nil, nil
}

// rollbackToForkPoint builds the next tracker state from the fork point
// before touching storage, then rolls back persisted state past the fork
// epoch, and only then swaps the in-memory state — per spec §4.6's
// atomicity contract, storage rollback MUST be the last fallible step
// before state mutation.
func rollbackToForkPoint(ctx context.Context, state *State, storage Storage, forkEpoch ids.EpochCommitment, forkState ledger.AccountState, status ChainStatus, log logrus.FieldLogger) error {
	log.WithField("epoch", forkEpoch.Epoch).Info("rolling back to fork point")

	next := buildTrackerState(forkEpoch, forkState, status)

	if err := storage.RollbackEeAccountState(ctx, forkEpoch); err != nil {
		return errors.Wrap(err, "rollback ee account state")
	}
	*state = next
	return nil
}

// handleReorg orchestrates a full reorg: find the fork point, and if one
// exists, roll back to it. NoForkPointFoundError is fatal (spec §4.6 step
// 3) and must be surfaced to the task supervisor, not retried silently.
// handleReorg returns the epoch it rolled back to, so callers can record
// fork-depth metrics; the returned epoch is nil whenever err is non-nil.
func handleReorg(ctx context.Context, state *State, client Client, storage Storage, genesisEpoch uint32, notifier Notifier, log logrus.FieldLogger) (*ids.EpochCommitment, error) {
	status, err := client.ChainStatus(ctx)
	if err != nil {
		return nil, err
	}

	forkEpoch, forkState, err := findForkPoint(ctx, storage, client, genesisEpoch, status.Confirmed.Epoch, log)
	if err != nil {
		return nil, err
	}
	if forkEpoch == nil {
		log.WithField("genesis_epoch", genesisEpoch).Error("reorg: could not find ol fork epoch till ol genesis epoch")
		return nil, &NoForkPointFoundError{GenesisEpoch: genesisEpoch}
	}

	log.WithField("epoch", forkEpoch.Epoch).Warn("reorg: found fork point, starting db rollback")
	if err := rollbackToForkPoint(ctx, state, storage, *forkEpoch, *forkState, status, log); err != nil {
		return nil, err
	}

	notifier.NotifyOLStatusUpdate(*state)
	notifier.NotifyConsensusUpdate(*state)
	log.Info("reorg: reorg complete")
	return forkEpoch, nil
}
