package oltracker

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/olrollup/ol-stf/block"
	"github.com/olrollup/ol-stf/ids"
)

// ActionKind tags which branch trackOLState decided on.
type ActionKind int

const (
	// ActionNoop means the local view is already in sync (or, in the
	// should-not-happen case, ahead of the remote chain).
	ActionNoop ActionKind = iota
	// ActionExtend means one or more new epochs are ready to apply.
	ActionExtend
	// ActionReorg means the local tip has diverged from the remote chain
	// and must be resolved via findForkPoint/rollback.
	ActionReorg
)

// EpochOperations pairs one epoch's terminal commitment with the ordered
// update operations it committed.
type EpochOperations struct {
	Epoch      ids.EpochCommitment
	Operations []block.SnarkUpdateData
}

// Action is track_ol_state's decision for one polling cycle.
type Action struct {
	Kind        ActionKind
	Epochs      []EpochOperations // set iff Kind == ActionExtend
	ChainStatus ChainStatus       // set iff Kind == ActionExtend
}

// trackOLState implements spec §4.6's per-cycle decision: compare the
// remote confirmed epoch to the local best, and decide whether to noop,
// extend with a batch of new epochs, or trigger a reorg.
func trackOLState(ctx context.Context, state State, client Client, maxEpochsFetch uint32, log logrus.FieldLogger) (Action, error) {
	status, err := client.ChainStatus(ctx)
	if err != nil {
		return Action{}, err
	}

	bestOLEpoch := status.Confirmed.Epoch
	bestLocalEpoch := state.BestOLEpoch().Epoch

	log.WithFields(logrus.Fields{"best_local_epoch": bestLocalEpoch, "best_ol_epoch": bestOLEpoch}).
		Debug("checking best ol confirmed epoch")

	if bestOLEpoch < bestLocalEpoch {
		log.WithFields(logrus.Fields{"local": bestLocalEpoch, "ol": bestOLEpoch}).
			Warn("local view of chain is ahead of ol, should not typically happen")
		return Action{Kind: ActionNoop}, nil
	}

	if bestOLEpoch == bestLocalEpoch {
		if status.Confirmed.ID != state.BestOLEpoch().ID {
			log.WithFields(logrus.Fields{
				"epoch": bestOLEpoch,
				"ol":    status.Confirmed.ID.Hex(),
				"local": state.BestOLEpoch().ID.Hex(),
			}).Warn("detected chain mismatch, triggering reorg")
			return Action{Kind: ActionReorg}, nil
		}
		return Action{Kind: ActionNoop}, nil
	}

	// bestOLEpoch > bestLocalEpoch: local is behind, fetch and extend.
	fetchCount := bestOLEpoch - bestLocalEpoch
	if fetchCount > maxEpochsFetch {
		fetchCount = maxEpochsFetch
	}

	epochOps := make([]EpochOperations, 0, fetchCount)
	expectedPrev := state.BestOLEpoch()

	for count := uint32(1); count <= fetchCount; count++ {
		epochNum := bestLocalEpoch + count
		summary, err := client.EpochSummary(ctx, epochNum)
		if err != nil {
			return Action{}, err
		}

		if summary.PrevEpoch != expectedPrev {
			if epochNum == bestLocalEpoch+1 {
				log.WithFields(logrus.Fields{
					"epoch":         epochNum,
					"expected_prev": expectedPrev.Epoch,
					"actual_prev":   summary.PrevEpoch.Epoch,
				}).Warn("local chain state invalid, triggering reorg")
				return Action{Kind: ActionReorg}, nil
			}
			log.WithFields(logrus.Fields{
				"epoch":         epochNum,
				"expected_prev": expectedPrev.Epoch,
				"actual_prev":   summary.PrevEpoch.Epoch,
			}).Debug("chain discontinuity detected, stopping batch fetch")
			break
		}

		epochOps = append(epochOps, EpochOperations{Epoch: summary.Epoch, Operations: summary.Updates})
		expectedPrev = summary.Epoch
	}

	return Action{Kind: ActionExtend, Epochs: epochOps, ChainStatus: status}, nil
}
