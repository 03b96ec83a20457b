package oltracker

import "context"

// Client is the remote OL chain surface the tracker polls. Implementations
// talk to whatever transport fronts the real OL node (RPC, p2p gossip);
// the tracker only ever calls these two methods.
type Client interface {
	// ChainStatus returns the remote chain's current head commitments.
	ChainStatus(ctx context.Context) (ChainStatus, error)
	// EpochSummary returns the summary committed at the given epoch number.
	EpochSummary(ctx context.Context, epoch uint32) (EpochSummary, error)
}
