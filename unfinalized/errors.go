package unfinalized

import (
	"fmt"

	"github.com/olrollup/ol-stf/xhash"
)

// UnknownBlockError is returned when a prune request names a hash the
// tracker has never seen.
type UnknownBlockError struct {
	Hash xhash.Hash
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("unfinalized: unknown block %s", e.Hash.Hex())
}

// InvalidStateError is returned when a prune walk fails to land back on the
// previously finalized block — a sign the tracker's internal bookkeeping has
// desynchronized from the chain it is supposed to mirror.
type InvalidStateError struct{}

func (e *InvalidStateError) Error() string {
	return "unfinalized: invalid tracker state: prune walk did not reach the prior finalized block"
}
