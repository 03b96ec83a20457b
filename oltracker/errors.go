package oltracker

import (
	"fmt"

	"github.com/pkg/errors"
)

// NoForkPointFoundError is fatal (spec §4.6 "Reorg handling", step 3): the
// search for a shared ancestor walked all the way to genesisEpoch without
// finding a stored state, which means local storage has fallen out of
// sync with the remote chain in a way this task cannot self-heal.
// Operational contract: the task supervisor panics/crashes the process.
type NoForkPointFoundError struct {
	GenesisEpoch uint32
}

func (e *NoForkPointFoundError) Error() string {
	return fmt.Sprintf("oltracker: no fork point found down to genesis epoch %d", e.GenesisEpoch)
}

// IsFatal reports whether err should crash the owning process rather than
// be logged and retried next cycle (spec §4.6, §5 "Fatal errors").
func IsFatal(err error) bool {
	var noFork *NoForkPointFoundError
	return errors.As(err, &noFork)
}

// PanicMessage renders a NoForkPointFoundError (or any fatal error) into
// the message the task supervisor's panic carries.
func PanicMessage(err error) string {
	return fmt.Sprintf("oltracker: fatal, manual intervention required: %s", err)
}
