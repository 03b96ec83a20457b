package oltracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatalTrueForNoForkPointFound(t *testing.T) {
	err := &NoForkPointFoundError{GenesisEpoch: 12}
	assert.True(t, IsFatal(err))
}

func TestIsFatalFalseForOtherErrors(t *testing.T) {
	assert.False(t, IsFatal(errors.New("transient rpc timeout")))
}

func TestPanicMessageIncludesUnderlyingError(t *testing.T) {
	err := &NoForkPointFoundError{GenesisEpoch: 7}
	msg := PanicMessage(err)
	assert.Contains(t, msg, "7")
	assert.Contains(t, msg, "fatal")
}
