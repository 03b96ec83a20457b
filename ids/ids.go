// Package ids defines the commitment types that identify L1 blocks, OL
// blocks and epochs, shared by the block, state, asm and unfinalized
// packages.
package ids

import (
	"bytes"
	"fmt"

	"github.com/olrollup/ol-stf/xhash"
)

// L1BlockID is a double-SHA256 commitment to an 80-byte Bitcoin header.
type L1BlockID = xhash.Hash

// OLBlockID is a tree-hash commitment to an OL block's canonical header
// encoding.
type OLBlockID = xhash.Hash

// MaxL1Height bounds L1BlockCommitment.Height, following Bitcoin's own
// nLockTime threshold convention.
const MaxL1Height uint32 = 500_000_000

// InvalidL1HeightError is returned by NewL1BlockCommitment when a height is
// at or beyond MaxL1Height.
type InvalidL1HeightError struct {
	Height uint32
}

func (e *InvalidL1HeightError) Error() string {
	return fmt.Sprintf("ids: l1 height %d exceeds bound %d", e.Height, MaxL1Height)
}

// L1BlockCommitment pins a height to an L1 block id. Ordering is
// lexicographic by (height, id).
type L1BlockCommitment struct {
	Height uint32
	ID     L1BlockID
}

// NewL1BlockCommitment validates height against MaxL1Height before
// constructing the commitment.
func NewL1BlockCommitment(height uint32, id L1BlockID) (L1BlockCommitment, error) {
	if height >= MaxL1Height {
		return L1BlockCommitment{}, &InvalidL1HeightError{Height: height}
	}
	return L1BlockCommitment{Height: height, ID: id}, nil
}

// Less implements the spec's lexicographic-by-(height,id) ordering.
func (a L1BlockCommitment) Less(b L1BlockCommitment) bool {
	if a.Height != b.Height {
		return a.Height < b.Height
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// String renders "height@first2..last2" using the L1 little-endian hex
// display convention, matching the original implementation's Display impl.
func (a L1BlockCommitment) String() string {
	h := a.ID.L1Hex()
	if len(h) < 4 {
		return fmt.Sprintf("%d@%s", a.Height, h)
	}
	return fmt.Sprintf("%d@%s..%s", a.Height, h[:4], h[len(h)-4:])
}

// OLBlockCommitment pins a slot to an OL block id.
type OLBlockCommitment struct {
	Slot uint64
	ID   OLBlockID
}

// EpochCommitment pins an epoch number to the OL block id that terminates
// it.
type EpochCommitment struct {
	Epoch uint32
	ID    OLBlockID
}
