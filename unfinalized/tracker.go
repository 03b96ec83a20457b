// Package unfinalized tracks the set of unfinalized OL blocks between the
// last finalized block and the current best tip: a small in-memory reorg
// engine that accepts out-of-order block attachments, tracks every
// competing tip, and prunes everything off the finalized chain once a new
// block is finalized.
package unfinalized

import (
	"sort"

	"github.com/olrollup/ol-stf/xhash"
)

// BlockNumHash pins a height to a block hash.
type BlockNumHash struct {
	Hash   xhash.Hash
	Height uint64
}

// BlockEntry is the chain-linkage metadata the tracker needs for one block:
// its own height and hash, and its parent's hash.
type BlockEntry struct {
	Height uint64
	Hash   xhash.Hash
	Parent xhash.Hash
}

// AttachOutcome tags the result of Tracker.AttachBlock.
type AttachOutcome int

const (
	// AttachOk means the block was attached and tips/best were updated.
	AttachOk AttachOutcome = iota
	// AttachExisting means the block hash was already tracked; a noop.
	AttachExisting
	// AttachBelowFinalized means the block's height is below the tracker's
	// finalized height; it cannot be attached.
	AttachBelowFinalized
	// AttachOrphan means the block's parent is neither a tracked block nor
	// an active tip; it cannot be attached until its parent arrives.
	AttachOrphan
)

// AttachResult is the full outcome of one AttachBlock call.
type AttachResult struct {
	Outcome AttachOutcome
	// Best is the tracker's best tip after a successful attach (Outcome ==
	// AttachOk). Zero otherwise.
	Best xhash.Hash
	// Entry is the rejected block, present for AttachBelowFinalized and
	// AttachOrphan so the caller can log or requeue it.
	Entry BlockEntry
}

// Tracker tracks unfinalized blocks between the last finalized block and
// the best (highest) chain tip. It maintains every active tip, not just the
// canonical one, so a competing fork can be attached and later win without
// replaying history.
type Tracker struct {
	finalized BlockNumHash
	best      BlockNumHash
	tips      map[xhash.Hash]uint64
	blocks    map[xhash.Hash]BlockEntry
}

// NewEmpty creates a tracker rooted at finalizedBlock: both its finalized
// pointer and its sole tip/tracked block.
func NewEmpty(finalizedBlock BlockEntry) *Tracker {
	numHash := BlockNumHash{Hash: finalizedBlock.Hash, Height: finalizedBlock.Height}
	return &Tracker{
		finalized: numHash,
		best:      numHash,
		tips:      map[xhash.Hash]uint64{finalizedBlock.Hash: finalizedBlock.Height},
		blocks:    map[xhash.Hash]BlockEntry{finalizedBlock.Hash: finalizedBlock},
	}
}

// AttachBlock attempts to attach entry to the tracker, in the same 4-branch
// order the reference chain tracker uses: reject if already known, reject
// if below the finalized height, extend an existing tip if entry's parent
// is one, otherwise fork off a tracked ancestor; anything else is an
// orphan.
func (t *Tracker) AttachBlock(entry BlockEntry) AttachResult {
	if _, exists := t.blocks[entry.Hash]; exists {
		return AttachResult{Outcome: AttachExisting}
	}

	if entry.Height < t.finalized.Height {
		return AttachResult{Outcome: AttachBelowFinalized, Entry: entry}
	}

	if _, isTip := t.tips[entry.Parent]; isTip {
		t.blocks[entry.Hash] = entry
		delete(t.tips, entry.Parent)
		t.tips[entry.Hash] = entry.Height
		t.best = t.computeBestTip()
		return AttachResult{Outcome: AttachOk, Best: t.best.Hash}
	}

	if _, known := t.blocks[entry.Parent]; known {
		t.blocks[entry.Hash] = entry
		t.tips[entry.Hash] = entry.Height
		t.best = t.computeBestTip()
		return AttachResult{Outcome: AttachOk, Best: t.best.Hash}
	}

	return AttachResult{Outcome: AttachOrphan, Entry: entry}
}

// computeBestTip folds over every active tip and keeps the current best on
// ties, matching the reference implementation's fold order exactly (first
// strictly-higher tip replaces, equal height never does).
func (t *Tracker) computeBestTip() BlockNumHash {
	best := t.best
	for hash, height := range t.tips {
		if height > best.Height {
			best = BlockNumHash{Hash: hash, Height: height}
		}
	}
	return best
}

// ContainsBlock reports whether hash is tracked (finalized or unfinalized).
func (t *Tracker) ContainsBlock(hash xhash.Hash) bool {
	_, ok := t.blocks[hash]
	return ok
}

// Finalized returns the tracker's current finalized block.
func (t *Tracker) Finalized() BlockNumHash {
	return t.finalized
}

// Best returns the tracker's current best (highest) chain tip.
func (t *Tracker) Best() BlockNumHash {
	return t.best
}

// IsCanonical reports whether hash lies on the path from the finalized
// block to the current best tip (inclusive of both endpoints).
func (t *Tracker) IsCanonical(hash xhash.Hash) bool {
	if hash == t.finalized.Hash {
		return true
	}
	if !t.ContainsBlock(hash) {
		return false
	}

	current := t.best.Hash
	for current != t.finalized.Hash {
		if current == hash {
			return true
		}
		entry, ok := t.blocks[current]
		if !ok {
			return false
		}
		current = entry.Parent
	}
	return false
}

// FinalizeReport summarizes the effect of a PruneFinalized call: blocks
// that became newly finalized (in canonical, oldest-first order) and
// blocks that were pruned because they no longer extend the finalized
// chain.
type FinalizeReport struct {
	Finalized []xhash.Hash
	Removed   []xhash.Hash
}

// PruneFinalized advances the finalized pointer to newFinalized and drops
// every block that does not descend from it. The tracker is rebuilt from
// scratch by replaying every remaining tracked block (sorted by height)
// against a fresh tracker rooted at newFinalized — simpler and less
// error-prone than surgically repointing tips in place.
func (t *Tracker) PruneFinalized(newFinalized xhash.Hash) (FinalizeReport, error) {
	if newFinalized == t.finalized.Hash {
		return FinalizeReport{}, nil
	}

	newFinalizedEntry, ok := t.blocks[newFinalized]
	if !ok {
		return FinalizeReport{}, &UnknownBlockError{Hash: newFinalized}
	}
	delete(t.blocks, newFinalized)

	finalizedCount := newFinalizedEntry.Height - t.finalized.Height
	finalizedHashes := make([]xhash.Hash, 0, finalizedCount)
	walk := newFinalizedEntry
	for i := uint64(0); i < finalizedCount; i++ {
		finalizedHashes = append(finalizedHashes, walk.Hash)
		parent, ok := t.blocks[walk.Parent]
		if !ok {
			return FinalizeReport{}, &InvalidStateError{}
		}
		delete(t.blocks, walk.Parent)
		walk = parent
	}
	if walk.Hash != t.finalized.Hash {
		return FinalizeReport{}, &InvalidStateError{}
	}

	remaining := make([]BlockEntry, 0, len(t.blocks))
	for _, entry := range t.blocks {
		remaining = append(remaining, entry)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Height < remaining[j].Height })

	fresh := NewEmpty(newFinalizedEntry)
	removed := make([]xhash.Hash, 0)
	for _, entry := range remaining {
		result := fresh.AttachBlock(entry)
		switch result.Outcome {
		case AttachOrphan, AttachBelowFinalized:
			removed = append(removed, result.Entry.Hash)
		case AttachOk:
		default:
			return FinalizeReport{}, &InvalidStateError{}
		}
	}

	*t = *fresh

	for i, j := 0, len(finalizedHashes)-1; i < j; i, j = i+1, j-1 {
		finalizedHashes[i], finalizedHashes[j] = finalizedHashes[j], finalizedHashes[i]
	}

	return FinalizeReport{Finalized: finalizedHashes, Removed: removed}, nil
}
