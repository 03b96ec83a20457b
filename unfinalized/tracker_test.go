package unfinalized

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olrollup/ol-stf/xhash"
)

func hashFromByte(b byte) xhash.Hash {
	var h xhash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func mkEntry(height uint64, hash, parent xhash.Hash) BlockEntry {
	return BlockEntry{Height: height, Hash: hash, Parent: parent}
}

func TestAttachBlockToFinalized(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	block1 := mkEntry(1, hashFromByte(1), hashFromByte(0))
	result := tr.AttachBlock(block1)

	assert.Equal(t, AttachOk, result.Outcome)
	assert.Equal(t, hashFromByte(1), tr.Best().Hash)
	assert.True(t, tr.ContainsBlock(hashFromByte(1)))
}

func TestAttachLinearChain(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	tr.AttachBlock(mkEntry(1, hashFromByte(1), hashFromByte(0)))
	tr.AttachBlock(mkEntry(2, hashFromByte(2), hashFromByte(1)))
	tr.AttachBlock(mkEntry(3, hashFromByte(3), hashFromByte(2)))

	assert.Equal(t, hashFromByte(3), tr.Best().Hash)
	assert.Equal(t, uint64(3), tr.Best().Height)
}

func TestAttachFork(t *testing.T) {
	//     0 (finalized)
	//    / \
	//   1   2
	//   |
	//   3
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	tr.AttachBlock(mkEntry(1, hashFromByte(1), hashFromByte(0)))
	tr.AttachBlock(mkEntry(1, hashFromByte(2), hashFromByte(0)))
	assert.True(t, tr.ContainsBlock(hashFromByte(1)))
	assert.True(t, tr.ContainsBlock(hashFromByte(2)))

	result := tr.AttachBlock(mkEntry(2, hashFromByte(3), hashFromByte(1)))
	require.Equal(t, AttachOk, result.Outcome)
	assert.Equal(t, hashFromByte(3), tr.Best().Hash)
	assert.Equal(t, uint64(2), tr.Best().Height)

	assert.True(t, tr.IsCanonical(hashFromByte(1)))
	assert.True(t, tr.IsCanonical(hashFromByte(3)))
	assert.False(t, tr.IsCanonical(hashFromByte(2)))
}

func TestAttachExistingBlockIsNoop(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	block1 := mkEntry(1, hashFromByte(1), hashFromByte(0))
	tr.AttachBlock(block1)
	result := tr.AttachBlock(block1)
	assert.Equal(t, AttachExisting, result.Outcome)
}

func TestAttachBelowFinalizedRejected(t *testing.T) {
	finalized := mkEntry(5, hashFromByte(5), hashFromByte(4))
	tr := NewEmpty(finalized)

	stale := mkEntry(3, hashFromByte(3), hashFromByte(2))
	result := tr.AttachBlock(stale)
	assert.Equal(t, AttachBelowFinalized, result.Outcome)
}

func TestAttachOrphanRejected(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	orphan := mkEntry(5, hashFromByte(9), hashFromByte(8))
	result := tr.AttachBlock(orphan)
	assert.Equal(t, AttachOrphan, result.Outcome)
}

func TestIsCanonicalOnFinalizedBlock(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)
	assert.True(t, tr.IsCanonical(hashFromByte(0)))
	assert.False(t, tr.IsCanonical(hashFromByte(99)))
}

func TestPruneFinalizedAdvancesAndDropsForks(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	tr.AttachBlock(mkEntry(1, hashFromByte(1), hashFromByte(0)))
	tr.AttachBlock(mkEntry(2, hashFromByte(2), hashFromByte(1)))
	tr.AttachBlock(mkEntry(1, hashFromByte(11), hashFromByte(0))) // competing fork at height 1

	report, err := tr.PruneFinalized(hashFromByte(1))
	require.NoError(t, err)
	assert.Equal(t, []xhash.Hash{hashFromByte(1)}, report.Finalized)
	assert.Contains(t, report.Removed, hashFromByte(11))
	assert.Equal(t, hashFromByte(1), tr.Finalized().Hash)
	assert.True(t, tr.ContainsBlock(hashFromByte(2)))
	assert.False(t, tr.ContainsBlock(hashFromByte(11)))
}

func TestPruneFinalizedNoopWhenAlreadyFinalized(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	report, err := tr.PruneFinalized(hashFromByte(0))
	require.NoError(t, err)
	assert.Empty(t, report.Finalized)
	assert.Empty(t, report.Removed)
}

func TestPruneFinalizedUnknownBlockErrors(t *testing.T) {
	finalized := mkEntry(0, hashFromByte(0), hashFromByte(0))
	tr := NewEmpty(finalized)

	_, err := tr.PruneFinalized(hashFromByte(77))
	require.Error(t, err)
	var unknown *UnknownBlockError
	require.ErrorAs(t, err, &unknown)
}
