// Package mmr implements an append-only Merkle Mountain Range: the
// accumulator used for the ASM manifest log and each account's SNARK
// message inbox. Leaves are never removed or reordered; the only mutation
// is Append.
//
// Position numbering: nodes (leaves and internal) are stored in the order
// they are created — a leaf gets the next position when appended, and each
// merge of two equal-height peaks creates a new internal node at the next
// position. This is the "peak stack" scheme described in SPEC_FULL.md §C.6:
// leaves occupy a subsequence of positions, and the peaks at any point in
// time correspond exactly to the set bits of the current leaf count, from
// most to least significant. The root is the peaks bagged right-to-left.
package mmr

import "github.com/olrollup/ol-stf/xhash"

// MMR is an append-only Merkle mountain range over 32-byte leaves.
type MMR struct {
	nodes   []xhash.Hash
	heights []uint32
	parent  []int64 // -1 while the node at this position is still a peak
	left    []int64 // left child of an internal node, -1 for leaves
	right   []int64 // right child of an internal node, -1 for leaves

	peaks         []uint64 // positions of current peaks, left-to-right (decreasing height)
	leafPositions []uint64 // leaf index -> position
}

// New returns an empty MMR.
func New() *MMR {
	return &MMR{}
}

// LeafCount returns the number of leaves appended so far.
func (m *MMR) LeafCount() uint64 {
	return uint64(len(m.leafPositions))
}

// Append adds a new leaf and returns its leaf index.
func (m *MMR) Append(leaf xhash.Hash) uint64 {
	leafIndex := uint64(len(m.leafPositions))
	pos := uint64(len(m.nodes))

	m.nodes = append(m.nodes, leaf)
	m.heights = append(m.heights, 0)
	m.parent = append(m.parent, -1)
	m.left = append(m.left, -1)
	m.right = append(m.right, -1)
	m.leafPositions = append(m.leafPositions, pos)
	m.peaks = append(m.peaks, pos)

	for len(m.peaks) >= 2 {
		last := m.peaks[len(m.peaks)-1]
		secondLast := m.peaks[len(m.peaks)-2]
		if m.heights[last] != m.heights[secondLast] {
			break
		}

		parentPos := uint64(len(m.nodes))
		parentHash := xhash.MMRNodeHash(m.nodes[secondLast], m.nodes[last])

		m.nodes = append(m.nodes, parentHash)
		m.heights = append(m.heights, m.heights[last]+1)
		m.parent = append(m.parent, -1)
		m.left = append(m.left, int64(secondLast))
		m.right = append(m.right, int64(last))

		m.parent[secondLast] = int64(parentPos)
		m.parent[last] = int64(parentPos)

		m.peaks = m.peaks[:len(m.peaks)-2]
		m.peaks = append(m.peaks, parentPos)
	}

	return leafIndex
}

// Get returns the node hash stored at a given tree position, if any. Used
// to validate a claimed leaf hash before generating a proof against it.
func (m *MMR) Get(pos uint64) (xhash.Hash, bool) {
	if pos >= uint64(len(m.nodes)) {
		return xhash.Hash{}, false
	}
	return m.nodes[pos], true
}

// GetLeaf returns the leaf hash at a given 0-based leaf index (as opposed
// to Get's tree position), if any.
func (m *MMR) GetLeaf(leafIndex uint64) (xhash.Hash, bool) {
	if leafIndex >= uint64(len(m.leafPositions)) {
		return xhash.Hash{}, false
	}
	return m.nodes[m.leafPositions[leafIndex]], true
}

// Root bags the current peaks right-to-left into a single root hash. An
// empty MMR has the zero root.
func (m *MMR) Root() xhash.Hash {
	if len(m.peaks) == 0 {
		return xhash.Zero
	}
	acc := m.nodes[m.peaks[len(m.peaks)-1]]
	for i := len(m.peaks) - 2; i >= 0; i-- {
		acc = xhash.MMRNodeHash(m.nodes[m.peaks[i]], acc)
	}
	return acc
}

// SiblingHash is one step of an inclusion proof's path to its local peak.
type SiblingHash struct {
	Hash   xhash.Hash
	IsLeft bool // true if Hash is the left child (the proven node is the right child)
}

// Proof is an inclusion proof for a single leaf against the MMR root at the
// time the proof was generated.
type Proof struct {
	LeafIndex    uint64
	LeafHash     xhash.Hash
	Siblings     []SiblingHash // path from the leaf up to its local peak
	OtherPeaks   []xhash.Hash  // every other peak, left-to-right
	PeakPosition int           // index at which the leaf's own peak belongs among OtherPeaks
}

// Proof builds an inclusion proof for the leaf at the given index.
func (m *MMR) Proof(leafIndex uint64) (Proof, error) {
	if leafIndex >= uint64(len(m.leafPositions)) {
		return Proof{}, &LeafNotFoundError{LeafIndex: leafIndex}
	}

	pos := m.leafPositions[leafIndex]
	leafHash := m.nodes[pos]

	var siblings []SiblingHash
	cur := int64(pos)
	for m.parent[cur] != -1 {
		p := m.parent[cur]
		var sib SiblingHash
		if m.left[p] == cur {
			sib = SiblingHash{Hash: m.nodes[m.right[p]], IsLeft: false}
		} else {
			sib = SiblingHash{Hash: m.nodes[m.left[p]], IsLeft: true}
		}
		siblings = append(siblings, sib)
		cur = p
	}

	peakPos := uint64(cur)
	peakIdx := -1
	otherPeaks := make([]xhash.Hash, 0, len(m.peaks)-1)
	for i, p := range m.peaks {
		if p == peakPos {
			peakIdx = i
			continue
		}
		otherPeaks = append(otherPeaks, m.nodes[p])
	}

	return Proof{
		LeafIndex:    leafIndex,
		LeafHash:     leafHash,
		Siblings:     siblings,
		OtherPeaks:   otherPeaks,
		PeakPosition: peakIdx,
	}, nil
}

// RangeProof builds inclusion proofs for every leaf in [start, end]
// inclusive, returned as a flat sequence in ascending leaf-index order.
func (m *MMR) RangeProof(start, end uint64) ([]Proof, error) {
	if end < start || end >= uint64(len(m.leafPositions)) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}
	proofs := make([]Proof, 0, end-start+1)
	for i := start; i <= end; i++ {
		p, err := m.Proof(i)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, nil
}

// Verify checks an inclusion proof against a root hash.
func Verify(proof Proof, root xhash.Hash) bool {
	cur := proof.LeafHash
	for _, sib := range proof.Siblings {
		if sib.IsLeft {
			cur = xhash.MMRNodeHash(sib.Hash, cur)
		} else {
			cur = xhash.MMRNodeHash(cur, sib.Hash)
		}
	}

	if proof.PeakPosition < 0 || proof.PeakPosition > len(proof.OtherPeaks) {
		return false
	}

	peaks := make([]xhash.Hash, len(proof.OtherPeaks)+1)
	copy(peaks, proof.OtherPeaks[:proof.PeakPosition])
	peaks[proof.PeakPosition] = cur
	copy(peaks[proof.PeakPosition+1:], proof.OtherPeaks[proof.PeakPosition:])

	if len(peaks) == 0 {
		return false
	}
	acc := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i-- {
		acc = xhash.MMRNodeHash(peaks[i], acc)
	}
	return acc == root
}
