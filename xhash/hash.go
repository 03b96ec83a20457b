// Package xhash defines the 32-byte hash type shared by every commitment in
// the system (L1 block ids, OL block ids, account ids, MMR nodes, state
// roots) and the two hashing primitives used to derive them: Bitcoin-style
// double-SHA256 for anything that crosses the L1 boundary, and a
// domain-separated keyed tree-hash (built on SHA3-256, following the
// x/crypto/sha3 this module's dependency graph already carries) for
// everything internal to the OL side.
package xhash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Hash is an opaque 32-byte digest. It backs L1BlockId, OLBlockId,
// AccountId and every MMR/tree-hash commitment in the system.
type Hash [32]byte

// Zero is the all-zero hash, used for the parent id of genesis and for
// empty-MMR roots.
var Zero Hash

// Bytes returns a copy of the underlying 32 bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, 32)
	copy(b, h[:])
	return b
}

// Hex renders the hash as big-endian hex, the default for every commitment
// that doesn't cross the L1 boundary (OL block ids, account ids, tree-hash
// roots).
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// L1Hex renders the hash reversed, i.e. little-endian hex — the Bitcoin
// display convention used for L1BlockId's Display/Debug output.
func (h Hash) L1Hex() string {
	rev := make([]byte, 32)
	for i, b := range h {
		rev[31-i] = b
	}
	return hex.EncodeToString(rev)
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// HashFromBytes copies up to 32 bytes of b into a Hash, zero-padding on the
// right if b is shorter.
func HashFromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// DoubleSHA256 computes SHA256(SHA256(data)), the digest used for L1 block
// ids (Bitcoin's own header-hashing convention).
func DoubleSHA256(data []byte) Hash {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return Hash(second)
}

// Hash-domain tags. Separating the MMR internal-node domain from the
// general tree-hash domain prevents a malicious prover from re-interpreting
// a leaf encoding as an internal node (a second-preimage trick classic to
// unkeyed Merkle trees).
const (
	domainMMRNode byte = 0x01
	domainTree    byte = 0x02
)

func keyedHash(domain byte, parts ...[]byte) Hash {
	h := sha3.New256()
	h.Write([]byte{domain})
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// MMRNodeHash computes the internal-node hash of an MMR given its two
// children, left then right.
func MMRNodeHash(left, right Hash) Hash {
	return keyedHash(domainMMRNode, left[:], right[:])
}

// TreeHash computes a domain-separated keyed hash over an arbitrary ordered
// sequence of byte fields. It underlies every non-L1 commitment: OL block
// ids, the ledger root, account leaf hashes and the OL state root.
func TreeHash(parts ...[]byte) Hash {
	return keyedHash(domainTree, parts...)
}

// PutUint64BE appends the big-endian encoding of v to dst and returns the
// result, a small helper used throughout the tree-hash call sites so field
// encodings are consistent across packages.
func PutUint64BE(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// PutUint32BE appends the big-endian encoding of v to dst and returns the
// result.
func PutUint32BE(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}
