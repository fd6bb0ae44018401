// Package minhash builds fixed-length MinHash signatures from shingle
// sets and estimates Jaccard similarity from two signatures.
//
// Reproducibility is the core contract here (spec §4.4, §9): the P
// permutations are derived once from a master seed via a deterministic
// pseudo-random sequence (Go's math/rand with a fixed source, never
// crypto/rand or a time-based seed), so two processes of this
// implementation — on any host, in any order — build byte-identical
// signatures from identical shingle sets. Matching a prior Python/numpy
// implementation's bit-exact permutation stream is not attempted: numpy's
// Mersenne Twister and Go's math/rand diverge from the same seed. What is
// preserved exactly is the wire-level contract spec §4.4/§6 actually
// requires for interoperability: MurmurHash3-32 (seed 0) shingle hashes,
// the decimal-ASCII byte encoding of each shingle integer on update,
// master seed 42, P=128, and the JSON-array-of-uint64 wire format.
package minhash

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"math/rand"
	"strconv"

	"github.com/soundprediction/plagiarismguard/pkg/shingle"
)

// DefaultSeed is the fixed master seed used to derive permutations (spec
// §6 MINHASH_SEED).
const DefaultSeed = 42

// DefaultPermutations is P, the signature length (spec §6
// MINHASH_PERMUTATIONS).
const DefaultPermutations = 128

// mersennePrime is the modulus used for the universal hash permutations,
// matching the well-known MinHash construction (2^61 - 1).
const mersennePrime = (uint64(1) << 61) - 1

// maxHash bounds every permuted hash value to the 32-bit range the
// underlying shingle hash space occupies, even though each signature slot
// is stored as a 64-bit unsigned value (spec §3).
const maxHash = (uint64(1) << 32) - 1

// ErrEmptyInput is returned by Signature when the shingle set is empty.
var ErrEmptyInput = errors.New("minhash: empty shingle set")

// Sig is a MinHash signature: a fixed-length vector of P 64-bit unsigned
// values, one per-permutation minimum.
type Sig []uint64

// Permutations holds the P (a, b) coefficient pairs used to build
// signatures. Two Permutations built from the same seed and P are
// identical, which is what makes signatures reproducible.
type Permutations struct {
	seed uint64
	a    []uint64
	b    []uint64
}

// NewPermutations derives P permutation coefficients deterministically
// from seed.
func NewPermutations(seed uint64, p int) *Permutations {
	src := rand.New(rand.NewSource(int64(seed)))
	a := make([]uint64, p)
	b := make([]uint64, p)
	for i := 0; i < p; i++ {
		// a in [1, mersennePrime), b in [0, mersennePrime)
		a[i] = 1 + uint64(src.Int63())%(mersennePrime-1)
		b[i] = uint64(src.Int63()) % mersennePrime
	}
	return &Permutations{seed: seed, a: a, b: b}
}

// P returns the number of permutations (the signature length).
func (pm *Permutations) P() int {
	return len(pm.a)
}

// Signature builds a MinHash signature from a shingle set using pm's
// permutations. It fails with ErrEmptyInput if the set is empty.
func (pm *Permutations) Signature(shingles shingle.Set) (Sig, error) {
	if len(shingles) == 0 {
		return nil, ErrEmptyInput
	}

	p := pm.P()
	sig := make(Sig, p)
	for i := range sig {
		sig[i] = maxHash
	}

	for shingleHash := range shingles {
		hv := updateHash(shingleHash)
		for i := 0; i < p; i++ {
			phv := (pm.a[i]*hv + pm.b[i]) % mersennePrime
			phv &= maxHash
			if phv < sig[i] {
				sig[i] = phv
			}
		}
	}

	return sig, nil
}

// updateHash reproduces the source's update contract (spec §4.4): the
// byte representation of a shingle integer is its decimal ASCII form
// (str(int).encode('utf-8')), which is then hashed down to a 32-bit
// unsigned value via the first 4 bytes of its SHA-1 digest,
// little-endian.
func updateHash(shingleHash uint32) uint64 {
	decimal := strconv.FormatUint(uint64(shingleHash), 10)
	digest := sha1.Sum([]byte(decimal))
	return uint64(binary.LittleEndian.Uint32(digest[:4]))
}

// Jaccard returns the fraction of permutation slots where a[i] == b[i],
// the MinHash estimator of Jaccard similarity. It panics if the
// signatures differ in length, which indicates a programming error (a
// signature of the wrong length should have been rejected at
// construction/load time, not compared).
func Jaccard(a, b Sig) float64 {
	if len(a) != len(b) {
		panic("minhash: signature length mismatch")
	}
	if len(a) == 0 {
		return 0
	}

	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}
