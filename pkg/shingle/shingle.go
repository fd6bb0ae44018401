// Package shingle builds k-gram shingle sets from a token sequence,
// hashed to 32-bit integers with MurmurHash3-32.
package shingle

import (
	"strings"

	"github.com/spaolacci/murmur3"
)

// DefaultSize is the default shingle window size (spec §4.3, §6
// SHINGLE_SIZE).
const DefaultSize = 7

// Set is an unordered set of 32-bit shingle hashes.
type Set map[uint32]struct{}

// Shingles builds the shingle set for tokens with window size k. For
// i in [0, n-k], it hashes join(" ", tokens[i:i+k]) with MurmurHash3-32
// (seed 0, unsigned) and adds the result to the set. If len(tokens) < k,
// the set contains the single hash of the full joined token string. An
// empty token sequence yields an empty set.
func Shingles(tokens []string, k int) Set {
	if k <= 0 {
		k = DefaultSize
	}
	if len(tokens) == 0 {
		return Set{}
	}

	if len(tokens) < k {
		set := make(Set, 1)
		set[hashWindow(tokens)] = struct{}{}
		return set
	}

	n := len(tokens) - k + 1
	set := make(Set, n)
	for i := 0; i <= len(tokens)-k; i++ {
		set[hashWindow(tokens[i:i+k])] = struct{}{}
	}
	return set
}

func hashWindow(window []string) uint32 {
	joined := strings.Join(window, " ")
	return murmur3.Sum32WithSeed([]byte(joined), 0)
}

// Slice returns the set's members as a slice, in no particular order.
func (s Set) Slice() []uint32 {
	out := make([]uint32, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	return out
}
