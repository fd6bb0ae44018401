// Package lsh implements the banded Locality-Sensitive-Hashing index: a
// doc_id -> signature map plus B band tables supporting insert, query, and
// remove (spec §4.5). The index is the system's only shared mutable state
// (spec §5): inserts and removes take an exclusive lock, queries and stats
// take a shared one, and a writer never leaves a document partially
// visible to a concurrent reader.
package lsh

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/soundprediction/plagiarismguard/pkg/concurrent"
	"github.com/soundprediction/plagiarismguard/pkg/minhash"
)

// DefaultThreshold, DefaultBands and DefaultRows are the spec §6 defaults;
// DefaultBands * DefaultRows must equal minhash.DefaultPermutations.
const (
	DefaultThreshold = 0.35
	DefaultBands     = 32
	DefaultRows      = 4
)

// ErrInvalidSignature is returned by Insert when the signature length does
// not match the index's configured P.
var ErrInvalidSignature = errors.New("lsh: invalid signature length")

// ErrInvalidBanding is returned by New when bands*rows does not equal P.
var ErrInvalidBanding = errors.New("lsh: bands*rows must equal P")

// Candidate is a scored query result (spec §3 CandidateMatch).
type Candidate struct {
	DocID            string
	EstimatedJaccard float64
}

// Stats describes the index's current configuration and size (spec §4.5
// "stats() -> {count, threshold, P}").
type Stats struct {
	Count     int
	Threshold float64
	P         int
}

type bandKey uint64

// Index is a banded LSH index over MinHash signatures. The zero value is
// not usable; construct with New. An Index is safe for concurrent use:
// Insert and Remove take an exclusive lock, Query and Stats a shared one.
type Index struct {
	mu        sync.RWMutex
	p         int
	bands     int
	rows      int
	threshold float64

	sigs   map[string]minhash.Sig
	tables []map[bandKey][]string // one multimap per band: bandKey -> doc_ids
}

// New builds an empty index for signatures of length p, banded into
// `bands` bands of `rows` rows each (bands*rows must equal p). threshold
// is stored and reported by Stats; Query does not filter on it, so which
// documents become candidates depends on the banding alone.
func New(p, bands, rows int, threshold float64) (*Index, error) {
	if bands*rows != p {
		return nil, fmt.Errorf("%w: bands=%d rows=%d p=%d", ErrInvalidBanding, bands, rows, p)
	}
	tables := make([]map[bandKey][]string, bands)
	for i := range tables {
		tables[i] = make(map[bandKey][]string)
	}
	return &Index{
		p:         p,
		bands:     bands,
		rows:      rows,
		threshold: threshold,
		sigs:      make(map[string]minhash.Sig),
		tables:    tables,
	}, nil
}

// Insert adds or overwrites docID's signature. Re-inserting an existing
// docID first removes its prior band-table entries so the index never
// accumulates stale buckets for a document version that no longer exists
// (spec §4.5 "idempotent per doc_id").
func (idx *Index) Insert(docID string, sig minhash.Sig) error {
	if len(sig) != idx.p {
		return fmt.Errorf("%w: got %d want %d", ErrInvalidSignature, len(sig), idx.p)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.sigs[docID]; exists {
		idx.removeLocked(docID)
	}

	idx.sigs[docID] = sig
	for band := 0; band < idx.bands; band++ {
		key := idx.bandKeyFor(sig, band)
		idx.tables[band][key] = append(idx.tables[band][key], docID)
	}
	return nil
}

// Remove deletes docID from the index. It is a no-op if absent.
func (idx *Index) Remove(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(docID)
}

func (idx *Index) removeLocked(docID string) {
	sig, exists := idx.sigs[docID]
	if !exists {
		return
	}
	for band := 0; band < idx.bands; band++ {
		key := idx.bandKeyFor(sig, band)
		idx.tables[band][key] = removeID(idx.tables[band][key], docID)
		if len(idx.tables[band][key]) == 0 {
			delete(idx.tables[band], key)
		}
	}
	delete(idx.sigs, docID)
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Query returns the topK candidates sharing at least one band bucket with
// sig, each exactly scored by MinHash Jaccard against sig, sorted by
// estimated Jaccard descending with ties broken by ascending doc_id (spec
// §4.5). An empty index yields an empty, non-nil slice, never an error.
func (idx *Index) Query(sig minhash.Sig, topK int) ([]Candidate, error) {
	if len(sig) != idx.p {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidSignature, len(sig), idx.p)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.sigs) == 0 {
		return []Candidate{}, nil
	}

	union := idx.candidateUnionLocked(sig)
	candidates := make([]Candidate, 0, len(union))
	for docID := range union {
		candSig := idx.sigs[docID]
		candidates = append(candidates, Candidate{
			DocID:            docID,
			EstimatedJaccard: minhash.Jaccard(sig, candSig),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].EstimatedJaccard != candidates[j].EstimatedJaccard {
			return candidates[i].EstimatedJaccard > candidates[j].EstimatedJaccard
		}
		return candidates[i].DocID < candidates[j].DocID
	})

	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// candidateUnionLocked fans the per-band bucket lookups out across a
// bounded worker pool (spec §5 "MAY parallelize ... per-band bucket
// lookups") and unions the results. Callers must hold idx.mu for reading.
func (idx *Index) candidateUnionLocked(sig minhash.Sig) map[string]struct{} {
	fns := make([]func() ([]string, error), idx.bands)
	for band := 0; band < idx.bands; band++ {
		band := band
		fns[band] = func() ([]string, error) {
			key := idx.bandKeyFor(sig, band)
			ids := idx.tables[band][key]
			copied := make([]string, len(ids))
			copy(copied, ids)
			return copied, nil
		}
	}

	results, _ := concurrent.SemaphoreGatherWithResults(context.Background(), 0, fns...)
	union := make(map[string]struct{})
	for _, ids := range results {
		for _, id := range ids {
			union[id] = struct{}{}
		}
	}
	return union
}

// Stats reports the index's current size and configuration.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{Count: len(idx.sigs), Threshold: idx.threshold, P: idx.p}
}

// bandKeyFor hashes the R values of band `band` in sig to a stable
// 64-bit bucket key via MurmurHash3 over their big-endian byte encoding,
// so the same band of the same signature always maps to the same bucket
// regardless of process or host (spec §3 "band hashing must be stable
// across processes").
func (idx *Index) bandKeyFor(sig minhash.Sig, band int) bandKey {
	start := band * idx.rows
	end := start + idx.rows
	buf := make([]byte, 8*idx.rows)
	for i, v := range sig[start:end] {
		putUint64(buf[i*8:], v)
	}
	return bandKey(murmur3.Sum64WithSeed(buf, uint32(band)))
}

func putUint64(buf []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
}
