package lsh

import (
	"testing"

	"github.com/soundprediction/plagiarismguard/pkg/minhash"
	"github.com/soundprediction/plagiarismguard/pkg/shingle"
)

func sigFor(t *testing.T, pm *minhash.Permutations, tokens []string) minhash.Sig {
	t.Helper()
	set := shingle.Shingles(tokens, 3)
	sig, err := pm.Signature(set)
	if err != nil {
		t.Fatalf("Signature: %v", err)
	}
	return sig
}

func TestNewRejectsBadBanding(t *testing.T) {
	if _, err := New(128, 33, 4, 0.35); err == nil {
		t.Fatal("expected ErrInvalidBanding")
	}
}

func TestInsertQueryRemove(t *testing.T) {
	pm := minhash.NewPermutations(42, 16)
	idx, err := New(16, 8, 2, 0.3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d1 := sigFor(t, pm, []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog"})
	d2 := sigFor(t, pm, []string{"the", "quick", "brown", "fox", "leaps", "over", "lazy", "dog"})
	d3 := sigFor(t, pm, []string{"completely", "unrelated", "vocabulary", "set", "of", "tokens", "here", "now"})

	if err := idx.Insert("d1", d1); err != nil {
		t.Fatalf("Insert d1: %v", err)
	}
	if err := idx.Insert("d2", d2); err != nil {
		t.Fatalf("Insert d2: %v", err)
	}
	if err := idx.Insert("d3", d3); err != nil {
		t.Fatalf("Insert d3: %v", err)
	}

	results, err := idx.Query(d1, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) == 0 || results[0].DocID != "d1" {
		t.Fatalf("expected d1 first, got %+v", results)
	}
	if results[0].EstimatedJaccard != 1.0 {
		t.Errorf("expected exact self-match jaccard 1.0, got %v", results[0].EstimatedJaccard)
	}

	idx.Remove("d1")
	results, err = idx.Query(d1, 10)
	if err != nil {
		t.Fatalf("Query after remove: %v", err)
	}
	for _, c := range results {
		if c.DocID == "d1" {
			t.Fatalf("d1 should be absent after Remove, got %+v", results)
		}
	}

	// Re-insert should restore observational equivalence.
	if err := idx.Insert("d1", d1); err != nil {
		t.Fatalf("re-insert d1: %v", err)
	}
	results, err = idx.Query(d1, 10)
	if err != nil {
		t.Fatalf("Query after re-insert: %v", err)
	}
	if results[0].DocID != "d1" {
		t.Fatalf("expected d1 first after re-insert, got %+v", results)
	}
}

func TestInsertIdempotent(t *testing.T) {
	pm := minhash.NewPermutations(42, 16)
	idx, _ := New(16, 8, 2, 0.3)
	sig := sigFor(t, pm, []string{"a", "b", "c", "d", "e"})

	if err := idx.Insert("doc", sig); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := idx.Insert("doc", sig); err != nil {
		t.Fatalf("re-Insert: %v", err)
	}

	if stats := idx.Stats(); stats.Count != 1 {
		t.Fatalf("expected count 1 after idempotent re-insert, got %d", stats.Count)
	}
}

func TestInsertInvalidSignature(t *testing.T) {
	idx, _ := New(16, 8, 2, 0.3)
	if err := idx.Insert("doc", minhash.Sig{1, 2, 3}); err == nil {
		t.Fatal("expected ErrInvalidSignature")
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	pm := minhash.NewPermutations(42, 16)
	idx, _ := New(16, 8, 2, 0.3)
	sig := sigFor(t, pm, []string{"a", "b", "c", "d", "e"})

	results, err := idx.Query(sig, 10)
	if err != nil {
		t.Fatalf("Query on empty index should not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %+v", results)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	idx, _ := New(16, 8, 2, 0.3)
	idx.Remove("nonexistent") // must not panic
}

func TestStats(t *testing.T) {
	idx, _ := New(128, 32, 4, 0.35)
	stats := idx.Stats()
	if stats.P != 128 || stats.Threshold != 0.35 || stats.Count != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
