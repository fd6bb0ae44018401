// Package diff implements the character-level alignment engine: a
// Ratcliff/Obershelp recursive longest-matching-block decomposition
// between two strings, with a minimum-length filter on the reported
// segments (spec §4.7). Offsets are Unicode code-point indices into the
// input strings, matching spec §3's AlignedSegment contract.
package diff

import "unicode/utf8"

// AlignedSegment is a single matching block between source and query text
// (spec §3).
type AlignedSegment struct {
	SourceStart int
	SourceEnd   int
	QueryStart  int
	QueryEnd    int
	Length      int
	SourceText  string
	QueryText   string
}

// Result is the output of Align: the overall similarity ratio and the
// filtered, source-ascending list of matching segments.
type Result struct {
	Similarity float64
	Segments   []AlignedSegment
}

// DefaultMinMatchLength is the spec §4.7 default minimum segment length
// (in code points) below which a matching block is dropped from the
// segment list, though it still contributes to Similarity.
const DefaultMinMatchLength = 50

// Align decomposes source and query into matching blocks using a
// Ratcliff/Obershelp-style recursive longest-common-contiguous-substring
// split, with autojunk disabled: every position is eligible to match, with
// no frequency-based skipping of "popular" elements. Similarity is
// 2*M/(|source|+|query|), where M is the total length of all matching
// blocks, computed before minMatchLength filtering. Segments shorter than
// minMatchLength are dropped from Segments but still counted in M.
func Align(source, query string, minMatchLength int) Result {
	src := []rune(source)
	qry := []rune(query)

	var blocks []match
	findMatchingBlocks(src, qry, 0, len(src), 0, len(qry), &blocks)

	total := 0
	for _, b := range blocks {
		total += b.length
	}

	denom := len(src) + len(qry)
	similarity := 0.0
	if denom > 0 {
		similarity = 2 * float64(total) / float64(denom)
	}

	segments := make([]AlignedSegment, 0, len(blocks))
	for _, b := range blocks {
		if b.length < minMatchLength {
			continue
		}
		segments = append(segments, AlignedSegment{
			SourceStart: b.srcStart,
			SourceEnd:   b.srcStart + b.length,
			QueryStart:  b.qryStart,
			QueryEnd:    b.qryStart + b.length,
			Length:      b.length,
			SourceText:  string(src[b.srcStart : b.srcStart+b.length]),
			QueryText:   string(qry[b.qryStart : b.qryStart+b.length]),
		})
	}

	return Result{Similarity: similarity, Segments: segments}
}

// match is an internal matching block in rune-index space, kept separate
// from AlignedSegment so the recursive search never materializes text
// until the final, filtered pass.
type match struct {
	srcStart int
	qryStart int
	length   int
}

// findMatchingBlocks recursively finds the longest common contiguous run
// in src[srcLo:srcHi) / qry[qryLo:qryHi), emits it, and recurses into the
// two (before, after) remainders, in source-ascending order. A window with
// no match contributes nothing.
func findMatchingBlocks(src, qry []rune, srcLo, srcHi, qryLo, qryHi int, out *[]match) {
	m := longestMatch(src, qry, srcLo, srcHi, qryLo, qryHi)
	if m.length == 0 {
		return
	}

	findMatchingBlocks(src, qry, srcLo, m.srcStart, qryLo, m.qryStart, out)
	*out = append(*out, m)
	findMatchingBlocks(src, qry, m.srcStart+m.length, srcHi, m.qryStart+m.length, qryHi, out)
}

// longestMatch finds the longest contiguous run common to
// src[srcLo:srcHi) and qry[qryLo:qryHi), breaking ties by the earliest
// starting position in src then in qry (the standard Ratcliff/Obershelp
// tie-break), using a rolling hash-free O(n*m) dynamic-programming sweep
// over suffix-match lengths. Autojunk is disabled: no element is ever
// excluded from matching regardless of frequency.
func longestMatch(src, qry []rune, srcLo, srcHi, qryLo, qryHi int) match {
	if srcLo >= srcHi || qryLo >= qryHi {
		return match{}
	}

	qWidth := qryHi - qryLo
	prev := make([]int, qWidth+1)
	curr := make([]int, qWidth+1)

	best := match{}
	for i := srcLo; i < srcHi; i++ {
		for j := qryLo; j < qryHi; j++ {
			col := j - qryLo + 1
			if src[i] == qry[j] {
				curr[col] = prev[col-1] + 1
				if curr[col] > best.length {
					best.length = curr[col]
					best.srcStart = i - curr[col] + 1
					best.qryStart = j - curr[col] + 1
				}
			} else {
				curr[col] = 0
			}
		}
		prev, curr = curr, prev
		for k := range curr {
			curr[k] = 0
		}
	}

	return best
}

// RuneLen returns the code-point length of s, matching the offset units
// AlignedSegment uses throughout this package.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
