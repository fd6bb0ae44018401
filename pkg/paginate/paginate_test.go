package paginate

import (
	"strings"
	"testing"

	"github.com/soundprediction/plagiarismguard/pkg/diff"
)

func TestComparePaginatedIdenticalTenThousandChars(t *testing.T) {
	text := strings.Repeat("abcdefghij", 1000)
	result := ComparePaginated(text, text, 50, 1, 10)

	if len(result.Segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(result.Segments))
	}
	if result.TotalPages != 1 {
		t.Fatalf("expected 1 total page, got %d", result.TotalPages)
	}
	if result.HasNext {
		t.Fatal("expected HasNext false")
	}
	if result.HasPrev {
		t.Fatal("expected HasPrev false")
	}
}

func TestComparePaginatedClampsPageSize(t *testing.T) {
	result := ComparePaginated("abc", "abc", 0, 1, 500)
	if result.PageSize != MaxPageSize {
		t.Fatalf("expected page size clamped to %d, got %d", MaxPageSize, result.PageSize)
	}

	result = ComparePaginated("abc", "abc", 0, 1, 0)
	if result.PageSize != MinPageSize {
		t.Fatalf("expected page size clamped to %d, got %d", MinPageSize, result.PageSize)
	}
}

func TestComparePaginatedClampsPageToOne(t *testing.T) {
	result := ComparePaginated("abc", "abc", 0, 0, 10)
	if result.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", result.Page)
	}
}

func buildManySegments(n int) diff.Result {
	segs := make([]diff.AlignedSegment, n)
	for i := range segs {
		segs[i] = diff.AlignedSegment{SourceStart: i, SourceEnd: i + 1, Length: 1}
	}
	return diff.Result{Similarity: 0.5, Segments: segs}
}

func TestTruncateCapsAt100Segments(t *testing.T) {
	result := buildManySegments(250)
	truncated := Truncate(result)

	if len(truncated.Segments) != MaxSegments {
		t.Fatalf("expected %d segments after truncation, got %d", MaxSegments, len(truncated.Segments))
	}
	if !truncated.SegmentsTruncated {
		t.Fatal("expected SegmentsTruncated=true")
	}
	if truncated.TotalSegmentsBeforeTruncate != 250 {
		t.Fatalf("expected total_segments_before_truncation=250, got %d", truncated.TotalSegmentsBeforeTruncate)
	}
}

func TestTruncateDoesNotFlagUnderLimit(t *testing.T) {
	result := buildManySegments(5)
	truncated := Truncate(result)
	if truncated.SegmentsTruncated {
		t.Fatal("expected SegmentsTruncated=false for 5 segments")
	}
}

func TestTruncateClampsSegmentText(t *testing.T) {
	longText := strings.Repeat("x", 600)
	result := diff.Result{
		Similarity: 1.0,
		Segments: []diff.AlignedSegment{
			{Length: 600, SourceText: longText, QueryText: "short"},
		},
	}
	truncated := Truncate(result)
	seg := truncated.Segments[0]
	if !seg.SourceTextTruncated {
		t.Fatal("expected SourceTextTruncated=true")
	}
	if seg.QueryTextTruncated {
		t.Fatal("expected QueryTextTruncated=false for short text")
	}
	if len([]rune(seg.SourceText)) != MaxSegmentTextChars+3 { // +3 for "..."
		t.Fatalf("expected clamped text of %d runes plus marker, got %d", MaxSegmentTextChars, len([]rune(seg.SourceText)))
	}
}

func TestClampToResponseBudgetDropsSegmentsOverByteCeiling(t *testing.T) {
	// Each segment carries 40KB of text (bypassing the per-field char
	// clamp, which Truncate already applied before this step runs), so 80
	// of them estimate well past the 1MB aggregate ceiling.
	huge := strings.Repeat("y", 20000)
	segs := make([]TruncatedSegment, 80)
	for i := range segs {
		segs[i] = TruncatedSegment{AlignedSegment: diff.AlignedSegment{SourceText: huge, QueryText: huge}}
	}
	tr := TruncatedResult{Segments: segs, TotalSegmentsBeforeTruncate: len(segs)}

	clamped := clampToResponseBudget(tr)

	if got := estimateResponseSize(clamped); got > MaxResponseBytes {
		t.Fatalf("expected estimated size <= %d, got %d", MaxResponseBytes, got)
	}
	if !clamped.SegmentsTruncated {
		t.Fatal("expected SegmentsTruncated=true after byte-budget clamp")
	}
	if len(clamped.Segments) >= len(segs) {
		t.Fatalf("expected fewer segments after byte-budget clamp, got %d of %d", len(clamped.Segments), len(segs))
	}
}

func TestTruncateStaysUnderResponseByteCeiling(t *testing.T) {
	// Even at the segment-count and per-field-length maximums, Truncate's
	// output must still respect the aggregate byte ceiling.
	longText := strings.Repeat("z", 600)
	segs := make([]diff.AlignedSegment, 250)
	for i := range segs {
		segs[i] = diff.AlignedSegment{Length: 600, SourceText: longText, QueryText: longText}
	}
	truncated := Truncate(diff.Result{Similarity: 1.0, Segments: segs})

	if got := estimateResponseSize(truncated); got > MaxResponseBytes {
		t.Fatalf("expected estimated size <= %d, got %d", MaxResponseBytes, got)
	}
}
