// Package paginate implements segment paging and the response-size clamps
// the pipeline applies before returning a diff result to a caller (spec
// §4.8): a segment-count ceiling, a per-field character ceiling, and an
// aggregate payload-byte ceiling, all enforced by Truncate.
package paginate

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/soundprediction/plagiarismguard/pkg/diff"
)

// MinPageSize, MaxPageSize bound the page_size parameter (spec §4.8).
const (
	MinPageSize = 1
	MaxPageSize = 50
)

// MaxSegments and MaxSegmentTextChars are the response bounds from spec
// §5: at most this many segments, each text field trimmed to this many
// characters.
const (
	MaxSegments         = 100
	MaxSegmentTextChars = 500
)

// MaxResponseBytes is the aggregate payload ceiling spec §5 sets: "≤1 MB
// aggregate payload estimated before send". Truncate estimates its result's
// serialized size and drops trailing segments until it fits, the same
// MAX_RESPONSE_SIZE_BYTES budget the original truncation step measured
// against.
const MaxResponseBytes = 1_000_000

// truncationSuffix marks a text field that Truncate has shortened.
const truncationSuffix = "..."

// PagedResult is the output of ComparePaginated: a single page over the
// full segment list, plus the pagination metadata a caller needs to
// request the next page.
type PagedResult struct {
	Similarity    float64
	Segments      []diff.AlignedSegment
	Page          int
	PageSize      int
	TotalSegments int
	TotalPages    int
	HasNext       bool
	HasPrev       bool
}

// ComparePaginated computes the full alignment between source and query
// once, then returns the requested page over its segment list. page_size
// is clamped to [MinPageSize, MaxPageSize]; page is clamped to [1, ∞).
func ComparePaginated(source, query string, minMatchLength, page, pageSize int) PagedResult {
	if pageSize < MinPageSize {
		pageSize = MinPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	result := diff.Align(source, query, minMatchLength)
	total := len(result.Segments)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return PagedResult{
		Similarity:    result.Similarity,
		Segments:      result.Segments[start:end],
		Page:          page,
		PageSize:      pageSize,
		TotalSegments: total,
		TotalPages:    totalPages,
		HasNext:       page < totalPages,
		HasPrev:       page > 1,
	}
}

// TruncatedSegment is an AlignedSegment with the per-field truncation
// flags Truncate attaches.
type TruncatedSegment struct {
	diff.AlignedSegment
	SourceTextTruncated bool
	QueryTextTruncated  bool
}

// TruncatedResult is the output of Truncate: a response-size-bounded view
// over a diff.Result (spec §4.8, §5).
type TruncatedResult struct {
	Similarity                  float64
	Segments                    []TruncatedSegment
	SegmentsTruncated           bool
	TotalSegmentsBeforeTruncate int
}

// Truncate enforces the response bounds from spec §5: at most MaxSegments
// segments are retained, each segment's SourceText/QueryText is clamped to
// MaxSegmentTextChars characters with a truncation marker, and finally the
// whole result is re-checked against MaxResponseBytes, dropping further
// trailing segments if the per-segment clamps still leave it too large.
// SegmentsTruncated and TotalSegmentsBeforeTruncate reflect whichever of
// the two limits fired.
func Truncate(result diff.Result) TruncatedResult {
	before := len(result.Segments)
	segments := result.Segments
	truncatedList := before > MaxSegments
	if truncatedList {
		segments = segments[:MaxSegments]
	}

	out := make([]TruncatedSegment, len(segments))
	for i, seg := range segments {
		sourceText, sourceTrunc := truncateText(seg.SourceText)
		queryText, queryTrunc := truncateText(seg.QueryText)
		seg.SourceText = sourceText
		seg.QueryText = queryText
		out[i] = TruncatedSegment{
			AlignedSegment:      seg,
			SourceTextTruncated: sourceTrunc,
			QueryTextTruncated:  queryTrunc,
		}
	}

	tr := TruncatedResult{
		Similarity:                  result.Similarity,
		Segments:                    out,
		SegmentsTruncated:           truncatedList,
		TotalSegmentsBeforeTruncate: before,
	}
	return clampToResponseBudget(tr)
}

// clampToResponseBudget drops trailing segments from tr, one at a time
// from the end, until its estimated serialized size fits within MaxResponseBytes or no
// segments remain.
func clampToResponseBudget(tr TruncatedResult) TruncatedResult {
	for len(tr.Segments) > 0 && estimateResponseSize(tr) > MaxResponseBytes {
		tr.Segments = tr.Segments[:len(tr.Segments)-1]
		tr.SegmentsTruncated = true
	}
	return tr
}

// estimateResponseSize approximates tr's JSON-encoded response size in
// bytes, the same json.dumps(...).encode("utf-8") approach the original
// estimate_response_size used. A marshal failure (none of this package's
// types can actually produce one) is treated as zero bytes rather than
// propagated, since this is a best-effort size estimate, not a correctness
// check.
func estimateResponseSize(tr TruncatedResult) int {
	data, err := json.Marshal(tr)
	if err != nil {
		return 0
	}
	return len(data)
}

func truncateText(s string) (string, bool) {
	if utf8.RuneCountInString(s) <= MaxSegmentTextChars {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:MaxSegmentTextChars]) + truncationSuffix, true
}
