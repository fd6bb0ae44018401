package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/diff"
	"github.com/soundprediction/plagiarismguard/pkg/paginate"
	"github.com/soundprediction/plagiarismguard/pkg/server/dto"
)

// AlignHandler serves the character-level alignment report between two
// documents (spec §4.7 diff engine, §4.8 pagination/truncation), the
// surface the /compare operation's overall_similarity is computed
// alongside but does not itself expose.
type AlignHandler struct {
	checker *plagiarismguard.Checker
}

// NewAlignHandler creates a new align handler.
func NewAlignHandler(checker *plagiarismguard.Checker) *AlignHandler {
	return &AlignHandler{checker: checker}
}

// Align handles POST /api/v1/align - a multipart upload with "source" and
// "query" file fields, plus optional min_match_length/page/page_size
// query parameters. It returns one page of aligned segments, each
// clamped to the response-size bounds spec §5 documents.
func (h *AlignHandler) Align(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}

	sourceFile, _, err := r.FormFile("source")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"source\" field: "+err.Error())
		return
	}
	defer sourceFile.Close()

	queryFile, _, err := r.FormFile("query")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"query\" field: "+err.Error())
		return
	}
	defer queryFile.Close()

	sourceBytes, err := io.ReadAll(io.LimitReader(sourceFile, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read \"source\": "+err.Error())
		return
	}
	queryBytes, err := io.ReadAll(io.LimitReader(queryFile, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read \"query\": "+err.Error())
		return
	}

	minMatchLength := diff.DefaultMinMatchLength
	if v := r.URL.Query().Get("min_match_length"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			minMatchLength = n
		}
	}
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	pageSize := paginate.MaxPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pageSize = n
		}
	}

	paged := h.checker.AlignPaginated(string(sourceBytes), string(queryBytes), minMatchLength, page, pageSize)
	truncated := paginate.Truncate(diff.Result{Similarity: paged.Similarity, Segments: paged.Segments})

	segments := make([]dto.AlignedSegmentDTO, len(truncated.Segments))
	for i, seg := range truncated.Segments {
		segments[i] = dto.AlignedSegmentDTO{
			SourceStart:         seg.SourceStart,
			SourceEnd:           seg.SourceEnd,
			QueryStart:          seg.QueryStart,
			QueryEnd:            seg.QueryEnd,
			Length:              seg.Length,
			SourceText:          seg.SourceText,
			QueryText:           seg.QueryText,
			SourceTextTruncated: seg.SourceTextTruncated,
			QueryTextTruncated:  seg.QueryTextTruncated,
		}
	}

	writeJSON(w, http.StatusOK, dto.AlignResponse{
		Similarity:        round2(paged.Similarity * 100),
		Segments:          segments,
		Page:              paged.Page,
		PageSize:          paged.PageSize,
		TotalSegments:     paged.TotalSegments,
		TotalPages:        paged.TotalPages,
		HasNext:           paged.HasNext,
		HasPrev:           paged.HasPrev,
		SegmentsTruncated: truncated.SegmentsTruncated,
	})
}
