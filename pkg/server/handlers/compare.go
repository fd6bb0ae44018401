package handlers

import (
	"net/http"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/server/dto"
)

// CompareHandler serves the compare-two-documents operation (spec §4.9
// operation 3, §6 "compare").
type CompareHandler struct {
	checker *plagiarismguard.Checker
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(checker *plagiarismguard.Checker) *CompareHandler {
	return &CompareHandler{checker: checker}
}

// Compare handles POST /api/v1/compare - a multipart upload with two file
// fields, "file1" and "file2".
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}

	file1, header1, err := r.FormFile("file1")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file1\" field: "+err.Error())
		return
	}
	defer file1.Close()

	file2, header2, err := r.FormFile("file2")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file2\" field: "+err.Error())
		return
	}
	defer file2.Close()

	result, err := h.checker.CompareTwo(r.Context(),
		file1, fileTypeFromName(header1.Filename),
		file2, fileTypeFromName(header2.Filename))
	if err != nil {
		writeCheckerError(w, err)
		return
	}

	similarityPct := round2(result.Similarity * 100)
	writeJSON(w, http.StatusOK, dto.CompareResponse{
		File1:            header1.Filename,
		File2:            header2.Filename,
		Similarity:       similarityPct,
		IsSimilar:        result.IsSimilar,
		SimilarityLevel:  string(plagiarismguard.LevelFor(result.Similarity)),
		File1WordCount:   result.WordCount1,
		File2WordCount:   result.WordCount2,
		ProcessingTimeMS: result.ProcessingTime.Milliseconds(),
	})
}
