package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/corpus"
	"github.com/soundprediction/plagiarismguard/pkg/server/dto"
)

const maxUploadBytes = 32 << 20 // 32 MiB request-side upload cap, separate from spec §5's 1 MB response budget

// CheckHandler serves the check-against-corpus operation (spec §4.9
// operation 2, §6 "check").
type CheckHandler struct {
	checker *plagiarismguard.Checker
}

// NewCheckHandler creates a new check handler.
func NewCheckHandler(checker *plagiarismguard.Checker) *CheckHandler {
	return &CheckHandler{checker: checker}
}

// Check handles POST /api/v1/check - a multipart upload under the "file"
// field, with optional top_k/min_report/top_return query parameters.
func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file\" field: "+err.Error())
		return
	}
	defer file.Close()

	opts := plagiarismguard.DefaultCheckOptions()
	if v := r.URL.Query().Get("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.TopK = n
		}
	}
	if v := r.URL.Query().Get("min_report"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MinReport = f
		}
	}
	if v := r.URL.Query().Get("top_return"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.TopReturn = n
		}
	}

	result, err := h.checker.CheckAgainstCorpus(r.Context(), file, fileTypeFromName(header.Filename), opts)
	if err != nil {
		writeCheckerError(w, err)
		return
	}

	matches := make([]dto.MatchDTO, len(result.Matches))
	for i, m := range result.Matches {
		matches[i] = dto.MatchDTO{
			Title:      m.Metadata.Title,
			Author:     m.Metadata.Author,
			University: m.Metadata.University,
			Year:       m.Metadata.Year,
			Similarity: round2(m.EstimatedJaccard * 100),
		}
	}

	response := dto.CheckResponse{
		Filename:          header.Filename,
		IsPlagiarized:     result.IsPlagiarized,
		OverallSimilarity: round2(result.OverallSimilarity * 100),
		PlagiarismLevel:   string(result.PlagiarismLevel),
		WordCount:         result.WordCount,
		ProcessingTimeMS:  result.ProcessingTime.Milliseconds(),
		CorpusSize:        result.CorpusSize,
		Matches:           matches,
	}

	h.checker.RecordHistory(corpus.HistoryEntry{
		ID:                uuid.NewString(),
		QueryName:         header.Filename,
		OverallSimilarity: response.OverallSimilarity,
		MatchesCount:      len(matches),
		PlagiarismLevel:   response.PlagiarismLevel,
		CreatedAt:         time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, response)
}

// round2 rounds to two decimal places, matching spec §6's "(percent, 2
// decimals)" / "(0-100, 2 decimals)" field conventions.
func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func writeCheckerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, plagiarismguard.ErrEmptyDocument),
		errors.Is(err, plagiarismguard.ErrShingleSetTooLarge),
		errors.Is(err, plagiarismguard.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, corpus.ErrCorpusUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
