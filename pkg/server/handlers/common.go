// Package handlers implements the HTTP handlers exposing the
// orchestrator's three public operations (spec §4.9, §6), adapted from
// the teacher's handler-per-concern layout and writeJSON helper.
package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/soundprediction/plagiarismguard/pkg/extractor"
	"github.com/soundprediction/plagiarismguard/pkg/server/dto"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes a dto.ErrorResponse at the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: http.StatusText(status), Message: message})
}

// fileTypeFromName infers a spec §6 FileType from a filename's
// extension, falling back to plain text for an unrecognized one.
func fileTypeFromName(name string) extractor.FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractor.FileTypePDF
	case ".docx":
		return extractor.FileTypeDOCX
	case ".tex":
		return extractor.FileTypeTeX
	default:
		return extractor.FileTypeTXT
	}
}
