package plagiarismguard

import "errors"

// Sentinel errors for the operation failure modes spec §7 enumerates.
// Handlers (HTTP, CLI) map these to user-facing responses with
// errors.Is, following the project's established error idiom (sentinel
// values plus, where extra context is useful, a typed wrapper).
var (
	// ErrInvalidInput covers an unsupported file type or an empty upload.
	ErrInvalidInput = errors.New("plagiarismguard: invalid input")

	// ErrEmptyDocument is returned when tokenization or shingling yields
	// zero elements (spec §4.9 "EmptyDocument").
	ErrEmptyDocument = errors.New("plagiarismguard: document produced no tokens or shingles")

	// ErrShingleSetTooLarge is returned when a document's shingle set
	// exceeds the configured ceiling (spec §5 "recommended: reject
	// documents whose shingle set exceeds 10^6 elements").
	ErrShingleSetTooLarge = errors.New("plagiarismguard: shingle set exceeds configured limit")

	// ErrNotFound covers a missing history or job id (spec §7).
	ErrNotFound = errors.New("plagiarismguard: not found")

	// ErrQuotaExceeded is a surrounding-service concern (spec §7); the
	// core never raises it itself, but defines it so the host can wrap
	// core errors and callers can errors.Is against a single vocabulary.
	ErrQuotaExceeded = errors.New("plagiarismguard: quota exceeded")
)

// SaveError reports that a document was inserted into the in-memory LSH
// index but failed to persist to the corpus store (spec §7: "save errors
// after a successful insert leave the in-memory index ahead of the
// store; the orchestrator reports the save failure and the caller
// decides whether to retry"). The index entry is NOT rolled back.
type SaveError struct {
	DocID string
	Err   error
}

func (e *SaveError) Error() string {
	return "plagiarismguard: indexed " + e.DocID + " but failed to persist: " + e.Err.Error()
}

func (e *SaveError) Unwrap() error { return e.Err }
