// Package extractor defines the injected text-extraction capability (spec
// §6) and ships built-in implementations for the formats that need no
// external library. PDF and DOCX extraction are explicitly out of core
// scope (spec §1) and must be supplied by an injected implementation.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// FileType enumerates the document formats the pipeline accepts (spec
// §6).
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
	FileTypeTeX  FileType = "tex"
)

// ErrExtractionFailed wraps any extraction failure (spec §7
// ExtractionFailed).
var ErrExtractionFailed = errors.New("extractor: extraction failed")

// ErrUnsupportedFileType is returned for a file_type outside FileType's
// enumeration. A pdf/docx request with no injected implementation
// configured fails with ErrExtractionFailed instead.
var ErrUnsupportedFileType = errors.New("extractor: unsupported file type")

// Extracted is the result of a single extraction (spec §6 "extract(...)
// -> (text, method)").
type Extracted struct {
	Text   string
	Method string
}

// Extractor turns a file into UTF-8 text (spec §6). Implementations must
// not raise for well-formed inputs of the declared type.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, fileType FileType) (Extracted, error)
}

// Registry dispatches by FileType to a built-in implementation for
// txt/tex, and to an optionally injected implementation for pdf/docx
// (spec §9's "typed capability" pattern, mirrored from the tokenizer
// port). A nil injected extractor for pdf/docx fails with
// ErrExtractionFailed rather than silently succeeding.
type Registry struct {
	// PDF and DOCX are injected implementations for formats this core
	// does not parse itself. Either may be nil.
	PDF  Extractor
	DOCX Extractor
}

// Extract dispatches to the implementation registered for fileType.
func (r Registry) Extract(ctx context.Context, content io.Reader, fileType FileType) (Extracted, error) {
	switch fileType {
	case FileTypeTXT:
		return extractText(content)
	case FileTypeTeX:
		return extractTeX(content)
	case FileTypePDF:
		return r.dispatch(ctx, content, fileType, r.PDF)
	case FileTypeDOCX:
		return r.dispatch(ctx, content, fileType, r.DOCX)
	default:
		return Extracted{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}
}

func (r Registry) dispatch(ctx context.Context, content io.Reader, fileType FileType, impl Extractor) (Extracted, error) {
	if impl == nil {
		return Extracted{}, fmt.Errorf("%w: no extractor configured for %q", ErrExtractionFailed, fileType)
	}
	extracted, err := impl.Extract(ctx, content, fileType)
	if err != nil {
		return Extracted{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return extracted, nil
}

// extractText reads raw UTF-8 text directly.
func extractText(r io.Reader) (Extracted, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Extracted{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return Extracted{Text: string(data), Method: "txt"}, nil
}

// texCommand matches a LaTeX control sequence with its brace-delimited
// argument, e.g. \textbf{...} or \section{...}; the argument's contents
// are kept, the command name is dropped.
var texCommand = regexp.MustCompile(`\\[a-zA-Z]+\*?(\[[^\]]*\])?\{([^}]*)\}`)

// texBareCommand matches a named control sequence with no argument, e.g.
// \newpage.
var texBareCommand = regexp.MustCompile(`\\[a-zA-Z]+\*?`)

// texComment matches a LaTeX line comment.
var texComment = regexp.MustCompile(`(?m)%.*$`)

// extractTeX strips LaTeX control sequences and comments, keeping the
// textual content of each command's argument (spec §6 file_type "tex").
func extractTeX(r io.Reader) (Extracted, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Extracted{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	text := string(data)
	text = texComment.ReplaceAllString(text, "")
	text = texCommand.ReplaceAllString(text, "$2")
	text = texBareCommand.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "{", "")
	text = strings.ReplaceAll(text, "}", "")
	return Extracted{Text: text, Method: "tex"}, nil
}
