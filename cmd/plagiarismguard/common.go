package plagiarismguard

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/config"
	"github.com/soundprediction/plagiarismguard/pkg/corpus"
	"github.com/soundprediction/plagiarismguard/pkg/extractor"
	plagiarismLogger "github.com/soundprediction/plagiarismguard/pkg/logger"
	"github.com/soundprediction/plagiarismguard/pkg/normalize"
	"github.com/soundprediction/plagiarismguard/pkg/tokenizer"
)

// loadCheckerConfig loads configuration and builds the logger every
// subcommand shares.
func loadCheckerConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	lg := plagiarismLogger.NewLogger(level, cfg.Log.Format)

	return cfg, lg.Logger, nil
}

// newChecker opens the badger corpus store at cfg.Corpus.Path and builds
// a Checker over it, using whitespace tokenization (the built-in
// fallback; an ExternalSegmenter can be wired in by a deployment that
// has a Vietnamese word-segmentation service available) and the
// built-in txt/tex extractors.
func newChecker(cfg *config.Config, log *slog.Logger) (*plagiarismguard.Checker, func() error, error) {
	if err := os.MkdirAll(cfg.Corpus.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare corpus directory: %w", err)
	}

	store, err := corpus.Open(cfg.Corpus.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus store: %w", err)
	}

	checker, err := plagiarismguard.NewChecker(cfg, tokenizer.WhitespaceSplit{}, extractor.Registry{}, store, log)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to initialize checker: %w", err)
	}

	return checker, checker.Close, nil
}

// filesystemTextFetcher is a plagiarismguard.TextFetcher that treats a
// doc_id as a filesystem path and returns its normalized text. It only
// resolves documents indexed without an explicit --doc-id, since that is
// the only case where doc_id is guaranteed to name a file `check --align`
// can still read (see runIndex's fallback to the file path as given).
func filesystemTextFetcher(docID string) (string, error) {
	data, err := os.ReadFile(docID)
	if err != nil {
		return "", err
	}
	return normalize.Normalize(string(data)), nil
}

// fileTypeFromFlag maps a --type flag value to an extractor.FileType,
// defaulting to plain text.
func fileTypeFromFlag(v string) extractor.FileType {
	switch v {
	case "pdf":
		return extractor.FileTypePDF
	case "docx":
		return extractor.FileTypeDOCX
	case "tex":
		return extractor.FileTypeTeX
	default:
		return extractor.FileTypeTXT
	}
}
