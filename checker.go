// Package plagiarismguard implements the similarity-detection pipeline
// described in SPEC_FULL.md: text preprocessing, k-shingling, MinHash
// signing, banded LSH retrieval, and character-level alignment. Checker
// is the pipeline orchestrator (spec §4.9): it composes the leaf
// packages (normalize, tokenizer, shingle, minhash, lsh, corpus, diff,
// paginate) behind three public operations, mirroring the teacher's
// root Client/interface split.
package plagiarismguard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/soundprediction/plagiarismguard/pkg/concurrent"
	"github.com/soundprediction/plagiarismguard/pkg/config"
	"github.com/soundprediction/plagiarismguard/pkg/corpus"
	"github.com/soundprediction/plagiarismguard/pkg/diff"
	"github.com/soundprediction/plagiarismguard/pkg/extractor"
	"github.com/soundprediction/plagiarismguard/pkg/lsh"
	"github.com/soundprediction/plagiarismguard/pkg/minhash"
	"github.com/soundprediction/plagiarismguard/pkg/normalize"
	"github.com/soundprediction/plagiarismguard/pkg/paginate"
	"github.com/soundprediction/plagiarismguard/pkg/shingle"
	"github.com/soundprediction/plagiarismguard/pkg/tokenizer"
)

// PlagiarismLevel buckets a top candidate's estimated Jaccard (spec §4.9,
// §6 "plagiarism_level").
type PlagiarismLevel string

const (
	LevelNone   PlagiarismLevel = "none"
	LevelLow    PlagiarismLevel = "low"
	LevelMedium PlagiarismLevel = "medium"
	LevelHigh   PlagiarismLevel = "high"
)

// LevelFor buckets a raw similarity score into the {none,low,medium,high}
// vocabulary spec §6 uses for both /check's plagiarism_level and
// /compare's similarity_level.
func LevelFor(similarity float64) PlagiarismLevel {
	switch {
	case similarity >= 0.7:
		return LevelHigh
	case similarity >= 0.4:
		return LevelMedium
	case similarity >= 0.2:
		return LevelLow
	default:
		return LevelNone
	}
}

// Match is a scored, metadata-attached corpus candidate (spec §3
// CandidateMatch, enriched with its stored metadata). Alignment is only
// populated when the Checker has a TextFetcher configured (see
// WithTextFetcher); it holds the character-level diff against that
// candidate's source text, clamped to the same response-size bounds the
// /align endpoint applies.
type Match struct {
	DocID            string
	EstimatedJaccard float64
	Metadata         corpus.Metadata
	Alignment        *paginate.TruncatedResult
}

// CheckResult is the outcome of CheckAgainstCorpus (spec §4.9 operation
// 2).
type CheckResult struct {
	Matches           []Match
	OverallSimilarity float64
	PlagiarismLevel   PlagiarismLevel
	IsPlagiarized     bool
	WordCount         int
	CorpusSize        int
	ProcessingTime    time.Duration
}

// CompareResult is the outcome of CompareTwo (spec §4.9 operation 3).
type CompareResult struct {
	Similarity     float64
	IsSimilar      bool
	WordCount1     int
	WordCount2     int
	ProcessingTime time.Duration
}

// Checker is the pipeline orchestrator: extract -> normalize -> tokenize
// -> shingle -> MinHash -> (index|query|compare) (spec §4.9). The zero
// value is not usable; construct with NewChecker.
type Checker struct {
	cfg         *config.Config
	tokenizer   tokenizer.Tokenizer
	extractors  extractor.Registry
	store       corpus.Store
	index       *lsh.Index
	perms       *minhash.Permutations
	log         *slog.Logger
	textFetcher TextFetcher
}

// TextFetcher resolves a corpus document's original text by doc_id. The
// core does not itself persist raw document text (spec §3's Record holds
// only a signature and metadata), so a host that wants per-candidate
// alignment in CheckAgainstCorpus's results supplies one via
// WithTextFetcher.
type TextFetcher func(docID string) (string, error)

// WithTextFetcher attaches fn to c and returns c, so it can be chained
// onto NewChecker's result. Once set, CheckAgainstCorpus runs the diff
// engine against every reported match and fills in its Alignment field;
// without one, matches carry Jaccard and metadata only.
func (c *Checker) WithTextFetcher(fn TextFetcher) *Checker {
	c.textFetcher = fn
	return c
}

// NewChecker builds a Checker over the given config, tokenizer,
// extractor registry, and corpus store, and rebuilds the in-memory LSH
// index from the store's contents (spec §4.6 "the index is reconstructed
// at startup by iterating and inserting"). A store load failure degrades
// the index to whatever loaded successfully rather than failing
// construction (spec §7).
func NewChecker(cfg *config.Config, tok tokenizer.Tokenizer, extractors extractor.Registry, store corpus.Store, log *slog.Logger) (*Checker, error) {
	if log == nil {
		log = slog.Default()
	}

	idx, err := lsh.New(cfg.MinHash.Permutations, cfg.LSH.Bands, cfg.LSH.Rows, cfg.LSH.Threshold)
	if err != nil {
		return nil, fmt.Errorf("plagiarismguard: build LSH index: %w", err)
	}

	c := &Checker{
		cfg:        cfg,
		tokenizer:  tok,
		extractors: extractors,
		store:      store,
		index:      idx,
		perms:      minhash.NewPermutations(cfg.MinHash.Seed, cfg.MinHash.Permutations),
		log:        log,
	}

	if err := c.loadCorpus(); err != nil {
		log.Error("corpus load degraded", "error", err)
	}

	return c, nil
}

// loadCorpus iterates the store and inserts every decodable record into
// the index. Records with a signature of the wrong length are skipped
// with a logged warning rather than aborting the load (spec §7, §8
// "Signature of wrong length on load: InvalidSignature; loader continues
// with other documents").
func (c *Checker) loadCorpus() error {
	records, err := c.store.LoadAll()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	for _, rec := range records {
		if len(rec.Signature) != c.cfg.MinHash.Permutations {
			c.log.Warn("skipping corpus record with invalid signature length",
				"doc_id", rec.DocID, "got", len(rec.Signature), "want", c.cfg.MinHash.Permutations)
			continue
		}
		if err := c.index.Insert(rec.DocID, rec.Signature); err != nil {
			c.log.Warn("skipping corpus record", "doc_id", rec.DocID, "error", err)
			continue
		}
	}
	c.log.Info("corpus loaded", "documents", len(records))
	return nil
}

// sign runs the shared extract -> normalize -> tokenize -> shingle ->
// MinHash prefix of the pipeline (spec §2 data flow) and returns the
// normalized text alongside the signature, since callers that need
// alignment also need the normalized text the offsets are relative to.
func (c *Checker) sign(ctx context.Context, r io.Reader, fileType extractor.FileType) (text string, sig minhash.Sig, wordCount int, err error) {
	extracted, err := c.extractors.Extract(ctx, r, fileType)
	if err != nil {
		return "", nil, 0, err
	}

	normalized := normalize.Normalize(extracted.Text)
	tokens := c.tokenizer.Tokenize(normalized)
	wordCount = len(tokens)

	shingleSize := c.cfg.Shingle.Size
	shingles := shingle.Shingles(tokens, shingleSize)

	if len(tokens) == 0 || len(shingles) == 0 {
		return "", nil, wordCount, ErrEmptyDocument
	}
	if limit := c.cfg.Limits.MaxShingleSetSize; limit > 0 && len(shingles) > limit {
		return "", nil, wordCount, ErrShingleSetTooLarge
	}

	sig, err = c.perms.Signature(shingles)
	if err != nil {
		return "", nil, wordCount, fmt.Errorf("plagiarismguard: %w", err)
	}

	return normalized, sig, wordCount, nil
}

// IndexDocument extracts, signs, and inserts fileDescriptor's content
// into the LSH index and corpus store under docID (spec §4.9 operation
// 1). It fails with ErrEmptyDocument if tokens or shingles are empty. A
// save failure after a successful insert is reported as a *SaveError; the
// index entry is not rolled back.
func (c *Checker) IndexDocument(ctx context.Context, fileDescriptor io.Reader, fileType extractor.FileType, docID string, meta corpus.Metadata) (corpus.Metadata, error) {
	_, sig, wordCount, err := c.sign(ctx, fileDescriptor, fileType)
	if err != nil {
		return corpus.Metadata{}, err
	}

	meta.WordCount = wordCount
	if meta.IndexedAt.IsZero() {
		meta.IndexedAt = time.Now().UTC()
	}
	meta = meta.WithDefaults()

	if err := c.index.Insert(docID, sig); err != nil {
		return corpus.Metadata{}, fmt.Errorf("plagiarismguard: %w", err)
	}

	if err := c.store.Save(docID, sig, meta); err != nil {
		return meta, &SaveError{DocID: docID, Err: err}
	}

	c.log.Info("indexed document", "doc_id", docID, "word_count", wordCount)
	return meta, nil
}

// RemoveDocument removes docID from both the index and the store. It is
// a no-op if absent from either (spec §4.5 "remove: no-op if absent").
func (c *Checker) RemoveDocument(docID string) error {
	c.index.Remove(docID)
	if err := c.store.Remove(docID); err != nil {
		return fmt.Errorf("plagiarismguard: %w", err)
	}
	return nil
}

// CheckOptions configures CheckAgainstCorpus (spec §4.9 operation 2
// defaults).
type CheckOptions struct {
	TopK      int     // candidates considered by the LSH query; default 20
	MinReport float64 // minimum estimated Jaccard to report; default 0.2
	TopReturn int     // max matches returned; default 10
}

// DefaultCheckOptions returns the spec §4.9 defaults.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{TopK: 20, MinReport: 0.2, TopReturn: 10}
}

// CheckAgainstCorpus queries the LSH index for documents similar to
// fileDescriptor's content and returns the ranked, thresholded match list
// (spec §4.9 operation 2).
func (c *Checker) CheckAgainstCorpus(ctx context.Context, fileDescriptor io.Reader, fileType extractor.FileType, opts CheckOptions) (*CheckResult, error) {
	start := time.Now()
	if opts.TopK <= 0 {
		opts.TopK = DefaultCheckOptions().TopK
	}
	if opts.TopReturn <= 0 {
		opts.TopReturn = DefaultCheckOptions().TopReturn
	}

	queryText, sig, wordCount, err := c.sign(ctx, fileDescriptor, fileType)
	if err != nil {
		return nil, err
	}

	candidates, err := c.index.Query(sig, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("plagiarismguard: %w", err)
	}

	metaIndex, err := c.loadMetadataIndex()
	if err != nil {
		return nil, fmt.Errorf("plagiarismguard: %w", err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, cand := range candidates {
		if cand.EstimatedJaccard < opts.MinReport {
			continue
		}
		meta, ok := metaIndex[cand.DocID]
		if !ok {
			c.log.Warn("missing metadata for candidate", "doc_id", cand.DocID)
			continue
		}
		matches = append(matches, Match{DocID: cand.DocID, EstimatedJaccard: cand.EstimatedJaccard, Metadata: meta})
		if len(matches) == opts.TopReturn {
			break
		}
	}

	if c.textFetcher != nil && len(matches) > 0 {
		c.alignMatches(ctx, queryText, matches)
	}

	overall := 0.0
	if len(matches) > 0 {
		overall = matches[0].EstimatedJaccard
	}
	level := LevelFor(overall)

	return &CheckResult{
		Matches:           matches,
		OverallSimilarity: overall,
		PlagiarismLevel:   level,
		IsPlagiarized:     level != LevelNone,
		WordCount:         wordCount,
		CorpusSize:        c.index.Stats().Count,
		ProcessingTime:    time.Since(start),
	}, nil
}

// loadMetadataIndex loads the full corpus once and indexes it by doc_id.
// The current Store contract exposes LoadAll rather than a point lookup,
// so CheckAgainstCorpus calls this once per check rather than once per
// candidate; corpus sizes in this system's target deployment (a single
// university's submission history) make a single full scan acceptable,
// and a caching Store wrapper can be layered in front without changing
// this call site.
func (c *Checker) loadMetadataIndex() (map[string]corpus.Metadata, error) {
	records, err := c.store.LoadAll()
	if err != nil {
		return nil, err
	}
	index := make(map[string]corpus.Metadata, len(records))
	for _, rec := range records {
		index[rec.DocID] = rec.Metadata
	}
	return index, nil
}

// alignMatches fans out a per-candidate diff against queryText using the
// configured TextFetcher, filling in each match's Alignment in place (spec
// §2's "(optional) Diff engine ... for top candidates" step). One worker
// per match, bounded by the shared default concurrency limit; a fetch or
// diff failure for one candidate is logged and skipped rather than failing
// the whole check.
func (c *Checker) alignMatches(ctx context.Context, queryText string, matches []Match) {
	docIDs := make([]string, len(matches))
	for i, m := range matches {
		docIDs[i] = m.DocID
	}

	pool := concurrent.NewWorkerPool(concurrent.GetSemaphoreLimit(), func(_ context.Context, docID string) (paginate.TruncatedResult, error) {
		sourceText, err := c.textFetcher(docID)
		if err != nil {
			return paginate.TruncatedResult{}, fmt.Errorf("fetch source text: %w", err)
		}
		return c.AlignTruncated(sourceText, queryText, diff.DefaultMinMatchLength), nil
	})

	results, errs := pool.ProcessItems(ctx, docIDs)
	for i, err := range errs {
		if err != nil {
			c.log.Warn("failed to align candidate", "doc_id", docIDs[i], "error", err)
			continue
		}
		r := results[i]
		matches[i].Alignment = &r
	}
}

// CompareTwo computes the MinHash Jaccard similarity between two
// documents directly, without consulting the LSH index (spec §4.9
// operation 3).
func (c *Checker) CompareTwo(ctx context.Context, fd1 io.Reader, type1 extractor.FileType, fd2 io.Reader, type2 extractor.FileType) (*CompareResult, error) {
	start := time.Now()

	_, sig1, wc1, err := c.sign(ctx, fd1, type1)
	if err != nil {
		return nil, err
	}
	_, sig2, wc2, err := c.sign(ctx, fd2, type2)
	if err != nil {
		return nil, err
	}

	similarity := minhash.Jaccard(sig1, sig2)
	return &CompareResult{
		Similarity:     similarity,
		IsSimilar:      similarity >= 0.4,
		WordCount1:     wc1,
		WordCount2:     wc2,
		ProcessingTime: time.Since(start),
	}, nil
}

// Align runs the diff engine between two arbitrary texts — typically a
// query document's normalized text and a matched corpus document's
// source text fetched by the host service (spec §1: raw corpus text is
// not persisted by this core) — and returns the full, unpaginated
// segment list (spec §4.7).
func (c *Checker) Align(sourceText, queryText string, minMatchLength int) diff.Result {
	if minMatchLength <= 0 {
		minMatchLength = diff.DefaultMinMatchLength
	}
	return diff.Align(sourceText, queryText, minMatchLength)
}

// AlignPaginated runs Align and returns a single page over its segment
// list (spec §4.8 compare_paginated).
func (c *Checker) AlignPaginated(sourceText, queryText string, minMatchLength, page, pageSize int) paginate.PagedResult {
	if minMatchLength <= 0 {
		minMatchLength = diff.DefaultMinMatchLength
	}
	return paginate.ComparePaginated(sourceText, queryText, minMatchLength, page, pageSize)
}

// AlignTruncated runs Align and clamps the result to the response-size
// bounds spec §5 and §4.8 document.
func (c *Checker) AlignTruncated(sourceText, queryText string, minMatchLength int) paginate.TruncatedResult {
	return paginate.Truncate(c.Align(sourceText, queryText, minMatchLength))
}

// Stats reports the LSH index's current size and configuration (spec
// §4.5, §6 "corpus/stats").
func (c *Checker) Stats() lsh.Stats {
	return c.index.Stats()
}

// RecordHistory appends a check-history entry to the corpus store (spec
// §6 "History record"). Failures are non-fatal to the calling check
// operation; the host logs and moves on since history is an optional,
// surrounding-service concern rather than part of the core contract.
func (c *Checker) RecordHistory(entry corpus.HistoryEntry) {
	if err := c.store.AppendHistory(entry); err != nil {
		c.log.Warn("failed to record check history", "error", err)
	}
}

// Close releases the underlying corpus store.
func (c *Checker) Close() error {
	return c.store.Close()
}
