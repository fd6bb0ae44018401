// Package corpus implements the corpus store adapter (spec §4.6, §6): a
// key-value persistence layer for indexed documents' signatures and
// metadata, and for the surrounding service's bounded check-history list.
// It carries no business logic — the pipeline orchestrator owns that —
// and is the only package under pkg/ that touches disk.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/plagiarismguard/pkg/minhash"
)

// ErrCorpusUnavailable wraps any underlying store I/O failure (spec §7
// CorpusUnavailable).
var ErrCorpusUnavailable = errors.New("corpus: store unavailable")

// ErrInvalidSignature names a stored signature that is not valid JSON
// (spec §7 InvalidSignature). LoadAll does not return it: it skips such
// records and does not check signature length, which is left to the
// caller that inserts the records into the index.
var ErrInvalidSignature = errors.New("corpus: invalid signature bytes")

// Metadata is a corpus record's descriptive fields (spec §3 "Corpus
// record", spec §6 metadata key). Missing fields default to "Unknown" for
// strings and zero for numerics, matching spec §6.
type Metadata struct {
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	University string    `json:"university"`
	Year       int       `json:"year"`
	Filename   string    `json:"filename"`
	WordCount  int       `json:"word_count"`
	Source     string    `json:"source"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// WithDefaults fills unset string fields with "Unknown", matching spec §6
// ("Missing fields default to Unknown").
func (m Metadata) WithDefaults() Metadata {
	if m.Title == "" {
		m.Title = "Unknown"
	}
	if m.Author == "" {
		m.Author = "Unknown"
	}
	if m.University == "" {
		m.University = "Unknown"
	}
	if m.Filename == "" {
		m.Filename = "Unknown"
	}
	if m.Source == "" {
		m.Source = "Unknown"
	}
	return m
}

// Record is a full corpus entry as returned by LoadAll: a document's
// signature and metadata, keyed by doc_id.
type Record struct {
	DocID     string
	Signature minhash.Sig
	Metadata  Metadata
}

// HistoryEntry is the surrounding service's bounded check-history record
// (spec §6 "History record").
type HistoryEntry struct {
	ID                string    `json:"id"`
	QueryName         string    `json:"query_name"`
	OverallSimilarity float64   `json:"overall_similarity"`
	MatchesCount      int       `json:"matches_count"`
	PlagiarismLevel   string    `json:"plagiarism_level"`
	FilePath          string    `json:"file_path,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// maxHistoryEntries bounds the check:history list (spec §6 "trimmed to
// last 100").
const maxHistoryEntries = 100

const historyKey = "check:history"

func sigKey(docID string) []byte  { return []byte("doc:sig:" + docID) }
func metaKey(docID string) []byte { return []byte("doc:meta:" + docID) }

// Store is the capability the pipeline orchestrator depends on (spec
// §4.6): save a document's signature and metadata, and iterate every
// saved document at startup to rebuild the LSH index.
type Store interface {
	Save(docID string, sig minhash.Sig, meta Metadata) error
	LoadAll() ([]Record, error)
	Remove(docID string) error
	AppendHistory(entry HistoryEntry) error
	RecentHistory(limit int) ([]HistoryEntry, error)
	Close() error
}

// BadgerStore is a Store backed by an embedded BadgerDB instance (spec
// §4.6 "expected to be a key-value store").
type BadgerStore struct {
	db *badger.DB
}

// Open opens (creating if absent) a BadgerStore rooted at dir.
func Open(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	return nil
}

// Save persists sig and meta for docID in the wire format spec §6
// documents: the signature as a JSON array of P uint64 values (the format
// the loader expects — see DESIGN.md's Open Question resolution), the
// metadata as a JSON object.
func (s *BadgerStore) Save(docID string, sig minhash.Sig, meta Metadata) error {
	meta = meta.WithDefaults()
	sigBytes, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("corpus: marshal signature: %w", err)
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("corpus: marshal metadata: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sigKey(docID), sigBytes); err != nil {
			return err
		}
		return txn.Set(metaKey(docID), metaBytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	return nil
}

// Remove deletes docID's signature and metadata. It is a no-op if absent.
func (s *BadgerStore) Remove(docID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sigKey(docID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(metaKey(docID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	return nil
}

// LoadAll iterates every doc:sig:* key, pairs it with its doc:meta:*
// counterpart, and returns the decodable subset. A record whose signature
// is malformed is skipped rather than failing the whole load (spec §7:
// "the index MUST NOT be left partially populated with unreadable
// signatures" — here that means such a record never enters the returned
// slice at all, so the caller never inserts it).
func (s *BadgerStore) LoadAll() ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("doc:sig:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			docID := string(item.KeyCopy(nil))[len("doc:sig:"):]

			var sigBytes []byte
			if err := item.Value(func(v []byte) error {
				sigBytes = append([]byte{}, v...)
				return nil
			}); err != nil {
				return err
			}

			var sig minhash.Sig
			if err := json.Unmarshal(sigBytes, &sig); err != nil {
				continue // ErrInvalidSignature: skip, don't fail the whole load
			}

			meta, err := loadMetaTxn(txn, docID)
			if err != nil {
				continue
			}

			records = append(records, Record{DocID: docID, Signature: sig, Metadata: meta})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].DocID < records[j].DocID })
	return records, nil
}

func loadMetaTxn(txn *badger.Txn, docID string) (Metadata, error) {
	item, err := txn.Get(metaKey(docID))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &meta)
	})
	if err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// AppendHistory appends entry to the check:history list, trimming to the
// last maxHistoryEntries (spec §6).
func (s *BadgerStore) AppendHistory(entry HistoryEntry) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entries, err := readHistoryTxn(txn)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		if len(entries) > maxHistoryEntries {
			entries = entries[len(entries)-maxHistoryEntries:]
		}
		encoded, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return txn.Set([]byte(historyKey), encoded)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	return nil
}

// RecentHistory returns up to limit of the most recently appended history
// entries, most recent first.
func (s *BadgerStore) RecentHistory(limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		entries, err = readHistoryTxn(txn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	reversed := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

func readHistoryTxn(txn *badger.Txn) ([]HistoryEntry, error) {
	item, err := txn.Get([]byte(historyKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &entries)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
