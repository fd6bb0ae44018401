package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/config"
	"github.com/soundprediction/plagiarismguard/pkg/corpus"
	"github.com/soundprediction/plagiarismguard/pkg/extractor"
	"github.com/soundprediction/plagiarismguard/pkg/minhash"
	"github.com/soundprediction/plagiarismguard/pkg/tokenizer"
)

// memStore is an in-memory corpus.Store used only so server tests never
// touch disk, mirroring the root package's own test fake.
type memStore struct {
	records map[string]corpus.Record
	history []corpus.HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]corpus.Record)}
}

func (m *memStore) Save(docID string, sig minhash.Sig, meta corpus.Metadata) error {
	m.records[docID] = corpus.Record{DocID: docID, Signature: sig, Metadata: meta.WithDefaults()}
	return nil
}

func (m *memStore) LoadAll() ([]corpus.Record, error) {
	out := make([]corpus.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) Remove(docID string) error {
	delete(m.records, docID)
	return nil
}

func (m *memStore) AppendHistory(entry corpus.HistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

func (m *memStore) RecentHistory(limit int) ([]corpus.HistoryEntry, error) {
	if limit > 0 && limit < len(m.history) {
		return m.history[len(m.history)-limit:], nil
	}
	return m.history, nil
}

func (m *memStore) Close() error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8080
	cfg.MinHash.Seed = 42
	cfg.MinHash.Permutations = 32
	cfg.LSH.Bands = 16
	cfg.LSH.Rows = 2
	cfg.LSH.Threshold = 0.3
	cfg.Shingle.Size = 3
	cfg.Limits.MaxShingleSetSize = 1_000_000
	return cfg
}

func newTestServer(t *testing.T) (*Server, *plagiarismguard.Checker) {
	t.Helper()
	cfg := testConfig()
	checker, err := plagiarismguard.NewChecker(cfg, tokenizer.WhitespaceSplit{}, extractor.Registry{}, newMemStore(), nil)
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	srv := New(cfg, checker)
	srv.Setup()
	return srv, checker
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func TestHealthRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health", "/healthcheck", "/live", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestCorpusStatsRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/corpus/stats", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "empty" {
		t.Fatalf("expected empty corpus status, got %+v", body)
	}
}

func TestCheckRoute(t *testing.T) {
	srv, checker := newTestServer(t)
	source := "the quick brown fox jumps over the lazy dog in the green meadow near the old mill"
	if _, err := checker.IndexDocument(context.Background(), strings.NewReader(source), extractor.FileTypeTXT, "doc-1", corpus.Metadata{Title: "Original"}); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	body, contentType := multipartBody(t, "file", "submission.txt", source)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/check", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["is_plagiarized"] != true {
		t.Fatalf("expected is_plagiarized=true for identical text, got %+v", resp)
	}
}

func TestCheckRouteRejectsEmptyDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	body, contentType := multipartBody(t, "file", "empty.txt", "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/check", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCheckRouteMissingFileField(t *testing.T) {
	srv, _ := newTestServer(t)

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/check", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file field, got %d", rec.Code)
	}
}

func TestCompareRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	text := "one two three four five six seven eight nine ten"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, field := range []string{"file1", "file2"} {
		part, err := writer.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte(text)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["similarity"] != 100.0 {
		t.Fatalf("expected 100.0 similarity for identical text, got %+v", resp["similarity"])
	}
}

func TestAlignRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 5)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, field := range []string{"source", "query"} {
		part, err := writer.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte(text)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/align?min_match_length=1&page=1&page_size=10", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["similarity"] != 100.0 {
		t.Fatalf("expected 100.0 similarity for identical text, got %+v", resp["similarity"])
	}
	segments, ok := resp["segments"].([]interface{})
	if !ok || len(segments) == 0 {
		t.Fatalf("expected at least one segment, got %+v", resp["segments"])
	}
}

func TestAlignRouteMissingField(t *testing.T) {
	srv, _ := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("source", "source.txt")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("hello")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/align", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing query field, got %d", rec.Code)
	}
}
