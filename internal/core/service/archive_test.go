package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// Mock BlobStore
type mockBlobStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	metadata map[string]map[string]string

	putErr  error
	listErr error
	signErr error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{
		objects:  make(map[string][]byte),
		types:    make(map[string]string),
		metadata: make(map[string]map[string]string),
	}
}

func (m *mockBlobStore) Put(ctx context.Context, key, contentType string, metadata map[string]string, payload []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = payload
	m.types[key] = contentType
	m.metadata[key] = metadata
	return nil
}

func (m *mockBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.signErr != nil {
		return "", m.signErr
	}
	return "https://signed.example/" + key, nil
}

func TestStore_DerivesKey(t *testing.T) {
	blobs := newMockBlobStore()
	archive := NewScreenshotArchive(blobs)

	key, err := archive.Store(context.Background(), []byte("png-bytes"), "image/png", "AcmeCo", "2024-05-01")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !strings.HasPrefix(key, "2024-05-01_AcmeCo_") {
		t.Errorf("expected key prefix 2024-05-01_AcmeCo_, got %s", key)
	}

	payload, ok := blobs.objects[key]
	if !ok {
		t.Fatalf("payload not stored under %s", key)
	}
	if !bytes.Equal(payload, []byte("png-bytes")) {
		t.Errorf("stored payload mismatch: %q", payload)
	}
	if blobs.types[key] != "image/png" {
		t.Errorf("expected content type image/png, got %s", blobs.types[key])
	}
	if md := blobs.metadata[key]; md["company"] != "AcmeCo" || md["date"] != "2024-05-01" {
		t.Errorf("unexpected metadata: %v", md)
	}
}

func TestStore_Validation(t *testing.T) {
	archive := NewScreenshotArchive(newMockBlobStore())
	ctx := context.Background()

	if _, err := archive.Store(ctx, nil, "image/png", "AcmeCo", "2024-05-01"); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("empty payload: expected ErrEmptyPayload, got %v", err)
	}
	if _, err := archive.Store(ctx, []byte("x"), "image/png", "", "2024-05-01"); !errors.Is(err, ErrMissingField) {
		t.Errorf("empty company: expected ErrMissingField, got %v", err)
	}
	if _, err := archive.Store(ctx, []byte("x"), "image/png", "AcmeCo", ""); !errors.Is(err, ErrMissingField) {
		t.Errorf("empty date: expected ErrMissingField, got %v", err)
	}
	if _, err := archive.Store(ctx, []byte("x"), "image/png", "Acme_Co", "2024-05-01"); !errors.Is(err, ErrBadKeySegment) {
		t.Errorf("underscore in company: expected ErrBadKeySegment, got %v", err)
	}
}

func TestStore_WriteFailure(t *testing.T) {
	blobs := newMockBlobStore()
	blobs.putErr = errors.New("bucket unavailable")
	archive := NewScreenshotArchive(blobs)

	_, err := archive.Store(context.Background(), []byte("x"), "image/png", "AcmeCo", "2024-05-01")
	if !errors.Is(err, ErrStorageWrite) {
		t.Errorf("expected ErrStorageWrite, got %v", err)
	}
}

func TestQuery_FiltersByDateAndCompany(t *testing.T) {
	blobs := newMockBlobStore()
	ctx := context.Background()

	seed := []string{
		"2024-05-01_AcmeCo_1714000000001",
		"2024-05-01_AcmeCo_1714000000002",
		"2024-05-01_OtherCo_1714000000003",
		"2024-05-02_AcmeCo_1714100000004",
	}
	for _, key := range seed {
		if err := blobs.Put(ctx, key, "image/png", nil, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	archive := NewScreenshotArchive(blobs)

	got, err := archive.Query(ctx, "AcmeCo", "2024-05-01", "2024-05-03")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	// Only startDate uploads are candidates: listing uses the fixed
	// "2024-05-01_AcmeCo_" prefix, so the 2024-05-02 object is invisible
	// even though it sits inside the requested window.
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d: %+v", len(got), got)
	}
	for _, s := range got {
		if s.Date != "2024-05-01" {
			t.Errorf("expected date 2024-05-01, got %s", s.Date)
		}
		if s.Company != "AcmeCo" {
			t.Errorf("expected company AcmeCo, got %s", s.Company)
		}
		if s.URL == "" {
			t.Error("expected non-empty signed URL")
		}
	}
}

func TestQuery_EndDateFilter(t *testing.T) {
	blobs := newMockBlobStore()
	ctx := context.Background()

	if err := blobs.Put(ctx, "2024-05-02_AcmeCo_1714100000001", "image/png", nil, []byte("x")); err != nil {
		t.Fatal(err)
	}

	archive := NewScreenshotArchive(blobs)

	// endDate before the object's date excludes it even though the
	// prefix matches.
	got, err := archive.Query(ctx, "AcmeCo", "2024-05-02", "2024-05-01")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no summaries, got %d", len(got))
	}
}

func TestQuery_Validation(t *testing.T) {
	archive := NewScreenshotArchive(newMockBlobStore())
	ctx := context.Background()

	for _, args := range [][3]string{
		{"", "2024-05-01", "2024-05-02"},
		{"AcmeCo", "", "2024-05-02"},
		{"AcmeCo", "2024-05-01", ""},
	} {
		if _, err := archive.Query(ctx, args[0], args[1], args[2]); !errors.Is(err, ErrMissingField) {
			t.Errorf("Query(%q, %q, %q): expected ErrMissingField, got %v", args[0], args[1], args[2], err)
		}
	}
}

func TestQuery_ReadFailures(t *testing.T) {
	blobs := newMockBlobStore()
	blobs.listErr = errors.New("bucket unavailable")
	archive := NewScreenshotArchive(blobs)

	_, err := archive.Query(context.Background(), "AcmeCo", "2024-05-01", "2024-05-02")
	if !errors.Is(err, ErrStorageRead) {
		t.Errorf("list failure: expected ErrStorageRead, got %v", err)
	}

	blobs = newMockBlobStore()
	if err := blobs.Put(context.Background(), "2024-05-01_AcmeCo_1", "image/png", nil, []byte("x")); err != nil {
		t.Fatal(err)
	}
	blobs.signErr = errors.New("signer unavailable")
	archive = NewScreenshotArchive(blobs)

	_, err = archive.Query(context.Background(), "AcmeCo", "2024-05-01", "2024-05-02")
	if !errors.Is(err, ErrStorageRead) {
		t.Errorf("sign failure: expected ErrStorageRead, got %v", err)
	}
}
