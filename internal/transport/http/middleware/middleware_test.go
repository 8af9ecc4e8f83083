package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatal("expected request id in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "given" {
		t.Fatalf("expected caller request id kept, got %q", rec.Header().Get("X-Request-ID"))
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id\nwith newline")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got == "" || strings.Contains(got, " ") {
		t.Fatalf("expected unsafe request id replaced, got %q", got)
	}
}

type statusLog struct {
	statuses []int
}

func (s *statusLog) Record(status int, _ time.Duration) {
	s.statuses = append(s.statuses, status)
}

func TestMetricsRecordsStatus(t *testing.T) {
	log := &statusLog{}
	handler := Metrics(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(log.statuses) != 1 || log.statuses[0] != http.StatusTeapot {
		t.Fatalf("expected one 418 observation, got %v", log.statuses)
	}
}

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for undeclared length, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(true)(noContent()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected security headers, got %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	SecureHeaders(false)(noContent()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("expected no HSTS outside production")
	}
}

func TestIdempotencyStoreNilIsNoop(t *testing.T) {
	var store *IdempotencyStore
	if _, reserved, err := store.Reserve(context.Background(), "batch", "key", "hash"); !reserved || err != nil {
		t.Fatalf("expected nil store to always reserve, got %v %v", reserved, err)
	}
	if err := store.Save(context.Background(), "batch", "key", "hash", []byte(`{}`)); err != nil {
		t.Fatalf("expected nil store save to be a no-op, got %v", err)
	}
}

func TestIdempotencyStoreInProcess(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(nil)

	if _, reserved, err := store.Reserve(ctx, "batch", "k1", "h1"); !reserved || err != nil {
		t.Fatalf("expected first reserve to win, got %v %v", reserved, err)
	}
	if _, _, err := store.Reserve(ctx, "batch", "k1", "h1"); !errors.Is(err, ErrIdempotencyInProgress) {
		t.Fatalf("expected ErrIdempotencyInProgress before save, got %v", err)
	}
	if err := store.Save(ctx, "batch", "k1", "h1", []byte(`{"jobId":"j1"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, reserved, err := store.Reserve(ctx, "batch", "k1", "h1")
	if reserved || err != nil || string(stored) != `{"jobId":"j1"}` {
		t.Fatalf("expected replay of saved response, got %s %v %v", stored, reserved, err)
	}
	if _, _, err := store.Reserve(ctx, "batch", "k1", "h2"); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict for another payload, got %v", err)
	}
	if _, reserved, err := store.Reserve(ctx, "other", "k1", "h2"); !reserved || err != nil {
		t.Fatalf("expected keys to be scoped by endpoint, got %v %v", reserved, err)
	}
}

func TestIdempotencyStoreReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(nil)
	if _, reserved, _ := store.Reserve(ctx, "batch", "k1", "h1"); !reserved {
		t.Fatal("expected reservation")
	}
	if err := store.Release(ctx, "batch", "k1", "h1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, reserved, err := store.Reserve(ctx, "batch", "k1", "h1"); !reserved || err != nil {
		t.Fatalf("expected retry to reserve again, got %v %v", reserved, err)
	}
}

func TestIdempotencyStoreSingleWinnerUnderContention(t *testing.T) {
	store := NewIdempotencyStore(nil)
	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, reserved, _ := store.Reserve(context.Background(), "batch", "shared", "h1")
			if reserved {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one reservation, got %d", winners)
	}
}

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}
