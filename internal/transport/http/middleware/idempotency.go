package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"

	"hrpay/internal/platform/querier"
)

var (
	ErrIdempotencyConflict   = errors.New("idempotency key conflicts with existing request")
	ErrIdempotencyInProgress = errors.New("request with this idempotency key is still being accepted")
)

// IdempotencyStore remembers responses by client key and endpoint. Keys live in
// Postgres when a database is given and in process otherwise. A nil store disables replay.
type IdempotencyStore struct {
	db querier.Querier

	mu  sync.Mutex
	mem map[idempotencyKey]idempotencyEntry
}

type idempotencyKey struct {
	endpoint string
	key      string
}

type idempotencyEntry struct {
	requestHash string
	response    json.RawMessage
}

func NewIdempotencyStore(db querier.Querier) *IdempotencyStore {
	return &IdempotencyStore{db: db, mem: map[idempotencyKey]idempotencyEntry{}}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Reserve claims key for requestHash before any work starts. reserved is true for
// the first caller only; later callers get the stored response, ErrIdempotencyInProgress
// while the first caller has not saved yet, or ErrIdempotencyConflict for another payload.
func (s *IdempotencyStore) Reserve(ctx context.Context, endpoint, key, requestHash string) (stored json.RawMessage, reserved bool, err error) {
	if s == nil || key == "" {
		return nil, true, nil
	}
	if s.db == nil {
		return s.reserveMem(endpoint, key, requestHash)
	}

	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (key, endpoint, request_hash)
    VALUES ($1, $2, $3)
    ON CONFLICT (key, endpoint) DO NOTHING
  `, key, endpoint, requestHash)
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return nil, true, nil
	}

	var storedHash string
	var raw []byte
	err = s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE key = $1 AND endpoint = $2
  `, key, endpoint).Scan(&storedHash, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		// released between the insert and the read
		return nil, false, ErrIdempotencyInProgress
	}
	if err != nil {
		return nil, false, err
	}
	return replay(storedHash, requestHash, raw)
}

func (s *IdempotencyStore) reserveMem(endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idempotencyKey{endpoint: endpoint, key: key}
	entry, ok := s.mem[k]
	if !ok {
		s.mem[k] = idempotencyEntry{requestHash: requestHash}
		return nil, true, nil
	}
	return replay(entry.requestHash, requestHash, entry.response)
}

func replay(storedHash, requestHash string, stored json.RawMessage) (json.RawMessage, bool, error) {
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	if len(stored) == 0 || string(stored) == "null" {
		return nil, false, ErrIdempotencyInProgress
	}
	return stored, false, nil
}

// Save records the response for a key reserved with the same request hash.
func (s *IdempotencyStore) Save(ctx context.Context, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || key == "" {
		return nil
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		k := idempotencyKey{endpoint: endpoint, key: key}
		if entry, ok := s.mem[k]; ok && entry.requestHash != requestHash {
			return ErrIdempotencyConflict
		}
		s.mem[k] = idempotencyEntry{requestHash: requestHash, response: response}
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

// Release drops a reservation that never got a response so the client can retry.
func (s *IdempotencyStore) Release(ctx context.Context, endpoint, key, requestHash string) error {
	if s == nil || key == "" {
		return nil
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		k := idempotencyKey{endpoint: endpoint, key: key}
		if entry, ok := s.mem[k]; ok && entry.requestHash == requestHash && entry.response == nil {
			delete(s.mem, k)
		}
		return nil
	}
	_, err := s.db.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE key = $1 AND endpoint = $2 AND request_hash = $3 AND response_json IS NULL
  `, key, endpoint, requestHash)
	return err
}
