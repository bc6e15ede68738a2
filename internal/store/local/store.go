// Package local is the durable single-slot store for the current session's
// response. One response per client, addressed by a fixed key; last writer
// wins, no versioning.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fusion5-labs/discovery-survey/internal/db"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

// SlotKey is the fixed key the single response slot lives under.
const SlotKey = "erp-questionnaire-response"

// StorageError reports a failed durable write. It is absorbed by Save and
// only surfaced through the warning hook.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("local store write failed: %v", e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// ParseError reports a stored payload that is not a well-formed response.
// Load treats it as absent data.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("stored response unreadable: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

type Store struct {
	db  *sql.DB
	log *zap.Logger

	// OnWarning is invoked with a user-facing message when a write fails.
	// The in-memory response stays authoritative for the session.
	OnWarning func(msg string)
}

// Open opens (or creates) the sqlite-backed slot store.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	handle, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: handle, log: log}, nil
}

// NewWithDB wraps an existing handle; the schema must already exist.
func NewWithDB(handle *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: handle, log: log}
}

func (s *Store) Close() error { return s.db.Close() }

// Load returns the stored response, or nil when the slot is empty. A payload
// that fails to decode is logged and treated as "no data", never returned as
// an error to the caller.
func (s *Store) Load(ctx context.Context) (*survey.Response, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM local_slots WHERE slot_key=$1`, SlotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	var r survey.Response
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		perr := &ParseError{Err: err}
		s.log.Warn("discarding unreadable stored response", zap.Error(perr))
		return nil, nil
	}
	return &r, nil
}

// Save serializes the response under the fixed key. A write failure is not
// an error for the caller: it is logged, the warning hook fires, and the
// in-memory response remains authoritative.
func (s *Store) Save(ctx context.Context, r *survey.Response) {
	payload, err := json.Marshal(r)
	if err == nil {
		_, err = s.db.ExecContext(ctx, `
INSERT INTO local_slots (slot_key, payload, updated_at) VALUES ($1,$2,$3)
ON CONFLICT (slot_key) DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`,
			SlotKey, string(payload), time.Now().Unix())
	}
	if err != nil {
		serr := &StorageError{Err: err}
		s.log.Warn("response not persisted", zap.Error(serr))
		if s.OnWarning != nil {
			s.OnWarning("Storage limit exceeded or write failed. Please export your results; your answers are kept for this session.")
		}
	}
}

// Clear removes the slot; a no-op when absent.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_slots WHERE slot_key=$1`, SlotKey)
	if err != nil {
		return fmt.Errorf("clear response: %w", err)
	}
	return nil
}
