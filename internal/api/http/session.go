// Package http wires the survey core to chi handlers. Handlers follow the
// constructor style used across the codebase: func XxxHandler(deps) http.HandlerFunc.
package http

import (
	"context"
	"errors"
	"sync"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
	"github.com/fusion5-labs/discovery-survey/internal/store/local"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

// ErrNoResponse means no questionnaire has been started in this session.
var ErrNoResponse = errors.New("no response in progress")

// Session owns the single in-flight response for this server instance and its
// durable copy in the local slot store. Mutations are serialized: the state
// model expects them applied in order, never interleaved, and each mutation
// is persisted before the result is returned.
type Session struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	store   *local.Store
	current *survey.Response
}

func NewSession(c *catalog.Catalog, store *local.Store) *Session {
	return &Session{catalog: c, store: store}
}

// Current returns the active response, loading the durable copy on first use.
// Nil when no response has been started.
func (s *Session) Current(ctx context.Context) (*survey.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Session) load(ctx context.Context) (*survey.Response, error) {
	if s.current != nil {
		return s.current, nil
	}
	r, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.current = r
	return r, nil
}

// StartOrResume returns the stored response when one exists, otherwise
// creates and persists a fresh one.
func (s *Session) StartOrResume(ctx context.Context) (*survey.Response, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}
	if r != nil {
		return r, true, nil
	}
	r = survey.New(s.catalog)
	s.current = r
	s.store.Save(ctx, r)
	return r, false, nil
}

// Mutate applies fn to the current response under the session lock and
// persists the result. fn errors abort without a write.
func (s *Session) Mutate(ctx context.Context, fn func(*survey.Response) error) (*survey.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoResponse
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	s.store.Save(ctx, r)
	return r, nil
}

// Reset clears the durable slot and drops the in-memory response.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return s.store.Clear(ctx)
}

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }
