// Package admin holds the privileged read path. This is the only code allowed
// to list stored responses: it runs server-side with the service-role key,
// which must never reach the browser or appear in any response payload.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Env var names surfaced in configuration errors; the operator needs to know
// exactly which setting is missing.
const (
	EnvSupabaseURL    = "SUPABASE_URL"
	EnvServiceRoleKey = "SUPABASE_SERVICE_ROLE_KEY"
)

// Config carries the privileged credentials, threaded in explicitly.
type Config struct {
	SupabaseURL    string
	ServiceRoleKey string
}

// Row is one stored submission as returned to the admin surface. The full
// response payload travels opaque in ResponseData.
type Row struct {
	ID              string          `json:"id"`
	ResponseData    json.RawMessage `json:"response_data"`
	UserName        string          `json:"user_name"`
	UserEmail       string          `json:"user_email"`
	StartedAt       *time.Time      `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
	ProgressPercent int             `json:"progress_percent"`
	CreatedAt       time.Time       `json:"created_at"`
}

type envelope struct {
	OK    bool   `json:"ok"`
	Data  []Row  `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Service lists all stored responses, newest first. The query strategy is an
// explicit capability probe fixed at construction: with a pgx pool the
// primary direct-SQL path is used; without one, the REST path with the
// service-role key. Auth or network failures from either path propagate;
// they never switch strategies.
type Service struct {
	cfg  Config
	pool *pgxpool.Pool
	http *http.Client
	log  *zap.Logger
}

func NewService(cfg Config, pool *pgxpool.Pool, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, pool: pool, http: &http.Client{Timeout: 30 * time.Second}, log: log}
}

// SetHTTPClient is used by tests to inject a transport for the REST path.
func (s *Service) SetHTTPClient(hc *http.Client) { s.http = hc }

// Handler serves the privileged read endpoint: GET returns the envelope,
// OPTIONS answers the cross-origin pre-flight, everything else is 405.
func (s *Service) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			writeEnvelope(w, http.StatusOK, envelope{OK: true})
		case http.MethodGet:
			s.serveGet(w, r)
		default:
			writeEnvelope(w, http.StatusMethodNotAllowed, envelope{OK: false, Error: "Method not allowed"})
		}
	}
}

func (s *Service) serveGet(w http.ResponseWriter, r *http.Request) {
	if s.cfg.SupabaseURL == "" && s.pool == nil {
		writeEnvelope(w, http.StatusInternalServerError, envelope{OK: false, Error: "Missing " + EnvSupabaseURL})
		return
	}
	rows, err := s.List(r.Context())
	if err != nil {
		s.log.Error("admin responses query failed", zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, envelope{OK: false, Error: err.Error()})
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{OK: true, Data: rows})
}

// List fetches every stored response, newest first by creation time. It never
// downgrades to the public credential: a missing service-role key is a
// configuration error, not a cue to try the anon key.
func (s *Service) List(ctx context.Context) ([]Row, error) {
	if s.pool != nil {
		return s.listDirect(ctx)
	}
	if s.cfg.ServiceRoleKey == "" {
		return nil, fmt.Errorf("Missing %s", EnvServiceRoleKey)
	}
	return s.listREST(ctx)
}

func (s *Service) listDirect(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, response_data, user_name, user_email, started_at, completed_at, progress_percent, created_at
FROM questionnaire_responses
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var row Row
		var payload []byte
		if err := rows.Scan(&row.ID, &payload, &row.UserName, &row.UserEmail,
			&row.StartedAt, &row.CompletedAt, &row.ProgressPercent, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response row: %w", err)
		}
		row.ResponseData = json.RawMessage(payload)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Service) listREST(ctx context.Context) ([]Row, error) {
	url := strings.TrimSuffix(s.cfg.SupabaseURL, "/") +
		"/rest/v1/questionnaire_responses?select=*&order=created_at.desc"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.cfg.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceRoleKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote store query failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("remote store query failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response rows: %w", err)
	}
	return rows, nil
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "content-type, authorization")
	h.Set("Access-Control-Allow-Methods", "GET,OPTIONS")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
