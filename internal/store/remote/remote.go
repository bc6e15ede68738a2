// Package remote submits responses to the remote store (Supabase REST) with
// the public, write-only anon credential. One shot, no retries; the caller
// owns any retry policy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

// ErrNotConfigured is returned when the endpoint or credential is absent; no
// network I/O is attempted in that case.
var ErrNotConfigured = errors.New("remote store not configured")

// RequestError carries the human-readable failure from a submit attempt.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote store request failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote store request failed: %s", e.Message)
}

// Config is threaded explicitly into the client; there is no package-global
// initializer.
type Config struct {
	BaseURL string
	AnonKey string
}

func (c Config) configured() bool { return c.BaseURL != "" && c.AnonKey != "" }

// Row is the denormalized shape inserted into the remote store. response_data
// holds the full response payload; the remaining columns exist for query
// convenience on the admin side.
type Row struct {
	ID              string           `json:"id"`
	ResponseData    *survey.Response `json:"response_data"`
	UserName        string           `json:"user_name"`
	UserEmail       string           `json:"user_email"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at"`
	ProgressPercent int              `json:"progress_percent"`
	CreatedAt       time.Time        `json:"created_at"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: 30 * time.Second}}
}

// NewClientWithHTTP is used by tests to inject a transport.
func NewClientWithHTTP(cfg Config, hc *http.Client) *Client {
	return &Client{cfg: cfg, http: hc}
}

// Submit inserts one row for the response. It returns ErrNotConfigured when
// the endpoint is absent, a *RequestError on HTTP/network failure, and nil on
// success. It never retries.
func (c *Client) Submit(ctx context.Context, r *survey.Response) error {
	if !c.cfg.configured() {
		return ErrNotConfigured
	}
	row := Row{
		ID:              r.ID,
		ResponseData:    r,
		UserName:        r.Metadata.UserName,
		UserEmail:       r.Metadata.UserEmail,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		ProgressPercent: r.Progress.PercentComplete,
		CreatedAt:       time.Now().UTC(),
	}
	body, err := json.Marshal(row)
	if err != nil {
		return &RequestError{Message: err.Error()}
	}
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/rest/v1/questionnaire_responses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &RequestError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.AnonKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return nil
}
