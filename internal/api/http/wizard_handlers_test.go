package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
	"github.com/fusion5-labs/discovery-survey/internal/export"
	"github.com/fusion5-labs/discovery-survey/internal/store/local"
	"github.com/fusion5-labs/discovery-survey/internal/store/remote"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	c, err := catalog.Parse([]byte(`
sections:
  - id: alpha
    name: Alpha
    questions:
      - { id: q1, label: One, type: text }
  - id: beta
    name: Beta
    questions:
      - { id: q2, label: Two, type: yes-no-followup }
`))
	require.NoError(t, err)
	store, err := local.Open(context.Background(),
		"file:"+filepath.Join(t.TempDir(), "survey.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewSession(c, store)
}

func testRouter(sess *Session, writer *remote.Client) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/response", GetResponseHandler(sess))
	r.Post("/api/response", StartResponseHandler(sess))
	r.Delete("/api/response", ClearResponseHandler(sess))
	r.Put("/api/response/answer", RecordAnswerHandler(sess))
	r.Put("/api/response/metadata", UpdateMetadataHandler(sess))
	r.Post("/api/response/sections/{sectionID}/complete", CompleteSectionHandler(sess))
	r.Post("/api/response/submit", SubmitResponseHandler(sess, writer))
	r.Get("/api/response/export", ExportResponseHandler(sess))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetResponseBeforeStart(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))
	rec := do(t, h, http.MethodGet, "/api/response", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartThenResume(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))

	rec := do(t, h, http.MethodPost, "/api/response", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var first survey.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, 2, first.Progress.TotalSections)

	rec = do(t, h, http.MethodPost, "/api/response", "")
	require.Equal(t, http.StatusOK, rec.Code, "second start resumes")
	var second survey.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordAnswerAndComplete(t *testing.T) {
	sess := testSession(t)
	h := testRouter(sess, remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodPut, "/api/response/answer",
		`{"section_id":"alpha","question_id":"q1","answer":{"type":"text","value":"hi"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/response/sections/alpha/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp survey.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Progress.CompletedSections)
	assert.Equal(t, 50, resp.Progress.PercentComplete)
	assert.Equal(t, 2, resp.Progress.CurrentSection)

	// The mutation was persisted before the handler returned.
	stored, err := sess.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Sections["alpha"].Completed)
}

func TestRecordAnswerMissingAnswerIs400(t *testing.T) {
	sess := testSession(t)
	h := testRouter(sess, remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodPut, "/api/response/answer",
		`{"section_id":"alpha","question_id":"q1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing answer")

	// The rejected request left nothing behind: the session still serializes
	// and later writes still reach the store.
	current, err := sess.Current(context.Background())
	require.NoError(t, err)
	_, err = export.RenderJSON(current)
	require.NoError(t, err)

	rec = do(t, h, http.MethodPut, "/api/response/answer",
		`{"section_id":"alpha","question_id":"q1","answer":{"type":"text","value":"hi"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, err := sess.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Sections["alpha"].Answers, 1)
}

func TestRecordAnswerUnknownSectionIs404(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")
	rec := do(t, h, http.MethodPut, "/api/response/answer",
		`{"section_id":"nope","question_id":"q1","answer":{"type":"text","value":"hi"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearResponse(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodDelete, "/api/response", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/response", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitNotConfigured(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodPost, "/api/response/submit", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestSubmitForwardsToRemoteStore(t *testing.T) {
	received := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received++
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	h := testRouter(testSession(t), remote.NewClient(remote.Config{BaseURL: srv.URL, AnonKey: "anon"}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodPost, "/api/response/submit", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, received)
}

func TestExportHTMLAttachment(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodGet, "/api/response/export?format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "response-")
	assert.Contains(t, disposition, ".html")
	assert.Contains(t, rec.Body.String(), export.NotAnswered)
}

func TestExportJSONRoundTrips(t *testing.T) {
	h := testRouter(testSession(t), remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")

	rec := do(t, h, http.MethodGet, "/api/response/export?format=json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	parsed, err := export.ParseResponse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, parsed.ID)
}

func TestImportRejectsIncompleteFile(t *testing.T) {
	rec := httptest.NewRecorder()
	ImportResponseHandler()(rec, httptest.NewRequest(http.MethodPost, "/api/admin/import",
		strings.NewReader(`{"id":"x"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid response file format")
}

func TestImportAcceptsExportedFile(t *testing.T) {
	sess := testSession(t)
	h := testRouter(sess, remote.NewClient(remote.Config{}))
	do(t, h, http.MethodPost, "/api/response", "")
	exported := do(t, h, http.MethodGet, "/api/response/export?format=json", "")

	rec := httptest.NewRecorder()
	ImportResponseHandler()(rec, httptest.NewRequest(http.MethodPost, "/api/admin/import",
		strings.NewReader(exported.Body.String())))
	assert.Equal(t, http.StatusOK, rec.Code)
}
