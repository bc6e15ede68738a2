package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fusion5-labs/discovery-survey/internal/export"
	"github.com/fusion5-labs/discovery-survey/internal/store/remote"
	"github.com/fusion5-labs/discovery-survey/internal/survey"
)

// GET /api/response
func GetResponseHandler(sess *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := sess.Current(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if resp == nil {
			http.Error(w, "no response in progress", http.StatusNotFound)
			return
		}
		writeJSON(w, resp)
	}
}

// POST /api/response — create or resume.
func StartResponseHandler(sess *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, resumed, err := sess.StartOrResume(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		status := http.StatusCreated
		if resumed {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// PUT /api/response/answer
func RecordAnswerHandler(sess *Session) http.HandlerFunc {
	type request struct {
		SectionID  string        `json:"section_id"`
		QuestionID string        `json:"question_id"`
		Answer     survey.Answer `json:"answer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Answer.Kind == "" {
			http.Error(w, "bad request: missing answer", http.StatusBadRequest)
			return
		}
		resp, err := sess.Mutate(r.Context(), func(resp *survey.Response) error {
			return resp.RecordAnswer(req.SectionID, req.QuestionID, req.Answer)
		})
		if err != nil {
			writeMutationError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

// PUT /api/response/metadata
func UpdateMetadataHandler(sess *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var meta survey.Metadata
		if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := sess.Mutate(r.Context(), func(resp *survey.Response) error {
			resp.Metadata = meta
			return nil
		})
		if err != nil {
			writeMutationError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

// POST /api/response/sections/{sectionID}/complete
func CompleteSectionHandler(sess *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sectionID := chi.URLParam(r, "sectionID")
		resp, err := sess.Mutate(r.Context(), func(resp *survey.Response) error {
			return resp.MarkSectionComplete(sess.Catalog(), sectionID)
		})
		if err != nil {
			writeMutationError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

// DELETE /api/response
func ClearResponseHandler(sess *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sess.Reset(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/response/submit — one-shot remote write; failures are reported in
// the body so the UI can decide whether to retry.
func SubmitResponseHandler(sess *Session, client *remote.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := sess.Current(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if resp == nil {
			http.Error(w, "no response in progress", http.StatusNotFound)
			return
		}
		if err := client.Submit(r.Context(), resp); err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, remote.ErrNotConfigured) {
				status = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

// GET /api/response/export?format=html|json
func ExportResponseHandler(sess *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := sess.Current(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if resp == nil {
			http.Error(w, "no response in progress", http.StatusNotFound)
			return
		}
		now := time.Now()
		switch r.URL.Query().Get("format") {
		case "", "html":
			doc, err := export.RenderHTML(resp, sess.Catalog())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="`+export.HTMLFileName(resp, now)+`"`)
			_, _ = w.Write([]byte(doc))
		case "json":
			out, err := export.RenderJSON(resp)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", `attachment; filename="`+export.JSONFileName(resp, now)+`"`)
			_, _ = w.Write(out)
		default:
			http.Error(w, "unknown format", http.StatusBadRequest)
		}
	}
}

func writeMutationError(w http.ResponseWriter, err error) {
	var nf *survey.NotFoundError
	switch {
	case errors.Is(err, ErrNoResponse):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &nf):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
