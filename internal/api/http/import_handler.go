package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/fusion5-labs/discovery-survey/internal/export"
)

const maxImportBytes = 4 << 20

// POST /api/admin/import — validate an exported JSON file. Accepts only
// payloads carrying id, sections, and progress; a rejected file yields a 422
// and nothing is imported.
func ImportResponseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := export.ParseResponse(body)
		if err != nil {
			var fe *export.FormatError
			if errors.As(err, &fe) {
				http.Error(w, fe.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, resp)
	}
}
