package http

import (
	"net/http"

	"github.com/fusion5-labs/discovery-survey/internal/catalog"
)

// GET /api/catalog
func CatalogHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c)
	}
}
