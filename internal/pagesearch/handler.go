package pagesearch

import (
	"math"
	"net/http"

	"github.com/subhakaryam/subhakaryam/internal/web"
)

// SearchRecorder counts searches by outcome.
type SearchRecorder interface {
	IncrementPageSearch(hit bool)
}

// Handler serves page search and the JSON not-found response.
type Handler struct {
	catalog  Catalog
	recorder SearchRecorder
}

// NewHandler serves the given catalog. recorder may be nil.
func NewHandler(catalog Catalog, recorder SearchRecorder) *Handler {
	return &Handler{catalog: catalog, recorder: recorder}
}

func (h *Handler) Routes(r web.Router) {
	r.GET("/api/search", h.search)
}

type searchResponse struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

func (h *Handler) search(c web.Context) error {
	q := c.Query("q")
	results := h.catalog.Search(q)
	for i := range results {
		results[i].Score = math.Round(results[i].Score*100) / 100
	}
	if h.recorder != nil {
		h.recorder.IncrementPageSearch(len(results) > 0)
	}
	return c.JSON(http.StatusOK, searchResponse{Query: q, Results: results})
}

type notFoundResponse struct {
	Error       string `json:"error"`
	Path        string `json:"path"`
	Suggestions []Page `json:"suggestions"`
}

// NotFound answers unmatched routes with pages the caller may have meant.
func (h *Handler) NotFound(c web.Context) error {
	path := c.Request().URL.Path
	return c.JSON(http.StatusNotFound, notFoundResponse{
		Error:       "page not found",
		Path:        path,
		Suggestions: h.catalog.SuggestPages(path),
	})
}
