package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SearchPageData holds data for the search template.
type SearchPageData struct {
	Query   string
	Phase   search.Phase
	Results []search.Result
}

// handleSearch renders the results page. An empty query renders the bare
// form.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	data := SearchPageData{Query: strings.TrimSpace(r.URL.Query().Get("q"))}

	if data.Query != "" {
		resp, err := s.search.Query(r.Context(), data.Query)
		if err != nil {
			log.Error("search failed", "q", data.Query, "err", err)
			http.Error(w, "Search failed", http.StatusInternalServerError)
			return
		}
		data.Phase = resp.Phase
		data.Results = resp.Results
	}

	if err := s.renderTemplate(w, "search.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleAPISearch returns search.Response as JSON.
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "query parameter required", Code: "missing_param"})
		return
	}

	resp, err := s.search.Query(r.Context(), query)
	if err != nil {
		log.Error("search failed", "q", query, "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "search failed", Code: "search_error"})
		return
	}

	if limit := parseIntParam(r, "limit", 0); limit > 0 && limit < len(resp.Results) {
		resp.Results = resp.Results[:limit]
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
