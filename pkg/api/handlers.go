package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/wubitab/pkg/codebook"
)

const (
	defaultCompleteLimit = 20
	maxCompleteLimit     = 200
	maxCodeLength        = 4
)

// Server holds the API server state
type Server struct {
	lookup  Lookup
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(lookup Lookup, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		lookup:  lookup,
		config:  config,
		metrics: metrics,
	}
}

// validCode reports whether s could be a code or code prefix: at most four
// lowercase letters.
func validCode(s string) bool {
	if len(s) > maxCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleCode returns the values of one code.
func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" || !validCode(code) {
		sendError(w, "Code must be 1 to 4 lowercase letters", http.StatusBadRequest)
		return
	}

	values, err := s.lookup.Lookup(code)
	if errors.Is(err, codebook.ErrNotFound) {
		s.metrics.RecordLookup(resultMiss)
		sendError(w, "Code not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.metrics.RecordLookup(resultError)
		sendError(w, "Failed to look up code", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordLookup(resultHit)
	sendSuccess(w, codebook.Entry{Code: code, Values: values})
}

// handleComplete returns the entries whose code starts with the prefix
// query parameter.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	prefix := query.Get("prefix")
	if !validCode(prefix) {
		sendError(w, "Prefix must be at most 4 lowercase letters", http.StatusBadRequest)
		return
	}

	limit := defaultCompleteLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCompleteLimit {
			sendError(w, "Limit must be between 1 and "+strconv.Itoa(maxCompleteLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.lookup.Complete(prefix, limit)
	if err != nil {
		s.metrics.RecordCompletion(false, 0)
		sendError(w, "Failed to complete prefix", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []codebook.Entry{}
	}
	s.metrics.RecordCompletion(true, len(entries))
	sendSuccess(w, entries)
}
