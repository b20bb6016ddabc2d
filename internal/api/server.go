package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/pbaille/cycles/internal/cycle"
	"github.com/pbaille/cycles/internal/domain"
	"github.com/pbaille/cycles/internal/export"
	"github.com/pbaille/cycles/internal/ingest"
	"github.com/pbaille/cycles/internal/log"
	"github.com/pbaille/cycles/internal/report"
	"github.com/pbaille/cycles/internal/store"
)

// Server handles HTTP requests for the cycle API
type Server struct {
	store       *store.Store
	addr        string
	reportTitle string
	now         func() time.Time
}

// New creates a new API server
func New(s *store.Store, addr, reportTitle string) *Server {
	return &Server{store: s, addr: addr, reportTitle: reportTitle, now: time.Now}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("POST /imports", s.importExport)
	mux.HandleFunc("GET /imports", s.listImports)

	// Cycles
	mux.HandleFunc("GET /cycles", s.listCycles)
	mux.HandleFunc("GET /cycles/current", s.currentCycle)
	mux.HandleFunc("GET /stats", s.stats)

	// Exports
	mux.HandleFunc("GET /export.csv", s.exportCSV)
	mux.HandleFunc("GET /report", s.report)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withLogging(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	log.Infow("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		log.Debugw("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// ImportResponse is the response for importing an export
type ImportResponse struct {
	Import *domain.Import `json:"import"`
	Cycles int            `json:"cycles"`
}

func (s *Server) importExport(w http.ResponseWriter, r *http.Request) {
	raw, err := ingest.Decode(http.MaxBytesReader(w, r.Body, 5*1024*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := cycle.Normalize(raw)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	// reject logs the segmenter cannot partition before storing them
	closed, _, err := cycle.Segment(res.Entries)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "api"
	}

	imp, err := s.store.ReplaceEntries(source, res.Entries, res.Discarded)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Infow("export imported", "source", source, "entries", imp.Entries, "discarded", imp.Discarded)
	writeJSON(w, http.StatusCreated, ImportResponse{Import: imp, Cycles: len(closed)})
}

func (s *Server) listImports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	imports, err := s.store.ListImports(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imports": imports,
		"limit":   limit,
	})
}

// summary analyzes the stored entry log
func (s *Server) summary() (*domain.Summary, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return nil, err
	}

	discarded := 0
	imp, err := s.store.LatestImport()
	switch {
	case err == nil:
		discarded = imp.Discarded
	case !errors.Is(err, store.ErrNoImports):
		return nil, err
	}

	return cycle.SummarizeEntries(entries, discarded, s.now())
}

func (s *Server) listCycles(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cycles":        sum.Cycles,
		"current_cycle": sum.Current,
	})
}

func (s *Server) currentCycle(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if sum.Current == nil {
		writeError(w, http.StatusNotFound, "no entries imported")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_cycle": sum.Current,
		"prediction":    sum.Prediction,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if sum.Stats == nil {
		writeError(w, http.StatusUnprocessableEntity, cycle.ErrInsufficientData.Error())
		return
	}

	writeJSON(w, http.StatusOK, sum.Stats)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sum); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName("cycles", s.now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, sum, report.Options{Title: s.reportTitle, Generated: s.now()}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// statusFor maps analysis errors to HTTP status codes
func statusFor(err error) int {
	var malformed *cycle.MalformedInputError
	var unknown *cycle.UnknownIntensityError
	switch {
	case errors.As(err, &malformed), errors.As(err, &unknown):
		return http.StatusBadRequest
	case errors.Is(err, cycle.ErrInsufficientData), errors.Is(err, cycle.ErrEmptyCycle):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
