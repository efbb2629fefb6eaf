// Package apitest runs an in-process fake of the Beacon API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/beaconhq/beacon-go/pkg/query"
)

// Server serves scripted query results and minimal CRUD stubs over HTTP.
// Each query execution consumes the next scripted page and reports complete
// only after PollsUntilComplete status polls.
type Server struct {
	srv *httptest.Server

	mu                 sync.Mutex
	specs              []*query.Spec
	pages              [][]query.Row
	next               int
	pollsUntilComplete int
	executions         map[string]*execution

	queryStatus int // non-zero forces query creation to fail with this code
}

type execution struct {
	rows      []query.Row
	pollsLeft int
}

// New starts a fake API serving the given pages in order.
func New(pages [][]query.Row, pollsUntilComplete int) *Server {
	s := &Server{
		pages:              pages,
		pollsUntilComplete: pollsUntilComplete,
		executions:         make(map[string]*execution),
	}

	r := mux.NewRouter()
	r.HandleFunc("/1/queries/{dataset}", s.handleCreateQuery).Methods(http.MethodPost)
	r.HandleFunc("/1/query_results/{dataset}", s.handleCreateResult).Methods(http.MethodPost)
	r.HandleFunc("/1/query_results/{dataset}/{id}", s.handleGetResult).Methods(http.MethodGet)
	r.HandleFunc("/1/datasets", s.handleListDatasets).Methods(http.MethodGet)
	r.HandleFunc("/1/triggers/{dataset}", s.handleListTriggers).Methods(http.MethodGet)
	r.HandleFunc("/1/markers/{dataset}", s.handleCreateMarker).Methods(http.MethodPost)

	s.srv = httptest.NewServer(r)
	return s
}

// URL returns the fake API's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Specs returns every query spec received, in arrival order.
func (s *Server) Specs() []*query.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*query.Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// RejectQueries makes query creation fail with the given status code.
func (s *Server) RejectQueries(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryStatus = code
}

func (s *Server) handleCreateQuery(w http.ResponseWriter, r *http.Request) {
	var spec query.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed query spec"})
		return
	}

	s.mu.Lock()
	rejected := s.queryStatus
	if rejected == 0 {
		s.specs = append(s.specs, &spec)
	}
	s.mu.Unlock()

	if rejected != 0 {
		writeJSON(w, rejected, map[string]string{"error": "query rejected"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": uuid.NewString()})
}

func (s *Server) handleCreateResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QueryID string `json:"query_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QueryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query_id"})
		return
	}

	s.mu.Lock()
	var rows []query.Row
	if s.next < len(s.pages) {
		rows = s.pages[s.next]
		s.next++
	}
	exec := &execution{rows: rows, pollsLeft: s.pollsUntilComplete}
	id := uuid.NewString()
	s.executions[id] = exec
	s.mu.Unlock()

	s.writeResult(w, id, exec)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	exec, ok := s.executions[id]
	if ok && exec.pollsLeft > 0 {
		exec.pollsLeft--
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown query result"})
		return
	}
	s.writeResult(w, id, exec)
}

func (s *Server) writeResult(w http.ResponseWriter, id string, exec *execution) {
	s.mu.Lock()
	complete := exec.pollsLeft <= 0
	rows := exec.rows
	s.mu.Unlock()

	type wireRow struct {
		Data query.Row `json:"data"`
	}
	body := map[string]any{
		"id":       id,
		"complete": complete,
	}
	if complete {
		wire := make([]wireRow, len(rows))
		for i, row := range rows {
			wire[i] = wireRow{Data: row}
		}
		body["data"] = map[string]any{"results": wire}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]string{
		{"name": "Production", "slug": "production"},
		{"name": "Staging", "slug": "staging"},
	})
}

func (s *Server) handleListTriggers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []any{})
}

func (s *Server) handleCreateMarker(w http.ResponseWriter, r *http.Request) {
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed marker"})
		return
	}
	m["id"] = uuid.NewString()
	writeJSON(w, http.StatusOK, m)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
