package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kratos/kratos/v2/log"
	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/techbench/diagstation/internal/diagtest"
	"github.com/techbench/diagstation/internal/hwinfo"
	"github.com/techbench/diagstation/internal/orchestrator"
)

// StatusSource answers the status endpoint's queries. The orchestrator and
// hardware service both satisfy their half of it.
type StatusSource struct {
	Version      string
	HardwareSvc  *hwinfo.Service
	Orchestrator *orchestrator.Orchestrator
}

// Server exposes read-only session state over the guard's loopback listener
// so other tooling on the workbench can poll a run in progress.
type Server struct {
	log  *log.Helper
	http *kratoshttp.Server
	src  StatusSource
}

// New builds the status server on the guard listener.
func New(logger log.Logger, guard *Guard, src StatusSource) *Server {
	s := &Server{
		log: log.NewHelper(log.With(logger, "module", "server")),
		src: src,
	}

	srv := kratoshttp.NewServer(
		kratoshttp.Listener(guard.Listener()),
	)
	srv.HandleFunc("/v1/status", s.handleStatus)
	srv.HandleFunc("/v1/snapshot", s.handleSnapshot)
	srv.HandleFunc("/v1/results", s.handleResults)
	s.http = srv

	return s
}

// Start serves until the context is cancelled. Run it on its own goroutine;
// serve errors after cancellation are expected and only logged.
func (s *Server) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = s.http.Stop(context.Background())
	}()

	if err := s.http.Start(ctx); err != nil && ctx.Err() == nil {
		s.log.Errorf("status server: %v", err)
	}
}

type statusResponse struct {
	Version    string        `json:"version"`
	Collection string        `json:"collection"`
	TestRun    string        `json:"test_run"`
	Pending    []diagtest.ID `json:"pending_tests"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:    s.src.Version,
		Collection: s.src.HardwareSvc.State().String(),
		TestRun:    s.src.Orchestrator.State().String(),
		Pending:    s.src.Orchestrator.Pending(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.src.HardwareSvc.Latest()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot collected yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type resultEntry struct {
	ID      diagtest.ID `json:"id"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	outcomes := s.src.Orchestrator.Outcomes()
	entries := make([]resultEntry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = resultEntry{
			ID:      o.Result.ID,
			Success: o.Result.Success,
			Message: o.Result.Message,
			Error:   o.Result.Error,
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
