// Package statusapi is the local HTTP surface of the daemon: health,
// status, and a few manual triggers. It binds to loopback by default.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/watchful/internal/ports/primary"
)

// Services are the primary ports the API exposes.
type Services struct {
	Gate     primary.GateService
	Worker   primary.RetryWorker
	Evidence primary.EvidenceService
}

// Server serves the status API.
type Server struct {
	services Services
	actor    *primary.Actor
	logger   *slog.Logger
}

// NewServer creates a status API server. actor is the session the daemon
// evaluates the gate for.
func NewServer(services Services, actor *primary.Actor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		services: services,
		actor:    actor,
		logger:   logger.With("component", "statusapi"),
	}
}

// Router returns the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/retry", s.handleRetry).Methods(http.MethodPost)
	r.HandleFunc("/gate/evaluate", s.handleEvaluate).Methods(http.MethodPost)
	r.HandleFunc("/evidence/pending", s.handlePending).Methods(http.MethodGet)
	r.HandleFunc("/evidence/{id:[0-9]+}", s.handleEvidence).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("status API shutdown", "error", err)
		}
	}()

	s.logger.Info("status API listening", "addr", listener.Addr().String())
	err := server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		<-shutdownDone
		return nil
	}
	return err
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Actor        string `json:"actor"`
	Running      bool   `json:"motion_detection_running"`
	LocalToggle  bool   `json:"local_toggle"`
	CachedRemote bool   `json:"cached_remote_setting"`
	WorkerActive bool   `json:"retry_worker_running"`
	Pending      int    `json:"pending_uploads"`
}

// DrainResponse is the body of POST /retry.
type DrainResponse struct {
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
	Attempted  int    `json:"attempted"`
	Uploaded   int    `json:"uploaded"`
	GaveUp     int    `json:"gave_up"`
	Failed     int    `json:"failed"`
}

// EvidenceResponse describes one queued item.
type EvidenceResponse struct {
	LocalID         int64      `json:"local_id"`
	ServerID        *int64     `json:"server_id,omitempty"`
	EvidenceType    string     `json:"evidence_type"`
	LocalPath       string     `json:"local_path"`
	FileSizeBytes   int64      `json:"file_size"`
	DurationSeconds int64      `json:"duration"`
	UploadStatus    string     `json:"upload_status"`
	RemoteFileID    string     `json:"file_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UploadedAt      *time.Time `json:"uploaded_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	gate, err := s.services.Gate.Status(r.Context())
	if err != nil {
		s.fail(w, "gate status", err)
		return
	}
	pending, err := s.services.Evidence.CountPending(r.Context())
	if err != nil {
		s.fail(w, "pending count", err)
		return
	}

	actor := "none"
	if s.actor != nil {
		actor = string(s.actor.Role)
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Actor:        actor,
		Running:      gate.Running,
		LocalToggle:  gate.LocalToggle,
		CachedRemote: gate.CachedRemote,
		WorkerActive: s.services.Worker.IsRunning(),
		Pending:      pending,
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	report := s.services.Worker.TriggerRetry(r.Context())
	writeJSON(w, http.StatusOK, DrainResponse{
		Skipped:    report.Skipped,
		SkipReason: report.SkipReason,
		Attempted:  report.Attempted,
		Uploaded:   report.Uploaded,
		GaveUp:     report.GaveUp,
		Failed:     report.Failed,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	s.services.Gate.Evaluate(r.Context(), s.actor)
	s.handleStatus(w, r)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Evidence.ListPending(r.Context())
	if err != nil {
		s.fail(w, "list pending", err)
		return
	}
	response := make([]EvidenceResponse, len(items))
	for i, item := range items {
		response[i] = toEvidenceResponse(item)
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid evidence id", http.StatusBadRequest)
		return
	}
	item, err := s.services.Evidence.GetEvidence(r.Context(), id)
	if errors.Is(err, primary.ErrEvidenceNotFound) {
		http.Error(w, "evidence not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "get evidence", err)
		return
	}
	writeJSON(w, http.StatusOK, toEvidenceResponse(item))
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger.Error("status API request failed", "operation", what, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toEvidenceResponse(e *primary.Evidence) EvidenceResponse {
	return EvidenceResponse{
		LocalID:         e.LocalID,
		ServerID:        e.ServerID,
		EvidenceType:    e.EvidenceType,
		LocalPath:       e.LocalPath,
		FileSizeBytes:   e.FileSizeBytes,
		DurationSeconds: e.DurationSeconds,
		UploadStatus:    e.UploadStatus,
		RemoteFileID:    e.RemoteFileID,
		CreatedAt:       e.CreatedAt,
		UploadedAt:      e.UploadedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
