package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/vk/cueflow/internal/ctxlog"
)

// controlServer exposes the cue navigation surface over HTTP. All mutating
// handlers funnel through one mutex so cue transitions stay serialized, as
// the rest of the control plane assumes.
type controlServer struct {
	app *App
	mu  sync.Mutex
}

type statusResponse struct {
	CurrentCueIndex int      `json:"current_cue_index"`
	CurrentCueName  string   `json:"current_cue_name"`
	CueNames        []string `json:"cue_names"`
	Duration        float64  `json:"duration"`
	IsPlaying       bool     `json:"is_playing"`
}

func (s *controlServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /next", s.handleNext)
	mux.HandleFunc("POST /previous", s.handlePrevious)
	mux.HandleFunc("POST /jump/{index}", s.handleJump)
	mux.HandleFunc("POST /play", s.handlePlay)
	mux.HandleFunc("POST /stop", s.handleStop)
	return mux
}

func (s *controlServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.app.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *controlServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	manager := s.app.manager
	status := statusResponse{
		CurrentCueIndex: manager.CurrentCueIndex(),
		CurrentCueName:  manager.CurrentCue().Name(),
		CueNames:        manager.CueNames(),
		Duration:        manager.CurrentCue().Duration(),
		IsPlaying:       manager.IsPlaying(),
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.app.logger.Error("Failed to encode status response", "error", err)
	}
}

func (s *controlServer) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.app.manager.MoveToNextCue(ctxlog.WithLogger(r.Context(), s.app.logger))
	s.mu.Unlock()
	s.handleStatus(w, r)
}

func (s *controlServer) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.app.manager.MoveToPreviousCue(ctxlog.WithLogger(r.Context(), s.app.logger))
	s.mu.Unlock()
	s.handleStatus(w, r)
}

func (s *controlServer) handleJump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "cue index must be an integer", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.app.manager.JumpToCue(ctxlog.WithLogger(r.Context(), s.app.logger), index)
	s.mu.Unlock()
	s.handleStatus(w, r)
}

func (s *controlServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.app.manager.Play(ctxlog.WithLogger(r.Context(), s.app.logger))
	s.mu.Unlock()
	s.handleStatus(w, r)
}

func (s *controlServer) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.app.manager.Stop(ctxlog.WithLogger(r.Context(), s.app.logger), 0)
	s.mu.Unlock()
	s.handleStatus(w, r)
}

// startControlServer initializes and runs the cue control HTTP server.
func (a *App) startControlServer(port int) *http.Server {
	a.logger.Debug("Configuring cue control server.")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: (&controlServer{app: a}).handler(),
	}

	go func() {
		a.logger.Info("Cue control server starting", "address", fmt.Sprintf("http://localhost%s/status", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Cue control server failed", "error", err)
		}
	}()
	return server
}
