// Package api provides the local HTTP API for rotation status and control.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pixelmagic/internal/bot"
	"pixelmagic/internal/protocol"
	"pixelmagic/internal/rotation"
	"pixelmagic/internal/state"
)

// Controller is the part of the bot the API drives
type Controller interface {
	Start(name string) error
	Stop()
	Toggle() error
	Pause()
	Resume()
	SetMode(t rotation.Type)
	ToggleMode() rotation.Type
	Status() bot.Status
	Snapshot() (state.Snapshot, error)
	Registry() *rotation.Registry
}

// Server provides HTTP API for local control
type Server struct {
	ctl   Controller
	token string
	wsMgr *WSManager

	startOnce sync.Once
	mu        sync.Mutex
	srv       *http.Server
}

// NewServer creates a new API server. An empty token disables authentication.
func NewServer(ctl Controller, token string) *Server {
	s := &Server{
		ctl:   ctl,
		token: token,
	}
	s.wsMgr = newWSManager(s)
	return s
}

// Handler returns the API routes with middleware applied
func (s *Server) Handler() http.Handler {
	// Start WebSocket Manager
	s.startOnce.Do(func() { go s.wsMgr.start() })

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/rotations", s.handleRotations)
	mux.HandleFunc("/api/rotation", s.handleRotation)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	return s.authMiddleware(s.recoverMiddleware(mux))
}

// Start serves the API on localhost:port until Shutdown
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("API: Failed to listen")
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	log.Info().Str("addr", addr).Msg("API: Server started")

	// This is blocking
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("API: Server stopped")
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and disconnects WebSocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	s.wsMgr.stop()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// BroadcastStatus pushes a status update to every WebSocket client
func (s *Server) BroadcastStatus(st bot.Status) {
	s.wsMgr.BroadcastStatus(st)
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("API: Recovered from panic")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured. Browsers cannot set headers
// on WebSocket upgrades, so a token query parameter is accepted too.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("API: Request")

		// Skip auth for health check
		if r.URL.Path == "/health" || s.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+s.token && r.URL.Query().Get("token") != s.token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("API: Failed to write response")
	}
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ctl.Status())
}

// handleState handles GET /api/state, one fresh read of the addon grid
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.ctl.Snapshot()
	if err != nil {
		log.Error().Err(err).Msg("API: Snapshot failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

// handleRotations handles GET /api/rotations[?class=<label>]
func (s *Server) handleRotations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reg := s.ctl.Registry()
	descs := reg.Descriptors()
	if class := r.URL.Query().Get("class"); class != "" {
		descs = reg.ForClass(class)
	}
	if descs == nil {
		descs = []rotation.Descriptor{}
	}
	writeJSON(w, descs)
}

// handleRotation handles POST /api/rotation?action=<start|stop|toggle|pause|resume>[&name=<rotation>]
func (s *Server) handleRotation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	action := r.URL.Query().Get("action")
	if err := s.runAction(action, r.URL.Query().Get("name")); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("API: Rotation action failed")
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, s.ctl.Status())
}

// handleMode handles POST /api/mode?type=<single|aoe|toggle>
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	typ := r.URL.Query().Get("type")
	if typ == "" {
		http.Error(w, "Missing type parameter", http.StatusBadRequest)
		return
	}
	if typ == "toggle" {
		s.ctl.ToggleMode()
	} else {
		t, err := rotation.ParseType(typ)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.ctl.SetMode(t)
	}
	writeJSON(w, s.ctl.Status())
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

var errUnknownAction = errors.New("unknown action")

func (s *Server) runAction(action, name string) error {
	switch action {
	case protocol.ActionStart:
		return s.ctl.Start(name)
	case protocol.ActionStop:
		s.ctl.Stop()
	case protocol.ActionToggle:
		return s.ctl.Toggle()
	case protocol.ActionPause:
		s.ctl.Pause()
	case protocol.ActionResume:
		s.ctl.Resume()
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, rotation.ErrUnknownRotation):
		return http.StatusNotFound
	case errors.Is(err, bot.ErrRunning):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
