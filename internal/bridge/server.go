// Package bridge exposes the host's joint state over a small HTTP surface:
// /health for liveness, /joints for the latest snapshot, and /commands for
// injecting position commands.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/armature-dev/armature/internal/host"
	"github.com/armature-dev/armature/internal/logging"
)

// ProtocolVersion identifies the bridge contract version exposed via /health.
const ProtocolVersion = "1.0.0"

// ErrDisabled is returned by Start when the bridge is switched off.
var ErrDisabled = errors.New("bridge: server disabled")

// SnapshotSource supplies the latest control-cycle snapshot.
type SnapshotSource interface {
	Snapshot() host.Snapshot
}

// CommandSink accepts position commands for named joints.
type CommandSink interface {
	SetCommand(joint string, value float64) error
}

// Server wraps the HTTP listener and handlers backing the bridge.
type Server struct {
	settings Settings
	source   SnapshotSource
	sink     CommandSink
	log      *logging.Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a bridge server over the given snapshot source and
// command sink.
func NewServer(settings Settings, source SnapshotSource, sink CommandSink, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		source:   source,
		sink:     sink,
		log:      logging.Nop(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("bridge: server is nil")
	}
	if !s.settings.Enabled {
		return ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("bridge: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/joints", s.handleJoints)
	mux.HandleFunc("/commands", s.handleCommands)
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("bridge serve failed", "error", err)
		}
	}()
	s.log.Infow("bridge listening", "address", listener.Addr().String())
	return nil
}

// BoundAddress returns the address the server is actually listening on.
func (s *Server) BoundAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("bridge: shutdown: %w", err)
	}
	return nil
}

type healthResponse struct {
	Status          string  `json:"status"`
	ProtocolVersion string  `json:"protocol_version"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.mu.RLock()
	started := s.startTime
	s.mu.RUnlock()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		ProtocolVersion: ProtocolVersion,
		UptimeSeconds:   s.clock().Sub(started).Seconds(),
	})
}

func (s *Server) handleJoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	if s.source == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no snapshot source")
		return
	}
	s.writeJSON(w, http.StatusOK, s.source.Snapshot())
}

// CommandRequest is the payload accepted by POST /commands.
type CommandRequest struct {
	Joint    string  `json:"joint"`
	Position float64 `json:"position"`
}

// Validate enforces baseline schema requirements for incoming commands.
func (c CommandRequest) Validate() error {
	if strings.TrimSpace(c.Joint) == "" {
		return fmt.Errorf("joint is required")
	}
	if math.IsNaN(c.Position) || math.IsInf(c.Position, 0) {
		return fmt.Errorf("position must be finite")
	}
	return nil
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.sink == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no command sink")
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer body.Close()
	var req CommandRequest
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode command: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.sink.SetCommand(strings.TrimSpace(req.Joint), req.Position); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out, so a failure here can only be logged.
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Errorw("encode response failed", "status", status, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
