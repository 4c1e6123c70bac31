package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jovyan/kernelnav/pkg/envpath"
	"github.com/jovyan/kernelnav/pkg/kernelspec"
	"log/slog"
)

const shutdownTimeout = 5 * time.Second

const kernelPathPrefix = "/api/kernel-path/"

// Server exposes kernel path resolution over HTTP. Every request builds
// its own registry snapshot and runs the resolver independently, so
// concurrent requests share no mutable state.
type Server struct {
	addr       string
	registry   *kernelspec.Registry
	resolver   *envpath.Resolver
	authorizer Authorizer
	events     EventSource
	logger     *slog.Logger
	started    time.Time
}

// KernelPathResponse is the success payload for a kernel path lookup.
// EnvPath is null when no resolution rule matched.
type KernelPathResponse struct {
	KernelName     string  `json:"kernel_name"`
	DisplayName    string  `json:"display_name"`
	ResourceDir    string  `json:"resource_dir"`
	ExecutablePath *string `json:"executable_path"`
	EnvPath        *string `json:"env_path"`
}

type kernelSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ResourceDir string `json:"resource_dir"`
	Language    string `json:"language,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func NewServer(addr string, registry *kernelspec.Registry, resolver *envpath.Resolver, authorizer Authorizer) *Server {
	if authorizer == nil {
		authorizer = allowAll{}
	}
	return &Server{
		addr:       addr,
		registry:   registry,
		resolver:   resolver,
		authorizer: authorizer,
	}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetEventSource enables the websocket event endpoint.
func (s *Server) SetEventSource(events EventSource) {
	s.events = events
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	s.started = time.Now()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logInfo("gateway_listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the routed, authorized handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/kernels", s.handleKernels)
	mux.HandleFunc("/api/kernels/events", s.handleEvents)
	mux.HandleFunc(kernelPathPrefix, s.handleKernelPath)
	return s.withAuth(mux)
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.authorizer.Allow(r.Context(), r.RemoteAddr); err != nil {
			s.logWarn("request_denied", "remote", r.RemoteAddr, "error", err)
			writeJSON(w, http.StatusForbidden, errorPayload{Error: "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleKernels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := s.registry.Snapshot()
	out := make([]kernelSummary, 0, snap.Len())
	for _, spec := range snap.All() {
		out = append(out, kernelSummary{
			Name:        spec.Name,
			DisplayName: spec.DisplayName,
			ResourceDir: spec.ResourceDir,
			Language:    spec.Language,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"kernels": out})
}

// handleKernelPath resolves a kernel's backing environment by its
// display name. Outcomes: 200 with the resolution record, 404 when no
// kernel carries the name, 500 with the raw error text on anything
// unexpected.
func (s *Server) handleKernelPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	displayName := displayNameFromPath(r)

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Sprintf("%v", rec)
			s.logError("kernel_path_failed", "request_id", requestID, "display_name", displayName, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorPayload{Error: err})
		}
	}()

	spec, err := s.registry.Snapshot().FindByDisplayName(displayName)
	if err != nil {
		var notFound *kernelspec.NotFoundError
		if errors.As(err, &notFound) {
			s.logInfo("kernel_not_found", "request_id", requestID, "display_name", displayName)
			writeJSON(w, http.StatusNotFound, errorPayload{Error: err.Error()})
			return
		}
		s.logError("kernel_path_failed", "request_id", requestID, "display_name", displayName, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: err.Error()})
		return
	}

	resp := KernelPathResponse{
		KernelName:  spec.Name,
		DisplayName: displayName,
		ResourceDir: spec.ResourceDir,
	}
	if exe := spec.ExecutablePath(); exe != "" {
		resp.ExecutablePath = &exe
	}
	if root, ok := s.resolver.Resolve(spec.ExecutablePath(), spec.ResourceDir); ok {
		resp.EnvPath = &root
	}

	s.logInfo("kernel_path_resolved",
		"request_id", requestID,
		"display_name", displayName,
		"kernel", spec.Name,
		"env_path", stringOr(resp.EnvPath, ""),
	)
	writeJSON(w, http.StatusOK, resp)
}

// displayNameFromPath extracts the display name segment. Display names
// may contain spaces and punctuation; clients URL-escape them and the
// mux hands the path back decoded.
func displayNameFromPath(r *http.Request) string {
	return r.URL.Path[len(kernelPathPrefix):]
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) Addr() string { return s.addr }

func (s *Server) String() string {
	return fmt.Sprintf("gateway(%s)", s.addr)
}

func (s *Server) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Server) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
