package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/jovyan/kernelnav/pkg/envpath"
	"github.com/jovyan/kernelnav/pkg/kernelspec"
)

type staticProvider struct {
	specs []kernelspec.KernelSpec
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Specs() ([]kernelspec.KernelSpec, error) { return p.specs, nil }

func newTestServer(specs ...kernelspec.KernelSpec) *Server {
	registry := kernelspec.NewRegistry(staticProvider{specs: specs})
	return NewServer("127.0.0.1:0", registry, envpath.NewResolver(nil), nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHandleHealth(t *testing.T) {
	rr := get(t, newTestServer(), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}
}

func TestHandleKernelPathResolved(t *testing.T) {
	project := filepath.Join(t.TempDir(), "project")
	if err := os.MkdirAll(filepath.Join(project, ".venv", "bin"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	exe := filepath.Join(project, ".venv", "bin", "python")

	s := newTestServer(kernelspec.KernelSpec{
		Name:        "proj-venv",
		DisplayName: "Python (.venv)",
		Argv:        []string{exe, "-m", "ipykernel_launcher"},
		ResourceDir: "/home/u/.local/share/jupyter/kernels/proj-venv",
	})

	rr := get(t, s, "/api/kernel-path/"+url.PathEscape("Python (.venv)"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp KernelPathResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.KernelName != "proj-venv" || resp.DisplayName != "Python (.venv)" {
		t.Fatalf("unexpected identity fields: %+v", resp)
	}
	if resp.ExecutablePath == nil || *resp.ExecutablePath != exe {
		t.Fatalf("executable_path mismatch: %+v", resp.ExecutablePath)
	}
	if resp.EnvPath == nil || *resp.EnvPath != project {
		t.Fatalf("expected env_path %q, got %+v", project, resp.EnvPath)
	}
}

func TestHandleKernelPathNullEnvPath(t *testing.T) {
	s := newTestServer(kernelspec.KernelSpec{
		Name:        "mystery",
		DisplayName: "Mystery Kernel",
		Argv:        []string{"/no/such/interpreter"},
		ResourceDir: "/etc/kernels/mystery",
	})

	rr := get(t, s, "/api/kernel-path/"+url.PathEscape("Mystery Kernel"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp KernelPathResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.EnvPath != nil {
		t.Fatalf("env_path should be null, got %q", *resp.EnvPath)
	}
}

func TestHandleKernelPathNotFound(t *testing.T) {
	rr := get(t, newTestServer(), "/api/kernel-path/"+url.PathEscape("No Such Kernel"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var payload errorPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Error != "kernel with display name 'No Such Kernel' not found" {
		t.Fatalf("error must name the display name, got %q", payload.Error)
	}
}

func TestHandleKernelPathMethodNotAllowed(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/kernel-path/x", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHandleKernels(t *testing.T) {
	s := newTestServer(
		kernelspec.KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"},
		kernelspec.KernelSpec{Name: "julia", DisplayName: "Julia 1.9", Language: "julia"},
	)

	rr := get(t, s, "/api/kernels")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Kernels []kernelSummary `json:"kernels"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Kernels) != 2 || payload.Kernels[0].Name != "python3" {
		t.Fatalf("unexpected listing: %+v", payload.Kernels)
	}
}

func TestEventsEndpointWithoutWatcher(t *testing.T) {
	rr := get(t, newTestServer(), "/api/kernels/events")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no event source is wired, got %d", rr.Code)
	}
}

func TestAllowlistRejectsUnknownRemote(t *testing.T) {
	registry := kernelspec.NewRegistry(staticProvider{})
	s := NewServer("127.0.0.1:0", registry, envpath.NewResolver(nil),
		AllowlistAuthorizer{Allowed: []string{"10.1.2.3"}})

	rr := get(t, s, "/health")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAllowlistAcceptsListedHost(t *testing.T) {
	a := AllowlistAuthorizer{Allowed: []string{"192.0.2.1"}}
	if err := a.Allow(context.Background(), "192.0.2.1:51234"); err != nil {
		t.Fatalf("host match should pass: %v", err)
	}
	if err := a.Allow(context.Background(), "198.51.100.9:1"); err == nil {
		t.Fatalf("unlisted host should fail")
	}
}
