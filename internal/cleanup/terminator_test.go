package cleanup

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// startUnixServer поднимает HTTP-сервер на unix-сокете.
func startUnixServer(t *testing.T, handler http.Handler) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "drone-sock")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socketPath := filepath.Join(dir, "docker.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen unix: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener.Close()
	server.Listener = listener
	server.Start()
	t.Cleanup(server.Close)

	return socketPath
}

func TestDockerTerminator_Removed(t *testing.T) {
	var requestedPath string
	socketPath := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Query().Get("force") != "true" {
			t.Error("expected force=true")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	term := NewDockerTerminator(socketPath, "drone-1", slog.Default())
	if got := term.SelfTerminate(context.Background()); got != Removed {
		t.Errorf("expected Removed, got %s", got)
	}
	if requestedPath != "/containers/drone-1" {
		t.Errorf("unexpected path: %s", requestedPath)
	}
}

func TestDockerTerminator_AlreadyGone(t *testing.T) {
	socketPath := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	term := NewDockerTerminator(socketPath, "drone-1", slog.Default())
	if got := term.SelfTerminate(context.Background()); got != Removed {
		t.Errorf("404 should count as removed, got %s", got)
	}
}

func TestDockerTerminator_Refused(t *testing.T) {
	socketPath := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	term := NewDockerTerminator(socketPath, "drone-1", slog.Default())
	if got := term.SelfTerminate(context.Background()); got != Unavailable {
		t.Errorf("expected Unavailable, got %s", got)
	}
}

func TestDockerTerminator_SocketMissing(t *testing.T) {
	term := NewDockerTerminator("/nonexistent/docker.sock", "drone-1", slog.Default())
	if got := term.SelfTerminate(context.Background()); got != Unavailable {
		t.Errorf("expected Unavailable, got %s", got)
	}
}

func TestNoop(t *testing.T) {
	if got := (Noop{}).SelfTerminate(context.Background()); got != Unavailable {
		t.Errorf("expected Unavailable, got %s", got)
	}
}
