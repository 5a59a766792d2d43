package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Result — исход попытки самоудаления.
type Result int

const (
	// Removed — контейнер воркера удалён host-окружением.
	Removed Result = iota

	// Unavailable — административный интерфейс недоступен;
	// воркер должен быть убран снаружи.
	Unavailable
)

// String возвращает строковое представление Result.
func (r Result) String() string {
	if r == Removed {
		return "removed"
	}
	return "unavailable"
}

// Terminator — способность воркера запросить собственное удаление.
type Terminator interface {
	SelfTerminate(ctx context.Context) Result
}

// DockerTerminator удаляет контейнер воркера через Docker Engine API
// на локальном unix-сокете.
type DockerTerminator struct {
	containerID string
	logger      *slog.Logger
	client      *http.Client
}

// NewDockerTerminator создаёт terminator для контейнера containerID.
func NewDockerTerminator(socketPath, containerID string, logger *slog.Logger) *DockerTerminator {
	return &DockerTerminator{
		containerID: containerID,
		logger:      logger,
		client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

// SelfTerminate просит Docker удалить контейнер воркера (force).
// 404 считается успехом: контейнер уже убран.
func (t *DockerTerminator) SelfTerminate(ctx context.Context) Result {
	url := fmt.Sprintf("http://docker/containers/%s?force=true", t.containerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		t.logger.Error("failed to build removal request", "error", err)
		return Unavailable
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("admin socket unreachable, worker must be cleaned up externally",
			"container_id", t.containerID,
			"error", err,
		)
		return Unavailable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		t.logger.Info("container removal requested", "container_id", t.containerID)
		return Removed
	default:
		t.logger.Warn("container removal refused, worker must be cleaned up externally",
			"container_id", t.containerID,
			"status", resp.StatusCode,
		)
		return Unavailable
	}
}

// Noop — terminator-заглушка для тестов и запуска вне контейнера.
type Noop struct{}

// SelfTerminate всегда возвращает Unavailable.
func (Noop) SelfTerminate(context.Context) Result {
	return Unavailable
}
