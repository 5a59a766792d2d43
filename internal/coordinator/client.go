package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaiso/Drone/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client — HTTP-клиент для API coordinator'а.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для coordinator'а.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// statusResponse — тело ответа с логическим статусом.
type statusResponse struct {
	Status string `json:"status"`
}

// isLogicalSuccess проверяет явный success в теле ответа.
func isLogicalSuccess(status string) bool {
	return status == "ok" || status == "success"
}

// registerRequest — тело запроса регистрации.
type registerRequest struct {
	WorkerID string `json:"worker_id"`
	MaxTasks int    `json:"max_tasks"`
}

// Register регистрирует воркера у coordinator'а.
// Вызов идемпотентен: повторная регистрация с тем же worker_id
// не создаёт дубликата на стороне coordinator'а.
func (c *Client) Register(ctx context.Context, workerID string, maxTasks int) error {
	return c.postConfirmed(ctx, "/api/v1/workers/register", registerRequest{
		WorkerID: workerID,
		MaxTasks: maxTasks,
	})
}

// requestTaskRequest — тело запроса identity-bootstrap.
type requestTaskRequest struct {
	Hostname string `json:"hostname"`
}

// Assignment — ответ coordinator'а на request_task.
type Assignment struct {
	ContainerID string `json:"container_id"`
	ManagerID   string `json:"manager_id"`
	SpawnTime   string `json:"spawn_time"`
}

// RequestTask запрашивает у coordinator'а identity воркера.
// Используется только в bootstrap-стратегии; любая ошибка здесь
// фатальна для старта воркера.
func (c *Client) RequestTask(ctx context.Context, hostname string) (*Assignment, error) {
	resp, err := c.post(ctx, "/api/v1/workers/request_task", requestTaskRequest{Hostname: hostname})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: request_task: HTTP %d", ErrBadStatus, resp.StatusCode)
	}

	var assignment Assignment
	if err := json.NewDecoder(resp.Body).Decode(&assignment); err != nil {
		return nil, fmt.Errorf("decode request_task response: %w", err)
	}

	return &assignment, nil
}

// helloRequest — тело readiness-объявления.
type helloRequest struct {
	ContainerID string `json:"container_id"`
	Message     string `json:"message"`
}

// Hello отправляет одноразовое readiness-объявление.
// Fire-and-forget с точки зрения воркера: ошибка доставки
// логируется вызывающим, но не влияет на его работу.
func (c *Client) Hello(ctx context.Context, containerID, message string) error {
	return c.postConfirmed(ctx, "/api/v1/workers/hello", helloRequest{
		ContainerID: containerID,
		Message:     message,
	})
}

// Complete отправляет completion report.
// nil возвращается только при подтверждении: HTTP 2xx и логический
// success в теле. Любой другой исход — одна неудачная попытка
// с точки зрения reporter'а.
func (c *Client) Complete(ctx context.Context, report domain.CompletionReport) error {
	return c.postConfirmed(ctx, "/api/v1/tasks/complete", report)
}

// postConfirmed выполняет POST и требует подтверждения:
// HTTP 2xx + логический success в теле.
func (c *Client) postConfirmed(ctx context.Context, path string, body any) error {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: HTTP %d", ErrBadStatus, path, resp.StatusCode)
	}

	var status statusResponse
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("%w: %s: unparseable body", ErrNotConfirmed, path)
	}
	if !isLogicalSuccess(status.Status) {
		return fmt.Errorf("%w: %s: status %q", ErrNotConfirmed, path, status.Status)
	}

	return nil
}

// post выполняет POST с JSON-телом.
func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return resp, nil
}
