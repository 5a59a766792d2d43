package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (дублируются из worker API, CLI не импортирует internal/worker) ---

// StatusResponse — состояние воркера из API.
type StatusResponse struct {
	WorkerID      string `json:"worker_id"`
	CoordinatorID string `json:"coordinator_id"`
	SpawnTime     string `json:"spawn_time,omitempty"`
	Registered    bool   `json:"registered"`
	ActiveTasks   int    `json:"active_tasks"`
	TotalTasks    int    `json:"total_tasks"`
	MaxTasks      int    `json:"max_tasks"`
}

// TaskResponse — task из API.
type TaskResponse struct {
	ID         string         `json:"task_id"`
	Type       string         `json:"type,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	Status     string         `json:"status"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	QueuedAt   string         `json:"queued_at"`
	StartedAt  string         `json:"started_at,omitempty"`
	FinishedAt string         `json:"finished_at,omitempty"`
}

// SubmitTaskResponse — подтверждение принятого task.
type SubmitTaskResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для worker API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для воркера.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Status возвращает состояние воркера.
func (c *Client) Status() (*StatusResponse, error) {
	var status StatusResponse
	err := c.get("/", &status)
	return &status, err
}

// ListTasks возвращает все tasks воркера.
func (c *Client) ListTasks() ([]TaskResponse, error) {
	var tasks []TaskResponse
	err := c.list("/tasks", &tasks)
	return tasks, err
}

// GetTask возвращает task по ID.
func (c *Client) GetTask(id string) (*TaskResponse, error) {
	var task TaskResponse
	err := c.get("/task/"+id, &task)
	return &task, err
}

// SubmitTask отправляет task воркеру. body — плоский JSON запроса
// (task_id, type и произвольные параметры).
func (c *Client) SubmitTask(body map[string]any) (*SubmitTaskResponse, error) {
	resp, err := c.do(http.MethodPost, "/task", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	// Подтверждение приходит плоским объектом, без data-обёртки
	var accepted SubmitTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &accepted, nil
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(dr.Data, result)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(lr.Data, result)
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
