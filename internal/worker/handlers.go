package worker

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Drone/internal/api"
	"github.com/shaiso/Drone/internal/domain"
	"github.com/shaiso/Drone/internal/store"
)

// RegisterRoutes регистрирует HTTP-поверхность воркера.
func (w *Worker) RegisterRoutes(mux *http.ServeMux) {
	chain := api.Chain(
		api.Recovery(w.logger),
		api.Logging(w.logger),
	)

	mux.Handle("GET /{$}", chain(http.HandlerFunc(w.handleStatus)))
	mux.Handle("GET /tasks", chain(http.HandlerFunc(w.handleListTasks)))
	mux.Handle("POST /task", chain(http.HandlerFunc(w.handleSubmitTask)))
	mux.Handle("GET /task/{id}", chain(http.HandlerFunc(w.handleGetTask)))
}

// StatusResponse — liveness-ответ воркера.
type StatusResponse struct {
	WorkerID      string    `json:"worker_id"`
	CoordinatorID string    `json:"coordinator_id"`
	SpawnTime     time.Time `json:"spawn_time,omitzero"`
	Registered    bool      `json:"registered"`
	ActiveTasks   int       `json:"active_tasks"`
	TotalTasks    int       `json:"total_tasks"`
	MaxTasks      int       `json:"max_tasks"`
}

// handleStatus — GET /: liveness, состояние регистрации, счётчики tasks.
func (w *Worker) handleStatus(rw http.ResponseWriter, _ *http.Request) {
	api.Success(rw, StatusResponse{
		WorkerID:      w.identity.WorkerID,
		CoordinatorID: w.identity.CoordinatorID,
		SpawnTime:     w.identity.SpawnTime,
		Registered:    w.Registered(),
		ActiveTasks:   w.gate.Active(),
		TotalTasks:    w.store.Len(),
		MaxTasks:      w.gate.Limit(),
	})
}

// handleListTasks — GET /tasks: snapshot всех tasks.
func (w *Worker) handleListTasks(rw http.ResponseWriter, _ *http.Request) {
	tasks := w.store.List()
	api.List(rw, tasks, len(tasks))
}

// SubmitTaskResponse — ответ на принятый task.
type SubmitTaskResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// handleSubmitTask — POST /task: admission и запуск task.
//
// Тело — плоский JSON: task_id и type извлекаются, всё остальное
// становится параметрами task. Отказ по capacity — явный 429.
func (w *Worker) handleSubmitTask(rw http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequest(rw, "invalid task JSON")
		return
	}

	taskID, _ := body["task_id"].(string)
	if taskID == "" {
		taskID = uuid.New().String()
	}
	taskType, _ := body["type"].(string)

	delete(body, "task_id")
	delete(body, "type")

	task := domain.NewTask(taskID, taskType, body)

	if err := w.Submit(task); err != nil {
		switch {
		case errors.Is(err, ErrAtCapacity):
			api.AtCapacity(rw, err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			api.Conflict(rw, err.Error())
		case errors.Is(err, ErrUnknownTaskType):
			api.BadRequest(rw, err.Error())
		default:
			api.InternalError(rw, w.logger, err)
		}
		return
	}

	api.JSON(rw, http.StatusAccepted, SubmitTaskResponse{
		Status: "accepted",
		TaskID: taskID,
	})
}

// handleGetTask — GET /task/{id}: snapshot одного task.
func (w *Worker) handleGetTask(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := w.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(rw, "task not found: "+id)
			return
		}
		api.InternalError(rw, w.logger, err)
		return
	}

	api.Success(rw, task)
}
