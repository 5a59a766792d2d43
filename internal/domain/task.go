package domain

import "time"

// DefaultTaskType — тип task по умолчанию.
const DefaultTaskType = "scrape"

// Task — единица работы воркера.
//
// Task создаётся когда coordinator (или оператор через POST /task)
// передаёт задание воркеру. Task принадлежит воркеру эксклюзивно
// до конца жизни процесса — между воркерами tasks не разделяются.
//
// После admission запись в task делает только выполняющая горутина
// (single writer); читатели получают snapshot-копии через store.
type Task struct {
	// ID — уникальный идентификатор task. Выдаётся coordinator'ом;
	// при локальной отправке без ID генерируется воркером.
	ID string `json:"task_id"`

	// Type — тип task, определяет executor ("scrape" по умолчанию).
	Type string `json:"type,omitempty"`

	// Params — входные параметры (target_url, depth, max_pages и т.п.).
	Params map[string]any `json:"params,omitempty"`

	// Status — текущий статус task.
	Status TaskStatus `json:"status"`

	// Result — результат выполнения. Заполняется при COMPLETED.
	Result map[string]any `json:"result,omitempty"`

	// Error — текст ошибки при FAILED.
	Error string `json:"error,omitempty"`

	// QueuedAt — время admission.
	QueuedAt time.Time `json:"queued_at"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewTask создаёт task в статусе QUEUED.
func NewTask(id, taskType string, params map[string]any) *Task {
	if taskType == "" {
		taskType = DefaultTaskType
	}
	return &Task{
		ID:       id,
		Type:     taskType,
		Params:   params,
		Status:   TaskStatusQueued,
		QueuedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}

// IsFinished возвращает true, если task в терминальном статусе.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// MarkRunning переводит task в статус RUNNING.
func (t *Task) MarkRunning() {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
}

// MarkCompleted переводит task в статус COMPLETED с результатом.
func (t *Task) MarkCompleted(result map[string]any) {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.FinishedAt = &now
	t.Result = result
}

// MarkFailed переводит task в статус FAILED с ошибкой.
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.FinishedAt = &now
	t.Error = err
}

// Clone возвращает копию task со своими копиями Params и Result.
// Используется store для snapshot-семантики чтений.
func (t *Task) Clone() *Task {
	c := *t
	if t.Params != nil {
		c.Params = make(map[string]any, len(t.Params))
		for k, v := range t.Params {
			c.Params[k] = v
		}
	}
	if t.Result != nil {
		c.Result = make(map[string]any, len(t.Result))
		for k, v := range t.Result {
			c.Result[k] = v
		}
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.FinishedAt != nil {
		finished := *t.FinishedAt
		c.FinishedAt = &finished
	}
	return &c
}
