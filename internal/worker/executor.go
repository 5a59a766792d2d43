package worker

import (
	"context"
	"fmt"

	"github.com/shaiso/Drone/internal/domain"
)

// Executor — интерфейс выполнения конкретного типа task.
//
// Work-функция — заменяемая стратегия: контракт воркера не зависит
// от того, что именно она делает, только от того, что она возвращает
// результат либо ошибку и не блокируется бесконечно (реальная
// реализация обязана иметь собственный таймаут).
type Executor interface {
	Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error)
}

// ExecutionResult — результат выполнения task.
type ExecutionResult struct {
	// Outputs — выходные данные выполнения.
	Outputs map[string]any

	// Error — сообщение о логической ошибке выполнения.
	// Инфраструктурные ошибки возвращаются через error в Execute().
	Error string
}

// Registry — реестр executor'ов по типу task.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry создаёт реестр с executor'ами по умолчанию.
//
// Регистрирует: scrape.
func NewRegistry() *Registry {
	r := &Registry{executors: make(map[string]Executor)}
	r.Register(domain.DefaultTaskType, &ScrapeExecutor{})
	return r
}

// Register добавляет executor для типа task.
func (r *Registry) Register(taskType string, executor Executor) {
	r.executors[taskType] = executor
}

// Get возвращает executor для типа task.
func (r *Registry) Get(taskType string) (Executor, error) {
	executor, ok := r.executors[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return executor, nil
}
