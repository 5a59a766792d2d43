package worker

import "errors"

// Ошибки воркера.
var (
	// ErrAtCapacity — admission отклонён: все слоты concurrent tasks заняты.
	ErrAtCapacity = errors.New("worker at capacity")

	// ErrUnknownTaskType — нет executor'а для данного типа task.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrBootstrapFailed — coordinator недоступен при identity-bootstrap.
	// Фатально: воркер завершается с ненулевым кодом.
	ErrBootstrapFailed = errors.New("identity bootstrap failed")
)
