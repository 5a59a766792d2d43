package domain

import "time"

// Значения-заглушки для неизвестных полей identity.
// Совпадают с тем, что coordinator подставляет при spawn без env.
const (
	UnknownWorker      = "unknown_container"
	UnknownCoordinator = "unknown_manager"
)

// Identity — идентичность воркера.
//
// Устанавливается ровно один раз за время жизни процесса:
// либо из env при spawn, либо из ответа coordinator'а (bootstrap).
// После установки неизменяема.
type Identity struct {
	// WorkerID — идентификатор воркера (hostname контейнера либо выданный coordinator'ом).
	WorkerID string `json:"worker_id"`

	// CoordinatorID — идентификатор coordinator'а, породившего воркера.
	CoordinatorID string `json:"coordinator_id"`

	// SpawnTime — время spawn. Нулевое значение — "неизвестно" (env-стратегия
	// без SPAWN_TIME); это не ошибка.
	SpawnTime time.Time `json:"spawn_time,omitzero"`
}

// IsUnknown возвращает true, если identity состоит из заглушек.
func (id Identity) IsUnknown() bool {
	return id.WorkerID == UnknownWorker && id.CoordinatorID == UnknownCoordinator
}

// HelloMessage формирует текст readiness-объявления для coordinator'а.
func (id Identity) HelloMessage() string {
	spawn := "unknown_time"
	if !id.SpawnTime.IsZero() {
		spawn = id.SpawnTime.Format(time.RFC3339)
	}
	return "Hello World! I'm " + id.WorkerID + ", son of " + id.CoordinatorID + ", spawned at " + spawn + "."
}
