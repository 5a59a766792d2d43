package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shaiso/Drone/internal/config"
	"github.com/shaiso/Drone/internal/coordinator"
	"github.com/shaiso/Drone/internal/domain"
)

// ResolveIdentity получает identity воркера по выбранной стратегии.
//
// env: всё берётся из переменных окружения, отсутствующие значения
// заменяются заглушками — ошибок не бывает.
//
// bootstrap: identity запрашивается у coordinator'а; любая ошибка
// фатальна (воркер без identity бесполезен — caller завершает
// процесс с ненулевым кодом).
func ResolveIdentity(ctx context.Context, strategy string, client *coordinator.Client) (domain.Identity, error) {
	if strategy == config.IdentityBootstrap {
		return bootstrapIdentity(ctx, client)
	}
	return identityFromEnv(), nil
}

// identityFromEnv читает identity из env, проставленного при spawn.
func identityFromEnv() domain.Identity {
	workerID := os.Getenv("HOSTNAME")
	if workerID == "" {
		workerID = domain.UnknownWorker
	}

	coordinatorID := os.Getenv("MANAGER_ID")
	if coordinatorID == "" {
		coordinatorID = domain.UnknownCoordinator
	}

	return domain.Identity{
		WorkerID:      workerID,
		CoordinatorID: coordinatorID,
		SpawnTime:     parseSpawnTime(os.Getenv("SPAWN_TIME")),
	}
}

// bootstrapIdentity запрашивает identity у coordinator'а.
func bootstrapIdentity(ctx context.Context, client *coordinator.Client) (domain.Identity, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = domain.UnknownWorker
	}

	assignment, err := client.RequestTask(ctx, hostname)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
	}

	return domain.Identity{
		WorkerID:      assignment.ContainerID,
		CoordinatorID: assignment.ManagerID,
		SpawnTime:     parseSpawnTime(assignment.SpawnTime),
	}, nil
}

// parseSpawnTime парсит время spawn; невалидное значение — нулевое время.
func parseSpawnTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
