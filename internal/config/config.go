// Package config загружает конфигурацию воркера из переменных окружения.
//
// Все параметры имеют значения по умолчанию — воркер запускается
// standalone без какой-либо настройки.
package config

import (
	"os"
	"strconv"
)

// Стратегии получения identity при старте.
const (
	// IdentityFromEnv — identity читается из env (MANAGER_ID, SPAWN_TIME, HOSTNAME).
	// Отсутствующие значения заменяются заглушками, старт не прерывается.
	IdentityFromEnv = "env"

	// IdentityBootstrap — identity запрашивается у coordinator'а.
	// Недоступный coordinator — фатальная ошибка старта.
	IdentityBootstrap = "bootstrap"
)

// Config — конфигурация воркера.
type Config struct {
	// CoordinatorURL — базовый адрес coordinator'а.
	CoordinatorURL string

	// WorkerPort — порт HTTP-поверхности воркера.
	WorkerPort string

	// MaxTasks — максимум одновременно выполняемых tasks.
	MaxTasks int

	// IdentityStrategy — env или bootstrap.
	IdentityStrategy string

	// RabbitURL — адрес RabbitMQ. Пустой — режим HTTP-only.
	RabbitURL string

	// DockerSocket — путь к административному сокету для self-termination.
	DockerSocket string

	// RunOnce — одноразовый режим: выполнить один canned task и завершиться.
	RunOnce bool
}

// Load читает конфигурацию из env с значениями по умолчанию.
func Load() Config {
	return Config{
		CoordinatorURL:   getEnv("COORDINATOR_URL", "http://localhost:8080"),
		WorkerPort:       getEnv("WORKER_PORT", "8081"),
		MaxTasks:         getEnvInt("MAX_CONCURRENT_TASKS", 1),
		IdentityStrategy: getEnv("IDENTITY_STRATEGY", IdentityFromEnv),
		RabbitURL:        os.Getenv("RABBITMQ_URL"),
		DockerSocket:     getEnv("DOCKER_SOCKET", "/var/run/docker.sock"),
		RunOnce:          getEnvBool("RUN_ONCE", false),
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
