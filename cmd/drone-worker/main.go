// Drone Worker — одноразовый исполнитель tasks.
//
// Worker:
//   - Разрешает свою identity (env или bootstrap у coordinator'а)
//   - Регистрируется у coordinator'а (bounded retry, не фатально)
//   - Принимает tasks через HTTP и, опционально, RabbitMQ
//   - Выполняет tasks с атомарным admission по capacity
//   - Отчитывается о завершении и самоудаляется при подтверждении
//
// Coordinator масштабирует парк воркеров горизонтально; каждый
// воркер живёт ровно столько, сколько нужно его tasks.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Drone/internal/cleanup"
	"github.com/shaiso/Drone/internal/config"
	"github.com/shaiso/Drone/internal/coordinator"
	"github.com/shaiso/Drone/internal/mq"
	"github.com/shaiso/Drone/internal/telemetry"
	"github.com/shaiso/Drone/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting drone-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	coordClient := coordinator.NewClient(cfg.CoordinatorURL)

	// Identity: env-стратегия не может провалиться,
	// bootstrap без coordinator'а фатален
	identity, err := worker.ResolveIdentity(ctx, cfg.IdentityStrategy, coordClient)
	if err != nil {
		logger.Error("failed to resolve identity", "error", err)
		os.Exit(1)
	}
	logger.Info("identity resolved",
		"worker_id", identity.WorkerID,
		"coordinator_id", identity.CoordinatorID,
	)

	// RabbitMQ: опционально, недоступность не фатальна
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	if cfg.RabbitURL != "" {
		mqConn, err = mq.NewConnection(cfg.RabbitURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, running in HTTP-only mode", "error", err)
			mqConn = nil
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	// Self-termination через Docker socket работает только
	// когда identity известна host-окружению
	var terminator cleanup.Terminator = cleanup.Noop{}
	if identity.WorkerID != "" && cfg.DockerSocket != "" {
		terminator = cleanup.NewDockerTerminator(cfg.DockerSocket, identity.WorkerID, logger)
	}

	w := worker.New(worker.Config{
		Identity:    identity,
		MaxTasks:    cfg.MaxTasks,
		Coordinator: coordClient,
		Publisher:   publisher,
		Conn:        mqConn,
		Terminator:  terminator,
		RunOnce:     cfg.RunOnce,
		Logger:      logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP-поверхность воркера + /healthz + /metrics
	mux := http.NewServeMux()
	w.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.WorkerPort
	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Работаем до сигнала или до подтверждённого завершения
	select {
	case <-ctx.Done():
	case <-w.Done():
		logger.Info("completion confirmed, shutting down")
	}

	w.Stop()
	logger.Info("drone-worker stopped")
}
