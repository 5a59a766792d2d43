package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Drone/internal/cleanup"
	"github.com/shaiso/Drone/internal/coordinator"
	"github.com/shaiso/Drone/internal/domain"
	"github.com/shaiso/Drone/internal/mq"
	"github.com/shaiso/Drone/internal/store"
	"github.com/shaiso/Drone/internal/telemetry"
)

// Worker — одноразовый исполнитель tasks.
//
// Жизненный цикл:
//   - Start: регистрация у coordinator'а (в фоне, с retry),
//     опциональный consumer назначений из RabbitMQ
//   - Submit: admission через Gate, запись в store, горутина выполнения
//   - runTask: QUEUED → RUNNING → {COMPLETED, FAILED}, затем
//     completion report и, при подтверждении, self-termination
//
// Весь runtime-контекст (store, счётчик активных tasks, identity)
// принадлежит Worker'у и передаётся явно — глобального состояния нет.
type Worker struct {
	identity domain.Identity

	store *store.TaskStore
	gate  *Gate

	// Coordinator (nil — воркер работает автономно, без регистрации)
	coord    *coordinator.Client
	reporter *Reporter

	// MQ (nil — режим HTTP-only)
	publisher *mq.Publisher
	conn      *mq.Connection
	consumer  *mq.Consumer

	// Executor registry
	registry *Registry

	terminator cleanup.Terminator

	registerInterval time.Duration
	runOnce          bool

	logger     *slog.Logger
	registered atomic.Bool

	runCtx        context.Context
	cancelFunc    context.CancelFunc
	wg            sync.WaitGroup
	terminateOnce sync.Once
	done          chan struct{}
}

// Config — конфигурация Worker.
type Config struct {
	// Identity — установленная identity воркера.
	Identity domain.Identity

	// MaxTasks — максимум одновременных tasks (default: 1).
	MaxTasks int

	// Coordinator — клиент coordinator'а (опционально).
	Coordinator *coordinator.Client

	// Publisher, Conn — MQ (опционально).
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Registry — реестр executor'ов (опционально; default: NewRegistry()).
	Registry *Registry

	// Terminator — механизм self-termination (default: cleanup.Noop).
	Terminator cleanup.Terminator

	// RegisterInterval, ReportInterval — паузы retry-циклов
	// (default: 2s и 1s).
	RegisterInterval time.Duration
	ReportInterval   time.Duration

	// RunOnce — одноразовый режим: после старта воркер сам отправляет
	// себе один canned scrape task и отчитывается отчётом уровня воркера.
	RunOnce bool

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = telemetry.WithWorkerID(logger, cfg.Identity.WorkerID)

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	terminator := cfg.Terminator
	if terminator == nil {
		terminator = cleanup.Noop{}
	}

	registerInterval := cfg.RegisterInterval
	if registerInterval <= 0 {
		registerInterval = defaultRegisterInterval
	}

	var sender CompletionSender
	if cfg.Coordinator != nil {
		sender = cfg.Coordinator
	}

	return &Worker{
		identity:         cfg.Identity,
		store:            store.NewTaskStore(),
		gate:             NewGate(cfg.MaxTasks),
		coord:            cfg.Coordinator,
		reporter:         NewReporter(sender, cfg.ReportInterval, logger),
		publisher:        cfg.Publisher,
		conn:             cfg.Conn,
		registry:         registry,
		terminator:       terminator,
		registerInterval: registerInterval,
		runOnce:          cfg.RunOnce,
		logger:           logger,
		done:             make(chan struct{}),
	}
}

// Identity возвращает identity воркера.
func (w *Worker) Identity() domain.Identity {
	return w.identity
}

// Registered сообщает, удалась ли регистрация у coordinator'а.
func (w *Worker) Registered() bool {
	return w.registered.Load()
}

// Store возвращает хранилище tasks.
func (w *Worker) Store() *store.TaskStore {
	return w.store
}

// ActiveTasks возвращает количество занятых слотов выполнения.
func (w *Worker) ActiveTasks() int {
	return w.gate.Active()
}

// Done закрывается после подтверждённого completion report
// и попытки self-termination: процессу пора завершаться.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Start запускает фоновые процессы воркера:
// регистрацию, MQ consumer и, в режиме run-once, canned task.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.runCtx = ctx
	w.cancelFunc = cancel

	w.logger.Info("I'm alive!",
		"coordinator_id", w.identity.CoordinatorID,
		"max_tasks", w.gate.Limit(),
	)

	if w.conn != nil {
		w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueTasksAssign),
			Handler:  w.handleTaskAssign,
			Prefetch: w.gate.Limit(),
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("assignment consumer error", "error", err)
			}
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Блокируем только эту горутину: HTTP-поверхность отвечает
		// на liveness и во время retry-окна регистрации.
		if w.coord != nil {
			w.register(ctx)
		}

		if w.runOnce {
			w.submitOneshot()
		}
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает воркера и дожидается фоновых горутин.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// Submit принимает task на выполнение.
//
// Порядок фиксированный: сначала admission (атомарный CAS),
// затем запись в store, затем горутина выполнения. Отклонённый
// по capacity task в store не попадает — отказ всегда явный.
func (w *Worker) Submit(task *domain.Task) error {
	if _, err := w.registry.Get(task.Type); err != nil {
		return err
	}

	if !w.gate.TryAdmit() {
		telemetry.TasksRejected.Inc()
		return fmt.Errorf("%w: limit %d", ErrAtCapacity, w.gate.Limit())
	}

	if err := w.store.Create(task); err != nil {
		w.gate.Release()
		return err
	}

	telemetry.TasksAdmitted.Inc()
	telemetry.ActiveTasks.Inc()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runTask(w.taskContext(), task.Clone())
	}()

	return nil
}

// taskContext возвращает контекст для выполнения task.
func (w *Worker) taskContext() context.Context {
	if w.runCtx != nil {
		return w.runCtx
	}
	return context.Background()
}

// runTask проводит task через state machine до терминального статуса
// и запускает completion handshake.
//
// Для данного task_id писатель только один — эта горутина;
// статусные чтения идут через snapshot'ы store.
func (w *Worker) runTask(ctx context.Context, task *domain.Task) {
	defer func() {
		w.gate.Release()
		telemetry.ActiveTasks.Dec()
	}()

	logger := telemetry.WithTaskID(w.logger, task.ID)
	ctx = telemetry.WithLogger(ctx, logger)

	task.MarkRunning()
	if err := w.store.Update(task); err != nil {
		logger.Error("failed to mark task running", "error", err)
		return
	}

	logger.Info("task started", "type", task.Type)

	executor, err := w.registry.Get(task.Type)

	var result *ExecutionResult
	if err == nil {
		result, err = executor.Execute(ctx, task)
	}

	if err == nil && (result == nil || result.Error == "") {
		var outputs map[string]any
		if result != nil {
			outputs = result.Outputs
		}
		task.MarkCompleted(outputs)
		telemetry.TasksFinished.WithLabelValues("completed").Inc()
		logger.Info("task completed", "duration", task.Duration())
	} else {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		} else {
			errMsg = result.Error
		}
		task.MarkFailed(errMsg)
		telemetry.TasksFinished.WithLabelValues("failed").Inc()
		logger.Warn("task failed", "error", errMsg)
	}

	if w.runOnce {
		w.attachIdentityResult(task)
	}

	if err := w.store.Update(task); err != nil {
		logger.Error("failed to store terminal task state", "error", err)
	}

	w.publishCompletion(ctx, task)

	if w.reporter.client == nil {
		logger.Debug("no coordinator configured, skipping completion report")
		return
	}

	report := domain.NewCompletionReport(w.identity.WorkerID, task)
	if w.runOnce {
		// Отчёт уровня воркера, как в одноразовом контейнере
		report.TaskID = ""
	}

	switch w.reporter.Report(ctx, report) {
	case ReportConfirmed:
		w.selfTerminate(ctx)
	case ReportExhausted:
		// Доставка не подтверждена — воркер не самоудаляется,
		// им займётся внешняя уборка.
		logger.Warn("completion never confirmed, worker stays up")
	}
}

// attachIdentityResult дополняет итоговый результат полями identity,
// как в финальном сообщении одноразового воркера.
func (w *Worker) attachIdentityResult(task *domain.Task) {
	if task.Result == nil {
		return
	}
	task.Result["manager_id"] = w.identity.CoordinatorID
	if !w.identity.SpawnTime.IsZero() {
		task.Result["spawn_time"] = w.identity.SpawnTime.Format(time.RFC3339)
	}
}

// selfTerminate запрашивает удаление воркера ровно один раз
// и сигнализирует процессу о завершении.
func (w *Worker) selfTerminate(ctx context.Context) {
	w.terminateOnce.Do(func() {
		switch w.terminator.SelfTerminate(ctx) {
		case cleanup.Removed:
			w.logger.Info("self-termination requested")
		case cleanup.Unavailable:
			w.logger.Warn("self-termination unavailable, must be cleaned up externally")
		}
		close(w.done)
	})
}

// submitOneshot отправляет воркеру его собственный canned scrape task.
func (w *Worker) submitOneshot() {
	w.logger.Info("starting mock scraping task")

	task := domain.NewTask(uuid.New().String(), domain.DefaultTaskType, map[string]any{
		"url":       "http://example.com",
		"max_pages": defaultMaxPages,
		"depth":     defaultDepth,
	})

	if err := w.Submit(task); err != nil {
		w.logger.Error("failed to submit one-shot task", "error", err)
	}
}
