package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики жизненного цикла воркера.
//
// Экспортируются на /metrics (promhttp в cmd/drone-worker).
var (
	// TasksAdmitted — количество tasks, прошедших admission.
	TasksAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drone_tasks_admitted_total",
		Help: "Number of tasks admitted for execution.",
	})

	// TasksRejected — количество tasks, отклонённых по capacity.
	TasksRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drone_tasks_rejected_total",
		Help: "Number of task submissions rejected because the worker was at capacity.",
	})

	// TasksFinished — завершённые tasks по терминальному статусу.
	TasksFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drone_tasks_finished_total",
		Help: "Number of tasks that reached a terminal status.",
	}, []string{"status"})

	// ActiveTasks — текущее количество выполняющихся tasks.
	ActiveTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "drone_active_tasks",
		Help: "Number of tasks currently holding an execution slot.",
	})

	// RegistrationAttempts — попытки регистрации у coordinator'а.
	RegistrationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drone_registration_attempts_total",
		Help: "Registration attempts against the coordinator.",
	}, []string{"outcome"})

	// ReportAttempts — попытки доставки completion report.
	ReportAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drone_report_attempts_total",
		Help: "Completion report delivery attempts against the coordinator.",
	}, []string{"outcome"})
)

// Значения label outcome.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)
