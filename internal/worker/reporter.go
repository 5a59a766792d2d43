package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Drone/internal/domain"
	"github.com/shaiso/Drone/internal/telemetry"
)

// Бюджет доставки completion report.
const (
	reportAttempts        = 5
	defaultReportInterval = time.Second
)

// ReportOutcome — исход retry-цикла доставки отчёта.
type ReportOutcome int

const (
	// ReportConfirmed — coordinator подтвердил приём отчёта.
	ReportConfirmed ReportOutcome = iota

	// ReportExhausted — бюджет попыток исчерпан без подтверждения.
	ReportExhausted
)

// String возвращает строковое представление ReportOutcome.
func (o ReportOutcome) String() string {
	if o == ReportConfirmed {
		return "confirmed"
	}
	return "exhausted"
}

// CompletionSender отправляет отчёт coordinator'у.
// nil означает подтверждение (HTTP 2xx + логический success в теле);
// любая ошибка — одна неудачная попытка, независимо от того,
// транспортная она или логическая.
type CompletionSender interface {
	Complete(ctx context.Context, report domain.CompletionReport) error
}

// Reporter доставляет completion reports с ограниченным retry.
//
// Делает не более 5 попыток с паузой в 1 секунду между ними,
// останавливается на первом подтверждении. За пределы бюджета
// не выходит и не блокируется навсегда; что делать с Exhausted,
// решает вызывающий.
type Reporter struct {
	client   CompletionSender
	interval time.Duration
	logger   *slog.Logger
}

// NewReporter создаёт Reporter. interval <= 0 — значение по умолчанию.
func NewReporter(client CompletionSender, interval time.Duration, logger *slog.Logger) *Reporter {
	if interval <= 0 {
		interval = defaultReportInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// Report отправляет отчёт до подтверждения или исчерпания бюджета.
func (r *Reporter) Report(ctx context.Context, report domain.CompletionReport) ReportOutcome {
	logger := telemetry.WithTaskID(r.logger, report.TaskID)

	for attempt := 1; attempt <= reportAttempts; attempt++ {
		err := r.client.Complete(ctx, report)
		if err == nil {
			telemetry.ReportAttempts.WithLabelValues(telemetry.OutcomeOK).Inc()
			logger.Info("completion report confirmed",
				"status", report.Status,
				"attempt", attempt,
			)
			return ReportConfirmed
		}

		telemetry.ReportAttempts.WithLabelValues(telemetry.OutcomeFailed).Inc()
		logger.Warn("completion report attempt failed",
			"attempt", attempt,
			"max_attempts", reportAttempts,
			"error", err,
		)

		if attempt == reportAttempts {
			break
		}

		select {
		case <-time.After(r.interval):
		case <-ctx.Done():
			logger.Warn("completion reporting aborted", "error", ctx.Err())
			return ReportExhausted
		}
	}

	logger.Error("completion report budget exhausted", "attempts", reportAttempts)
	return ReportExhausted
}
