package worker

import (
	"context"
	"time"

	"github.com/shaiso/Drone/internal/telemetry"
)

// Бюджет регистрации у coordinator'а.
const (
	registerAttempts        = 5
	defaultRegisterInterval = 2 * time.Second
)

// register выполняет startup handshake с coordinator'ом.
//
// До 5 попыток с паузой 2 секунды, остановка на первом успехе.
// Исчерпание бюджета не фатально: воркер продолжает работать
// незарегистрированным (деградация — внешние назначения tasks
// не придут, но HTTP-поверхность жива).
//
// Регистрация идемпотентна на стороне coordinator'а, поэтому
// повторные попытки безопасны.
func (w *Worker) register(ctx context.Context) {
	for attempt := 1; attempt <= registerAttempts; attempt++ {
		err := w.coord.Register(ctx, w.identity.WorkerID, w.gate.Limit())
		if err == nil {
			telemetry.RegistrationAttempts.WithLabelValues(telemetry.OutcomeOK).Inc()
			w.registered.Store(true)
			w.logger.Info("registered with coordinator",
				"attempt", attempt,
				"max_tasks", w.gate.Limit(),
			)
			w.announceReady(ctx)
			return
		}

		telemetry.RegistrationAttempts.WithLabelValues(telemetry.OutcomeFailed).Inc()
		w.logger.Warn("registration attempt failed",
			"attempt", attempt,
			"max_attempts", registerAttempts,
			"error", err,
		)

		if attempt == registerAttempts {
			break
		}

		select {
		case <-time.After(w.registerInterval):
		case <-ctx.Done():
			return
		}
	}

	w.logger.Warn("registration budget exhausted, continuing unregistered")
}

// announceReady отправляет одноразовое readiness-объявление.
// Информационное: ошибка доставки логируется и не влияет на воркера.
func (w *Worker) announceReady(ctx context.Context) {
	msg := w.identity.HelloMessage()
	if err := w.coord.Hello(ctx, w.identity.WorkerID, msg); err != nil {
		w.logger.Warn("hello announcement failed", "error", err)
		return
	}
	w.logger.Info("hello announcement delivered", "message", msg)
}
