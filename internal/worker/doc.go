// Package worker реализует одноразового исполнителя tasks.
//
// Воркер проходит фиксированный жизненный цикл: разрешение identity,
// регистрация у coordinator'а (bounded retry, не фатально), приём
// tasks через HTTP или RabbitMQ с атомарным admission по capacity,
// выполнение через registry executor'ов, затем completion handshake.
// Подтверждённый отчёт запускает self-termination ровно один раз;
// неподтверждённый оставляет воркера жить для внешней диагностики.
//
// Состояние task монотонно: QUEUED → RUNNING → {COMPLETED, FAILED},
// терминальные статусы не перезаписываются.
package worker
