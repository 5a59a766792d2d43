// Package coordinator — HTTP-клиент для контрактов coordinator'а.
//
// Coordinator — внешний сервис: он порождает воркеров, раздаёт tasks
// и учитывает завершения. Этот пакет не реализует его логику,
// только фиксированный request/response контракт:
//
//   - POST /api/v1/workers/register     — регистрация воркера (идемпотентна)
//   - POST /api/v1/workers/request_task — identity-bootstrap при старте
//   - POST /api/v1/workers/hello        — одноразовое readiness-объявление
//   - POST /api/v1/tasks/complete       — completion handshake
//
// Подтверждением считается только HTTP 2xx вместе с логическим
// success в теле ({"status":"ok"} или {"status":"success"}) —
// голого HTTP-успеха недостаточно.
package coordinator
