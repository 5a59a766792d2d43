// Package mq — опциональная интеграция воркера с RabbitMQ.
//
// Авторитетный контракт с coordinator'ом — HTTP (internal/coordinator);
// очереди дополняют его:
//   - tasks.assign    — coordinator пушит назначения tasks воркерам
//   - tasks.completed — воркер зеркалит события завершения (информационно)
//
// Если RABBITMQ_URL не задан или брокер недоступен, воркер работает
// в режиме HTTP-only — отсутствие брокера не фатально.
//
// Структура:
//   - connection.go — управление соединением (redial с бюджетом, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий завершения
//   - consumer.go   — потребление назначений
package mq
