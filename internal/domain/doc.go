// Package domain содержит основные типы данных воркера.
//
// Типы:
//   - Identity         — идентичность воркера (кто я, чей я, когда появился)
//   - Task             — единица работы с жизненным циклом QUEUED → RUNNING → терминал
//   - TaskStatus       — статусы task
//   - CompletionReport — отчёт о завершении для coordinator
//
// Воркер одноразовый: все типы живут не дольше процесса,
// никакого shared state между воркерами нет.
package domain
