// Package store — in-memory хранилище tasks воркера.
//
// Воркер одноразовый, поэтому хранилище живёт только в памяти процесса
// и не поддерживает удаление: task существует с момента admission
// до завершения процесса.
//
// Чтения возвращают snapshot-копии записей — конкурентный читатель
// никогда не видит частично обновлённый task.
package store
