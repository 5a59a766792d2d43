// Package cleanup — best-effort самоудаление воркера.
//
// Воркер одноразовый: после подтверждённого completion report он просит
// host-окружение удалить свой контейнер через локальный административный
// сокет. Конкретный механизм скрыт за интерфейсом Terminator, чтобы
// ядро воркера от него не зависело (в тестах — no-op).
//
// Самоудаление никогда не является условием успеха: если административный
// интерфейс недоступен, результат Unavailable логируется и процесс
// всё равно завершается с кодом 0.
package cleanup
