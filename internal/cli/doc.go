// Package cli реализует инструмент командной строки Drone.
//
// # Обзор
//
// CLI — клиентская утилита для наблюдения за воркером и отправки
// tasks через его HTTP-поверхность. Работает через HTTP,
// не импортирует внутренние пакеты воркера.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для worker API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8081")
//	status, err := client.Status()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON с отступами — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success) — в stderr.
// Это позволяет использовать pipe: drone task list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - status: состояние воркера
//   - task: list, show, submit
//
// Каждая группа создаётся через фабричную функцию (NewTaskCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
