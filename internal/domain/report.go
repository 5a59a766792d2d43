package domain

// ReportStatus — итоговый статус в отчёте coordinator'у.
type ReportStatus string

const (
	// ReportStatusSuccess — task (или воркер целиком) завершился успешно.
	ReportStatusSuccess ReportStatus = "success"

	// ReportStatusError — task завершился с ошибкой.
	// Доставляется по тому же контракту, что и success.
	ReportStatusError ReportStatus = "error"
)

// CompletionReport — отчёт о завершении, отправляемый coordinator'у.
//
// Формируется ровно один раз на task (либо один раз на воркер в
// режиме run-once, тогда TaskID пустой) и отправляется до подтверждения
// или исчерпания retry-бюджета.
type CompletionReport struct {
	// WorkerID — идентификатор воркера-отправителя.
	WorkerID string `json:"container_id"`

	// TaskID — идентификатор task. Пустой для отчёта уровня воркера.
	TaskID string `json:"task_id,omitempty"`

	// Status — success или error.
	Status ReportStatus `json:"status"`

	// Result — результат выполнения (для error — может быть пустым).
	Result map[string]any `json:"result,omitempty"`

	// Error — текст ошибки при Status == error.
	Error string `json:"error,omitempty"`
}

// NewCompletionReport формирует отчёт по терминальному task.
func NewCompletionReport(workerID string, task *Task) CompletionReport {
	report := CompletionReport{
		WorkerID: workerID,
		TaskID:   task.ID,
		Result:   task.Result,
	}

	if task.Status == TaskStatusCompleted {
		report.Status = ReportStatusSuccess
	} else {
		report.Status = ReportStatusError
		report.Error = task.Error
	}

	return report
}
