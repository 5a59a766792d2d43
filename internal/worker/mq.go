package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shaiso/Drone/internal/domain"
	"github.com/shaiso/Drone/internal/mq"
	"github.com/shaiso/Drone/internal/store"
)

// handleTaskAssign обрабатывает назначение task из очереди tasks.assign.
//
// Admission тот же, что и у POST /task. Воркер на пределе capacity
// возвращает назначение в очередь (nack с requeue) — его заберёт
// другой воркер; дубликат подтверждается без повторного запуска.
func (w *Worker) handleTaskAssign(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.TaskAssignPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse task.assign payload", "error", err)
		delivery.Nack(false)
		return err
	}

	taskID := payload.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}

	task := domain.NewTask(taskID, payload.Type, payload.Params)

	switch err := w.Submit(task); {
	case err == nil:
		delivery.Ack()
		return nil

	case errors.Is(err, ErrAtCapacity):
		w.logger.Debug("at capacity, requeueing assignment", "task_id", taskID)
		delivery.Nack(true)
		return nil

	case errors.Is(err, store.ErrAlreadyExists):
		w.logger.Debug("duplicate assignment", "task_id", taskID)
		delivery.Ack()
		return nil

	default:
		w.logger.Error("failed to admit assignment", "task_id", taskID, "error", err)
		delivery.Nack(false)
		return err
	}
}

// publishCompletion зеркалит событие завершения в tasks.completed.
// Информационно: авторитетный handshake — HTTP completion report,
// отсутствие publisher'а или ошибка публикации ничего не ломают.
func (w *Worker) publishCompletion(ctx context.Context, task *domain.Task) {
	if w.publisher == nil {
		return
	}

	report := domain.NewCompletionReport(w.identity.WorkerID, task)

	payload := mq.TaskCompletedPayload{
		WorkerID: report.WorkerID,
		TaskID:   report.TaskID,
		Status:   string(report.Status),
		Error:    report.Error,
		Result:   report.Result,
	}

	if err := w.publisher.PublishTaskCompleted(ctx, payload); err != nil {
		w.logger.Warn("failed to publish task.completed",
			"task_id", task.ID,
			"error", err,
		)
	}
}
