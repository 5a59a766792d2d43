package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Drone/internal/domain"
	"github.com/shaiso/Drone/internal/mq"
)

// fakeAcknowledger записывает ack/nack решения обработчика.
type fakeAcknowledger struct {
	mu       sync.Mutex
	acks     int
	nacks    int
	requeues []bool
}

func (a *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeues = append(a.requeues, requeue)
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func assignDelivery(ack *fakeAcknowledger, payload any) *mq.Delivery {
	return &mq.Delivery{
		Message: mq.Message{
			ID:      "m1",
			Type:    mq.MessageTypeTaskAssign,
			Payload: payload,
		},
		Raw: amqp.Delivery{Acknowledger: ack, DeliveryTag: 1},
	}
}

func TestHandleTaskAssignAcksAdmitted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("scrape", &instantExecutor{})

	w := New(Config{Identity: testIdentity(), Registry: registry, Logger: testLogger()})

	ack := &fakeAcknowledger{}
	delivery := assignDelivery(ack, map[string]any{"task_id": "t1", "type": "scrape"})

	if err := w.handleTaskAssign(context.Background(), delivery); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if ack.acks != 1 || ack.nacks != 0 {
		t.Errorf("acks = %d, nacks = %d, want 1/0", ack.acks, ack.nacks)
	}
	if _, err := w.Store().Get("t1"); err != nil {
		t.Errorf("admitted task not in store: %v", err)
	}

	waitFor(t, time.Second, func() bool { return w.ActiveTasks() == 0 })
}

func TestHandleTaskAssignRequeuesAtCapacity(t *testing.T) {
	exec := newBlockingExecutor()
	registry := NewRegistry()
	registry.Register("scrape", exec)

	w := New(Config{
		Identity: testIdentity(),
		MaxTasks: 1,
		Registry: registry,
		Logger:   testLogger(),
	})

	if err := w.Submit(domain.NewTask("t1", "scrape", nil)); err != nil {
		t.Fatalf("fill slot: %v", err)
	}
	<-exec.started

	ack := &fakeAcknowledger{}
	delivery := assignDelivery(ack, map[string]any{"task_id": "t2", "type": "scrape"})

	// Отказ по capacity не ошибка обработки: назначение возвращается
	// в очередь, его заберёт другой воркер
	if err := w.handleTaskAssign(context.Background(), delivery); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if ack.nacks != 1 || len(ack.requeues) != 1 || !ack.requeues[0] {
		t.Errorf("expected single nack with requeue, got nacks=%d requeues=%v", ack.nacks, ack.requeues)
	}
	if _, err := w.Store().Get("t2"); err == nil {
		t.Error("rejected assignment must not enter the store")
	}

	close(exec.release)
}

func TestHandleTaskAssignAcksDuplicate(t *testing.T) {
	exec := newBlockingExecutor()
	registry := NewRegistry()
	registry.Register("scrape", exec)

	w := New(Config{
		Identity: testIdentity(),
		MaxTasks: 2,
		Registry: registry,
		Logger:   testLogger(),
	})

	if err := w.Submit(domain.NewTask("t1", "scrape", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	<-exec.started

	ack := &fakeAcknowledger{}
	delivery := assignDelivery(ack, map[string]any{"task_id": "t1", "type": "scrape"})

	// Дубликат подтверждается без повторного запуска
	if err := w.handleTaskAssign(context.Background(), delivery); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if ack.acks != 1 || ack.nacks != 0 {
		t.Errorf("acks = %d, nacks = %d, want 1/0", ack.acks, ack.nacks)
	}
	if w.Store().Len() != 1 {
		t.Errorf("store len = %d, want 1", w.Store().Len())
	}
	if w.ActiveTasks() != 1 {
		t.Errorf("active = %d, want 1: duplicate must not hold a second slot", w.ActiveTasks())
	}

	close(exec.release)
}

func TestHandleTaskAssignRejectsBadPayload(t *testing.T) {
	w := New(Config{Identity: testIdentity(), Logger: testLogger()})

	ack := &fakeAcknowledger{}
	// task_id числом не парсится в payload назначения
	delivery := assignDelivery(ack, map[string]any{"task_id": 123})

	if err := w.handleTaskAssign(context.Background(), delivery); err == nil {
		t.Fatal("expected parse error")
	}

	if ack.nacks != 1 || len(ack.requeues) != 1 || ack.requeues[0] {
		t.Errorf("expected single nack without requeue (DLQ), got nacks=%d requeues=%v", ack.nacks, ack.requeues)
	}
	if w.Store().Len() != 0 {
		t.Errorf("store len = %d, want 0", w.Store().Len())
	}
}
