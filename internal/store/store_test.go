package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shaiso/Drone/internal/domain"
)

func TestTaskStore_CreateGet(t *testing.T) {
	s := NewTaskStore()

	task := domain.NewTask("t1", "scrape", map[string]any{"url": "http://example.com"})
	if err := s.Create(task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Get("t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "t1" || got.Status != domain.TaskStatusQueued {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestTaskStore_CreateDuplicate(t *testing.T) {
	s := NewTaskStore()

	if err := s.Create(domain.NewTask("t1", "scrape", nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Create(domain.NewTask("t1", "scrape", nil))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTaskStore_GetNotFound(t *testing.T) {
	s := NewTaskStore()

	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskStore_UpdateNotFound(t *testing.T) {
	s := NewTaskStore()

	err := s.Update(domain.NewTask("missing", "scrape", nil))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskStore_SnapshotSemantics(t *testing.T) {
	s := NewTaskStore()

	task := domain.NewTask("t1", "scrape", map[string]any{"url": "http://example.com"})
	if err := s.Create(task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Мутация записи, полученной из store, не должна влиять на хранилище
	got, _ := s.Get("t1")
	got.MarkRunning()
	got.Params["url"] = "http://mutated.example"

	again, _ := s.Get("t1")
	if again.Status != domain.TaskStatusQueued {
		t.Errorf("store record should be unaffected, got status %s", again.Status)
	}
	if again.Params["url"] != "http://example.com" {
		t.Errorf("store params should be unaffected, got %v", again.Params["url"])
	}

	// Мутация исходного task после Create тоже не видна хранилищу
	task.MarkFailed("mutated outside")
	again, _ = s.Get("t1")
	if again.Status != domain.TaskStatusQueued {
		t.Errorf("create should copy the record, got status %s", again.Status)
	}
}

func TestTaskStore_ListOrdered(t *testing.T) {
	s := NewTaskStore()

	for i := 0; i < 5; i++ {
		if err := s.Create(domain.NewTask(fmt.Sprintf("t%d", i), "scrape", nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tasks := s.List()
	if len(tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i].QueuedAt.Before(tasks[i-1].QueuedAt) {
			t.Error("list should be ordered by queued_at")
		}
	}
	if s.Len() != 5 {
		t.Errorf("expected len 5, got %d", s.Len())
	}
}

func TestTaskStore_ConcurrentAccess(t *testing.T) {
	s := NewTaskStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("t%d", i)
			if err := s.Create(domain.NewTask(id, "scrape", nil)); err != nil {
				t.Errorf("create %s: %v", id, err)
				return
			}

			task, _ := s.Get(id)
			task.MarkRunning()
			if err := s.Update(task); err != nil {
				t.Errorf("update %s: %v", id, err)
			}

			s.List()
		}(i)
	}
	wg.Wait()

	if s.Len() != 20 {
		t.Errorf("expected 20 tasks, got %d", s.Len())
	}
}
