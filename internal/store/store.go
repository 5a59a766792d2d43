package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Drone/internal/domain"
)

// TaskStore — потокобезопасное in-memory хранилище tasks.
//
// ID уникален; записи не удаляются. Writer для каждого task один
// (выполняющая горутина), читатели получают копии через Clone.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// NewTaskStore создаёт пустое хранилище.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*domain.Task),
	}
}

// Create добавляет новый task. Дубликат ID — ошибка.
func (s *TaskStore) Create(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, task.ID)
	}

	s.tasks[task.ID] = task.Clone()
	return nil
}

// Update заменяет запись task целиком.
// Замена всей записи — читатель видит либо старый, либо новый snapshot.
func (s *TaskStore) Update(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, task.ID)
	}

	s.tasks[task.ID] = task.Clone()
	return nil
}

// Get возвращает snapshot task по ID.
func (s *TaskStore) Get(id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return task.Clone(), nil
}

// List возвращает snapshot всех tasks, отсортированный по времени admission.
func (s *TaskStore) List() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task.Clone())
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].QueuedAt.Before(tasks[j].QueuedAt)
	})

	return tasks
}

// Len возвращает количество tasks в хранилище.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
