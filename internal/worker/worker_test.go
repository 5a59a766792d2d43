package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Drone/internal/cleanup"
	"github.com/shaiso/Drone/internal/coordinator"
	"github.com/shaiso/Drone/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIdentity() domain.Identity {
	return domain.Identity{
		WorkerID:      "worker-1",
		CoordinatorID: "manager-1",
	}
}

// countingTerminator считает вызовы self-termination.
type countingTerminator struct {
	calls atomic.Int64
}

func (t *countingTerminator) SelfTerminate(_ context.Context) cleanup.Result {
	t.calls.Add(1)
	return cleanup.Removed
}

// instantExecutor завершается сразу с фиксированным результатом.
type instantExecutor struct {
	outputs map[string]any
	err     error
}

func (e *instantExecutor) Execute(_ context.Context, _ *domain.Task) (*ExecutionResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &ExecutionResult{Outputs: e.outputs}, nil
}

// blockingExecutor держит слот занятым до закрытия release.
type blockingExecutor struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (e *blockingExecutor) Execute(ctx context.Context, _ *domain.Task) (*ExecutionResult, error) {
	close(e.started)
	select {
	case <-e.release:
		return &ExecutionResult{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fakeCoordinator — httptest-заглушка coordinator'а.
// failCompletes задаёт количество неудачных ответов на complete
// до первого подтверждения.
type fakeCoordinator struct {
	srv *httptest.Server

	mu            sync.Mutex
	registerCalls int
	failRegisters int
	helloCalls    int
	completeCalls int
	failCompletes int
	lastReport    map[string]any
}

func newFakeCoordinator(t *testing.T) *fakeCoordinator {
	t.Helper()
	f := &fakeCoordinator{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCoordinator) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/api/v1/workers/register":
		f.registerCalls++
		if f.registerCalls <= f.failRegisters {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	case "/api/v1/workers/hello":
		f.helloCalls++
	case "/api/v1/tasks/complete":
		f.completeCalls++
		var report map[string]any
		json.NewDecoder(r.Body).Decode(&report)
		f.lastReport = report
		if f.completeCalls <= f.failCompletes {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (f *fakeCoordinator) client() *coordinator.Client {
	return coordinator.NewClient(f.srv.URL)
}

// coordStats — снимок счётчиков без мьютекса.
type coordStats struct {
	registerCalls int
	helloCalls    int
	completeCalls int
	lastReport    map[string]any
}

func (f *fakeCoordinator) snapshot() coordStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return coordStats{
		registerCalls: f.registerCalls,
		helloCalls:    f.helloCalls,
		completeCalls: f.completeCalls,
		lastReport:    f.lastReport,
	}
}

// waitFor опрашивает условие до таймаута.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWorkerRunsScrapeTaskToCompletion(t *testing.T) {
	coord := newFakeCoordinator(t)
	term := &countingTerminator{}

	w := New(Config{
		Identity:       testIdentity(),
		MaxTasks:       1,
		Coordinator:    coord.client(),
		Terminator:     term,
		ReportInterval: time.Millisecond,
		Logger:         testLogger(),
	})

	task := domain.NewTask("t1", "", map[string]any{
		"url":           "http://example.com",
		"max_pages":     3,
		"depth":         1,
		"page_delay_ms": 1,
	})

	if err := w.Submit(task); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish completion handshake")
	}

	got, err := w.Store().Get("t1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want %s", got.Status, domain.TaskStatusCompleted)
	}
	if pages := got.Result["pages_scraped"]; pages != 3 {
		t.Errorf("pages_scraped = %v, want 3", pages)
	}
	if depth := got.Result["depth_reached"]; depth != 1 {
		t.Errorf("depth_reached = %v, want 1", depth)
	}

	if calls := term.calls.Load(); calls != 1 {
		t.Errorf("terminator calls = %d, want exactly 1", calls)
	}

	snap := coord.snapshot()
	if snap.completeCalls != 1 {
		t.Errorf("complete calls = %d, want 1", snap.completeCalls)
	}
	if snap.lastReport["container_id"] != "worker-1" {
		t.Errorf("report container_id = %v", snap.lastReport["container_id"])
	}
	if snap.lastReport["task_id"] != "t1" {
		t.Errorf("report task_id = %v", snap.lastReport["task_id"])
	}
	if snap.lastReport["status"] != "success" {
		t.Errorf("report status = %v", snap.lastReport["status"])
	}
}

func TestWorkerRejectsTaskAtCapacity(t *testing.T) {
	exec := newBlockingExecutor()
	registry := NewRegistry()
	registry.Register("block", exec)

	w := New(Config{
		Identity: testIdentity(),
		MaxTasks: 1,
		Registry: registry,
		Logger:   testLogger(),
	})

	if err := w.Submit(domain.NewTask("t1", "block", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	<-exec.started

	err := w.Submit(domain.NewTask("t2", "block", nil))
	if !errors.Is(err, ErrAtCapacity) {
		t.Fatalf("second submit err = %v, want ErrAtCapacity", err)
	}

	// Отклонённый task не попадает в store
	if w.Store().Len() != 1 {
		t.Errorf("store len = %d, want 1", w.Store().Len())
	}

	close(exec.release)
	waitFor(t, time.Second, func() bool { return w.ActiveTasks() == 0 })

	// Слот освобождён — следующий task принимается
	exec2 := newBlockingExecutor()
	registry.Register("block", exec2)
	if err := w.Submit(domain.NewTask("t3", "block", nil)); err != nil {
		t.Fatalf("submit after release: %v", err)
	}
	close(exec2.release)
}

func TestWorkerRejectsUnknownTaskType(t *testing.T) {
	w := New(Config{
		Identity: testIdentity(),
		Logger:   testLogger(),
	})

	err := w.Submit(domain.NewTask("t1", "transcode", nil))
	if !errors.Is(err, ErrUnknownTaskType) {
		t.Fatalf("err = %v, want ErrUnknownTaskType", err)
	}
	if w.ActiveTasks() != 0 {
		t.Errorf("active = %d, want 0: rejected task must not hold a slot", w.ActiveTasks())
	}
}

func TestWorkerFailedTaskReported(t *testing.T) {
	coord := newFakeCoordinator(t)
	term := &countingTerminator{}

	registry := NewRegistry()
	registry.Register("scrape", &instantExecutor{err: errors.New("target unreachable")})

	w := New(Config{
		Identity:       testIdentity(),
		Coordinator:    coord.client(),
		Registry:       registry,
		Terminator:     term,
		ReportInterval: time.Millisecond,
		Logger:         testLogger(),
	})

	if err := w.Submit(domain.NewTask("t1", "scrape", nil)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("handshake did not finish")
	}

	got, _ := w.Store().Get("t1")
	if got.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, domain.TaskStatusFailed)
	}

	snap := coord.snapshot()
	if snap.lastReport["status"] != "error" {
		t.Errorf("report status = %v, want error", snap.lastReport["status"])
	}
	if snap.lastReport["error"] != "target unreachable" {
		t.Errorf("report error = %v", snap.lastReport["error"])
	}

	// FAILED — тоже подтверждаемое завершение: self-termination происходит
	if term.calls.Load() != 1 {
		t.Errorf("terminator calls = %d, want 1", term.calls.Load())
	}
}

func TestWorkerReportConfirmedOnFifthAttempt(t *testing.T) {
	coord := newFakeCoordinator(t)
	coord.failCompletes = 4
	term := &countingTerminator{}

	registry := NewRegistry()
	registry.Register("scrape", &instantExecutor{outputs: map[string]any{"ok": true}})

	w := New(Config{
		Identity:       testIdentity(),
		Coordinator:    coord.client(),
		Registry:       registry,
		Terminator:     term,
		ReportInterval: time.Millisecond,
		Logger:         testLogger(),
	})

	if err := w.Submit(domain.NewTask("t1", "scrape", nil)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("handshake did not finish")
	}

	snap := coord.snapshot()
	if snap.completeCalls != 5 {
		t.Errorf("complete calls = %d, want 5", snap.completeCalls)
	}
	if term.calls.Load() != 1 {
		t.Errorf("terminator calls = %d, want 1", term.calls.Load())
	}
}

func TestWorkerReportExhaustedKeepsWorkerAlive(t *testing.T) {
	coord := newFakeCoordinator(t)
	coord.failCompletes = 1000
	term := &countingTerminator{}

	registry := NewRegistry()
	registry.Register("scrape", &instantExecutor{})

	w := New(Config{
		Identity:       testIdentity(),
		Coordinator:    coord.client(),
		Registry:       registry,
		Terminator:     term,
		ReportInterval: time.Millisecond,
		Logger:         testLogger(),
	})

	if err := w.Submit(domain.NewTask("t1", "scrape", nil)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return coord.snapshot().completeCalls >= reportAttempts
	})
	waitFor(t, time.Second, func() bool { return w.ActiveTasks() == 0 })

	snap := coord.snapshot()
	if snap.completeCalls != reportAttempts {
		t.Errorf("complete calls = %d, want exactly %d", snap.completeCalls, reportAttempts)
	}

	// Без подтверждения воркер не самоудаляется
	if term.calls.Load() != 0 {
		t.Errorf("terminator calls = %d, want 0", term.calls.Load())
	}
	select {
	case <-w.Done():
		t.Fatal("done channel closed without confirmed report")
	default:
	}

	// Task остаётся в store в терминальном статусе
	got, err := w.Store().Get("t1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !got.IsFinished() {
		t.Errorf("status = %s, want terminal", got.Status)
	}
}

func TestWorkerRegistrationStopsAtFirstSuccess(t *testing.T) {
	coord := newFakeCoordinator(t)
	coord.failRegisters = 2

	w := New(Config{
		Identity:         testIdentity(),
		Coordinator:      coord.client(),
		RegisterInterval: time.Millisecond,
		Logger:           testLogger(),
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	waitFor(t, 2*time.Second, func() bool { return w.Registered() })

	snap := coord.snapshot()
	if snap.registerCalls != 3 {
		t.Errorf("register calls = %d, want 3", snap.registerCalls)
	}
	if snap.helloCalls != 1 {
		t.Errorf("hello calls = %d, want 1", snap.helloCalls)
	}
}

func TestWorkerSurvivesRegistrationExhaustion(t *testing.T) {
	coord := newFakeCoordinator(t)
	coord.failRegisters = 1000

	w := New(Config{
		Identity:         testIdentity(),
		Coordinator:      coord.client(),
		RegisterInterval: time.Millisecond,
		Logger:           testLogger(),
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return coord.snapshot().registerCalls >= registerAttempts
	})

	snap := coord.snapshot()
	if snap.registerCalls != registerAttempts {
		t.Errorf("register calls = %d, want exactly %d", snap.registerCalls, registerAttempts)
	}
	if w.Registered() {
		t.Error("worker must stay unregistered after budget exhaustion")
	}

	// Незарегистрированный воркер продолжает отвечать на liveness
	rec := httptest.NewRecorder()
	w.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
}

func TestWorkerRunOnceReportsWorkerLevel(t *testing.T) {
	coord := newFakeCoordinator(t)
	term := &countingTerminator{}

	registry := NewRegistry()
	registry.Register("scrape", &instantExecutor{outputs: map[string]any{"pages_scraped": 5}})

	w := New(Config{
		Identity:         testIdentity(),
		Coordinator:      coord.client(),
		Registry:         registry,
		Terminator:       term,
		RegisterInterval: time.Millisecond,
		ReportInterval:   time.Millisecond,
		RunOnce:          true,
		Logger:           testLogger(),
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run-once worker did not finish")
	}

	snap := coord.snapshot()
	// Отчёт уровня воркера: task_id отсутствует, identity в результате
	if id, ok := snap.lastReport["task_id"]; ok && id != "" {
		t.Errorf("run-once report task_id = %v, want absent", id)
	}
	result, _ := snap.lastReport["result"].(map[string]any)
	if result["manager_id"] != "manager-1" {
		t.Errorf("result manager_id = %v", result["manager_id"])
	}
	if term.calls.Load() != 1 {
		t.Errorf("terminator calls = %d, want 1", term.calls.Load())
	}
}
