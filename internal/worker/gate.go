package worker

import "sync/atomic"

// Gate — admission gate: ограничитель одновременно выполняемых tasks.
//
// Проверка и инкремент активного счётчика атомарны (CAS): два admission
// не могут одновременно увидеть последний свободный слот.
type Gate struct {
	limit  int64
	active atomic.Int64
}

// NewGate создаёт gate с лимитом limit (минимум 1).
func NewGate(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{limit: int64(limit)}
}

// TryAdmit пытается занять слот выполнения.
// false — воркер на пределе; отказ всегда явный, без очереди.
func (g *Gate) TryAdmit() bool {
	for {
		cur := g.active.Load()
		if cur >= g.limit {
			return false
		}
		if g.active.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Release освобождает слот после терминального статуса task.
func (g *Gate) Release() {
	if g.active.Add(-1) < 0 {
		panic("gate: release without admit")
	}
}

// Active возвращает количество занятых слотов.
func (g *Gate) Active() int {
	return int(g.active.Load())
}

// Limit возвращает настроенный максимум concurrent tasks.
func (g *Gate) Limit() int {
	return int(g.limit)
}
