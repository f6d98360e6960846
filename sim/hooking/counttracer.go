package hooking

import (
	"sync"
)

// CountTracer counts how many times each hook position fired.
type CountTracer struct {
	lock sync.Mutex

	posNames []string
	count    map[string]uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	t := &CountTracer{
		count: make(map[string]uint64),
	}

	return t
}

// Func counts the position the hook fired at.
func (t *CountTracer) Func(ctx HookCtx) {
	if ctx.Pos == nil {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.count[ctx.Pos.Name]
	if !ok {
		t.posNames = append(t.posNames, ctx.Pos.Name)
	}

	t.count[ctx.Pos.Name]++
}

// GetPosNames returns the positions seen so far, in first-seen order.
func (t *CountTracer) GetPosNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.posNames))
	copy(names, t.posNames)

	return names
}

// GetCount returns how many times the named position fired.
func (t *CountTracer) GetCount(posName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count[posName]
}

// Snapshot returns a copy of all counters.
func (t *CountTracer) Snapshot() map[string]uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	s := make(map[string]uint64, len(t.count))
	for k, v := range t.count {
		s[k] = v
	}

	return s
}
