package store

import (
	"sync"
)

const memoryChangeBuffer = 64

// Memory is an in-process store shared by any number of contexts. It plays the
// role of the origin's storage area: every context sees the same keys and
// receives change notifications for writes made through the other contexts.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	contexts []*MemoryContext
}

// NewMemory returns an empty shared store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Context opens a new view of the store. Writes made through it are announced
// to every other open context.
func (m *Memory) Context() *MemoryContext {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &MemoryContext{
		mem:     m,
		changes: make(chan Change, memoryChangeBuffer),
	}
	m.contexts = append(m.contexts, c)
	return c
}

// Snapshot returns a copy of the current contents.
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func (m *Memory) set(from *MemoryContext, key, value string) {
	m.mu.Lock()
	old := m.data[key]
	m.data[key] = value
	targets := m.othersLocked(from)
	m.mu.Unlock()

	for _, c := range targets {
		c.deliver(Change{Key: key, OldValue: old, NewValue: value})
	}
}

func (m *Memory) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
}

func (m *Memory) othersLocked(from *MemoryContext) []*MemoryContext {
	out := make([]*MemoryContext, 0, len(m.contexts))
	for _, c := range m.contexts {
		if c != from && !c.isClosed() {
			out = append(out, c)
		}
	}
	return out
}

// MemoryContext is one window's view of a Memory store.
type MemoryContext struct {
	mem     *Memory
	changes chan Change

	mu     sync.Mutex
	closed bool
	writes int
}

var _ Watcher = (*MemoryContext)(nil)

func (c *MemoryContext) Get(key string) (string, bool, error) {
	c.mem.mu.Lock()
	defer c.mem.mu.Unlock()
	v, ok := c.mem.data[key]
	return v, ok, nil
}

func (c *MemoryContext) Set(key, value string) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	c.mem.set(c, key, value)
	return nil
}

func (c *MemoryContext) Clear() error {
	c.mem.clear()
	return nil
}

// Writes reports how many Set calls went through this context.
func (c *MemoryContext) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *MemoryContext) Changes() <-chan Change {
	return c.changes
}

func (c *MemoryContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.changes)
	}
	return nil
}

func (c *MemoryContext) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// deliver drops the change when the receiver is not keeping up; the next
// change carries the full window set anyway.
func (c *MemoryContext) deliver(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.changes <- ch:
	default:
	}
}
