package memory

import (
	"context"
	"sync"

	"outlay/internal/core"
	ports "outlay/internal/sheets"
)

// Mirror keeps the rows it would have written, per user.
type Mirror struct {
	mu     sync.Mutex
	tabs   map[string][][]any
	writes int
}

var _ ports.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{tabs: make(map[string][][]any)}
}

func (m *Mirror) WriteSnapshot(_ context.Context, uid string, expenses []core.Expense) error {
	rows := ports.Rows(expenses)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[ports.TabName(uid)] = rows
	m.writes++
	return nil
}

// Tab returns the rows last written for uid.
func (m *Mirror) Tab(uid string) ([][]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tabs[ports.TabName(uid)]
	return rows, ok
}

// Writes counts WriteSnapshot calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
