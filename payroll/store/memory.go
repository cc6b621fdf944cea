// Package store provides Directory implementations.
package store

import (
	"context"
	"sync"

	"github.com/brewshift/payout/payroll"
)

// =============================================================================
// MEMORY DIRECTORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees []payroll.Employee
}

func NewMemory(employees ...payroll.Employee) *Memory {
	m := &Memory{}
	m.employees = append(m.employees, employees...)
	return m
}

// List returns a copy so callers hold a consistent snapshot even while a
// Replace runs concurrently.
func (m *Memory) List(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]payroll.Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

// Replace swaps in the new list wholesale.
func (m *Memory) Replace(_ context.Context, employees []payroll.Employee) error {
	next := make([]payroll.Employee, len(employees))
	copy(next, employees)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = next
	return nil
}
