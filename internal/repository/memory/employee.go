package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
)

type EmployeeDirectory struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeDirectory(employees ...employee.Employee) *EmployeeDirectory {
	d := &EmployeeDirectory{employees: make(map[string]employee.Employee)}
	for _, e := range employees {
		d.employees[e.ID] = e
	}
	return d
}

func (d *EmployeeDirectory) Add(e employee.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[e.ID] = e
}

func (d *EmployeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}
