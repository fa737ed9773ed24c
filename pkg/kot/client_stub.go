package kot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
)

type ClientStub struct {
	mu                sync.RWMutex
	employees         []attendance.Employee
	workings          map[string][]attendance.RawMonthlyRecord // YYYY-MM -> records
	workingsErr       map[string]error
	leaveManagements  json.RawMessage
	fetchEmployeesErr error
	calls             []string
}

func NewClientStub() *ClientStub {
	return &ClientStub{
		workings:    make(map[string][]attendance.RawMonthlyRecord),
		workingsErr: make(map[string]error),
	}
}

func (s *ClientStub) SetEmployees(employees []attendance.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = employees
}

func (s *ClientStub) SetFetchEmployeesError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchEmployeesErr = err
}

// AddWorkings appends records to the month they belong to.
func (s *ClientStub) AddWorkings(records ...attendance.RawMonthlyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		key := r.MonthKey()
		s.workings[key] = append(s.workings[key], r)
	}
}

func (s *ClientStub) SetMonthError(year, month int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workingsErr[period.MonthKey(year, month)] = err
}

func (s *ClientStub) SetLeaveManagements(body json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveManagements = body
}

// Calls lists the months requested so far.
func (s *ClientStub) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.calls...)
}

func (s *ClientStub) FetchEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchEmployeesErr != nil {
		return nil, s.fetchEmployeesErr
	}
	return append([]attendance.Employee(nil), s.employees...), nil
}

func (s *ClientStub) FetchMonthlyWorkings(ctx context.Context, year, month int) ([]attendance.RawMonthlyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := period.MonthKey(year, month)
	s.calls = append(s.calls, key)
	if err := s.workingsErr[key]; err != nil {
		return nil, err
	}
	return append([]attendance.RawMonthlyRecord(nil), s.workings[key]...), nil
}

func (s *ClientStub) FetchLeaveManagements(ctx context.Context, leaveCode string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.leaveManagements == nil {
		return json.RawMessage("[]"), nil
	}
	return s.leaveManagements, nil
}
