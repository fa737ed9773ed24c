package analysis

import (
	"context"
	"sync"

	"github.com/kotlens/kotlens/pkg/period"
)

type ServiceStub struct {
	mu      sync.Mutex
	current period.Period
	reports map[period.Period]Report
	err     error
	calls   []period.Period
}

func NewServiceStub(current period.Period) *ServiceStub {
	return &ServiceStub{
		current: current,
		reports: make(map[period.Period]Report),
	}
}

func (s *ServiceStub) SetReport(report Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.Period] = report
}

func (s *ServiceStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls lists the periods analyzed so far.
func (s *ServiceStub) Calls() []period.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]period.Period(nil), s.calls...)
}

func (s *ServiceStub) Analyze(ctx context.Context, p period.Period) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	if s.err != nil {
		return Report{}, s.err
	}
	if report, ok := s.reports[p]; ok {
		return report, nil
	}
	return Report{Result: Result{Period: p, FiscalYear: p.FiscalYear(), MonthsRemaining: p.MonthsRemaining()}}, nil
}

func (s *ServiceStub) CurrentPeriod() period.Period {
	return s.current
}
