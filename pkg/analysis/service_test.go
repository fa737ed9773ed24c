package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kotlens/kotlens/internal/event_bus"
	"github.com/kotlens/kotlens/internal/test_utils"
	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/kot"
	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
	"github.com/kotlens/kotlens/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

type serviceFixture struct {
	service   *ServiceImpl
	client    *kot.ClientStub
	snapshots *snapshot.MemoryRepository
	bus       *event_bus.EventBus
	clock     *utils.MockClock
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2024, 6, 20, 9, 0, 0, 0, jst)}
	client := kot.NewClientStub()
	client.SetEmployees(test_utils.Employees())
	client.AddWorkings(sampleRecords()...)
	snapshots := snapshot.NewMemoryRepository()
	bus := event_bus.NewEventBus()
	snapshot.Subscribe(bus, snapshots)

	return serviceFixture{
		service:   NewService(kot.NewFetcher(client, clock), snapshots, bus, clock),
		client:    client,
		snapshots: snapshots,
		bus:       bus,
		clock:     clock,
	}
}

func TestServiceImpl_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("should analyze live data and store a snapshot", func(t *testing.T) {
		// given
		f := setupService(t)

		// when
		report, err := f.service.Analyze(ctx, june2024)

		// then
		require.NoError(t, err)
		assert.Equal(t, attendance.SourceLive, report.Source)
		assert.Equal(t, f.clock.Now(), report.FetchedAt)
		assert.Empty(t, report.FailedMonths)
		require.NotEmpty(t, report.Evaluations)
		assert.Equal(t, overtime.Warning, report.Evaluations[0].AlertLevel)

		stored, err := f.snapshots.Latest(ctx, june2024)
		require.NoError(t, err)
		assert.Equal(t, attendance.SourceLive, stored.Source)
		assert.Len(t, stored.Employees, 4)
	})

	t.Run("should fall back to the latest snapshot when the API fails", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.service.Analyze(ctx, june2024)
		require.NoError(t, err)
		fetchedAt := f.clock.Now()
		f.clock.SetNow(fetchedAt.Add(time.Hour))
		f.client.SetFetchEmployeesError(errors.New("connection refused"))

		// when
		report, err := f.service.Analyze(ctx, june2024)

		// then
		require.NoError(t, err)
		assert.Equal(t, attendance.SourceCache, report.Source)
		assert.Equal(t, fetchedAt, report.FetchedAt)
		assert.Equal(t, overtime.Warning, report.Evaluations[0].AlertLevel)
	})

	t.Run("should return the upstream error without a snapshot", func(t *testing.T) {
		// given
		f := setupService(t)
		upstream := &kot.UpstreamError{Endpoint: "/employees", StatusCode: 503, Body: "maintenance"}
		f.client.SetFetchEmployeesError(upstream)

		// when
		_, err := f.service.Analyze(ctx, june2024)

		// then
		var target *kot.UpstreamError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 503, target.StatusCode)
	})

	t.Run("should report months the API could not deliver", func(t *testing.T) {
		// given
		f := setupService(t)
		f.client.SetMonthError(2024, 5, errors.New("timeout"))

		// when
		report, err := f.service.Analyze(ctx, june2024)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-05"}, report.FailedMonths)
		assert.Equal(t, 140.0, report.Evaluations[0].AnnualHours)
	})

	t.Run("should reject an invalid period before fetching", func(t *testing.T) {
		// given
		f := setupService(t)

		// when
		_, err := f.service.Analyze(ctx, period.Period{Year: 2024, Month: 0})

		// then
		assert.ErrorIs(t, err, period.ErrInvalidPeriod)
		assert.Empty(t, f.client.Calls())
	})
}

func TestServiceImpl_today(t *testing.T) {
	f := setupService(t)

	t.Run("should use the clock for the running month", func(t *testing.T) {
		assert.Equal(t, f.clock.Now(), f.service.today(june2024))
	})

	t.Run("should use the mid-month reference date for other months", func(t *testing.T) {
		got := f.service.today(period.Period{Year: 2024, Month: 3})

		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, jst), got)
	})
}

func TestServiceImpl_CurrentPeriod(t *testing.T) {
	f := setupService(t)
	f.clock.SetNow(time.Date(2024, 3, 31, 23, 30, 0, 0, jst))

	assert.Equal(t, period.Period{Year: 2024, Month: 3}, f.service.CurrentPeriod())
}
