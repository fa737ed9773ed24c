package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kotlens/kotlens/internal/event_bus"
	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/analysis"
	"github.com/kotlens/kotlens/pkg/digest_run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service  *ServiceImpl
	analysis *analysis.ServiceStub
	sender   *SenderStub
	runs     *digest_run.MemoryRepository
}

func setupService(t *testing.T, recipients []string) serviceFixture {
	t.Helper()
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)
	analysisStub := analysis.NewServiceStub(june2024)
	analysisStub.SetReport(reportWith(t, busyRecords()...))
	sender := NewSenderStub()
	runs := digest_run.NewMemoryRepository()
	bus := event_bus.NewEventBus()
	digest_run.Subscribe(bus, runs)
	clock := &utils.MockClock{FixedNow: generatedAt}

	return serviceFixture{
		service:  NewService(analysisStub, renderer, sender, bus, clock, "KOT Analysis <noreply@example.com>", recipients),
		analysis: analysisStub,
		sender:   sender,
		runs:     runs,
	}
}

func TestServiceImpl_SendReport(t *testing.T) {
	ctx := context.Background()

	t.Run("should mail the digest of the current month and record the run", func(t *testing.T) {
		// given
		f := setupService(t, []string{"hr@example.com"})

		// when
		run, err := f.service.SendReport(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, digest_run.StatusSent, run.Status)
		assert.Equal(t, 2, run.AlertCount)
		assert.Equal(t, june2024, run.Period)

		sent := f.sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "[重要] KOT勤怠アラート: 1件の違反リスク — 2024年6月", sent[0].Subject)
		assert.Equal(t, []string{"hr@example.com"}, sent[0].To)
		assert.Contains(t, sent[0].HTML, "佐藤 花子")
		assert.True(t, generatedAt.Equal(sent[0].Date), "message dated %s", sent[0].Date)

		runs, err := f.runs.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, run.Id, runs[0].Id)
		assert.Equal(t, digest_run.StatusSent, runs[0].Status)
	})

	t.Run("should skip sending without recipients", func(t *testing.T) {
		// given
		f := setupService(t, nil)

		// when
		run, err := f.service.SendReport(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, digest_run.StatusSkipped, run.Status)
		assert.Empty(t, f.sender.Sent())
		runs, _ := f.runs.ListRecent(ctx, 10)
		require.Len(t, runs, 1)
		assert.Equal(t, digest_run.StatusSkipped, runs[0].Status)
	})

	t.Run("should record a failed delivery", func(t *testing.T) {
		// given
		f := setupService(t, []string{"hr@example.com"})
		f.sender.SetError(errors.New("535 authentication failed"))

		// when
		run, err := f.service.SendReport(ctx)

		// then
		require.ErrorIs(t, err, ErrDigestFailed)
		assert.Equal(t, digest_run.StatusFailed, run.Status)
		assert.Equal(t, "535 authentication failed", run.Error)
		runs, _ := f.runs.ListRecent(ctx, 10)
		require.Len(t, runs, 1)
		assert.Equal(t, digest_run.StatusFailed, runs[0].Status)
	})

	t.Run("should fail when attendance data is unavailable", func(t *testing.T) {
		// given
		f := setupService(t, []string{"hr@example.com"})
		f.analysis.SetError(errors.New("failed to fetch attendance data for 2024-06: timeout"))

		// when
		run, err := f.service.SendReport(ctx)

		// then
		require.ErrorIs(t, err, ErrDigestFailed)
		assert.Equal(t, digest_run.StatusFailed, run.Status)
		assert.Empty(t, run.Subject)
		assert.Empty(t, f.sender.Sent())
	})
}

func TestScheduler(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	t.Run("should compute the next Friday morning in the configured zone", func(t *testing.T) {
		// given
		f := setupService(t, nil)
		scheduler, err := NewScheduler("0 9 * * 5", jst, f.service)
		require.NoError(t, err)

		// when
		next := scheduler.Next(time.Date(2024, 6, 19, 12, 0, 0, 0, jst))

		// then
		assert.True(t, time.Date(2024, 6, 21, 9, 0, 0, 0, jst).Equal(next), "next run at %s", next)
	})

	t.Run("should evaluate the expression in the configured zone for times given in UTC", func(t *testing.T) {
		// given
		f := setupService(t, nil)
		scheduler, err := NewScheduler("0 9 * * 5", jst, f.service)
		require.NoError(t, err)

		// when
		next := scheduler.Next(time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC))

		// then
		assert.True(t, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC).Equal(next), "next run at %s", next)
		assert.Equal(t, jst, next.Location())
	})

	t.Run("should reject an invalid expression", func(t *testing.T) {
		f := setupService(t, nil)

		_, err := NewScheduler("every friday", jst, f.service)

		assert.Error(t, err)
	})
}
