package digest

import (
	"testing"

	"github.com/kotlens/kotlens/internal/test_utils"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRendererImpl_Render(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	t.Run("should render every section of a busy month", func(t *testing.T) {
		// given
		d := Build(reportWith(t, busyRecords()...), generatedAt)

		// when
		html, err := renderer.Render(d)

		// then
		require.NoError(t, err)
		assert.Contains(t, html, "2024年6月度 | 年度残り9ヶ月")
		assert.Contains(t, html, "🚨 違反リスク")
		assert.Contains(t, html, "📋 経過観察")
		assert.Contains(t, html, "250.0h")
		assert.Contains(t, html, "有給5日取得義務")
		assert.Contains(t, html, "2024-07-25（残り34日）")
		assert.Contains(t, html, "width: 85%")
		assert.Contains(t, html, "2024/06/21 09:00")
		assert.NotContains(t, html, "全社員が36協定の範囲内です")
	})

	t.Run("should show the all clear message without alerts", func(t *testing.T) {
		// given
		d := Build(reportWith(t, test_utils.OvertimeRecord("e2", 2024, 6, 10)), generatedAt)

		// when
		html, err := renderer.Render(d)

		// then
		require.NoError(t, err)
		assert.Contains(t, html, "全社員が36協定の範囲内です")
		assert.NotContains(t, html, "振替休日 未消化")
	})

	t.Run("should escape employee names", func(t *testing.T) {
		// given
		report := reportWith(t, test_utils.OvertimeRecord("e1", 2024, 6, 10))
		report.CurrentMonth[0].Employee = attendance.Employee{Key: "e1", LastName: "<script>"}
		d := Build(report, generatedAt)

		// when
		html, err := renderer.Render(d)

		// then
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})
}
