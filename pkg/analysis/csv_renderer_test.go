package analysis

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/kotlens/kotlens/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvReportRendererImpl_RenderReport(t *testing.T) {
	// given
	result, err := Analyze(test_utils.Employees(), sampleRecords(), june2024, today)
	require.NoError(t, err)
	renderer := NewCsvReportRenderer()

	// when
	out, err := renderer.RenderReport(Report{Result: result})

	// then
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	assert.Len(t, header, 11+12)
	assert.Equal(t, "2024-04", header[11])
	assert.Equal(t, "2025-03", header[len(header)-1])

	assert.Equal(t, []string{
		"0001", "佐藤 花子", "開発部", "warning",
		"190.0", "26.4", "760.0", "90.0",
		"3", "", "",
		"50.0", "50.0", "90.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0",
	}, rows[1])
	assert.Equal(t, "0002", rows[2][0])
	assert.Equal(t, "0003", rows[3][0])
}

func TestCsvReportRendererImpl_RenderEmptyReport(t *testing.T) {
	result, err := Analyze(test_utils.Employees(), nil, june2024, today)
	require.NoError(t, err)

	out, err := NewCsvReportRenderer().RenderReport(Report{Result: result})

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
