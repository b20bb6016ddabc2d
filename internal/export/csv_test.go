package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/cycles/internal/cycle"
	"github.com/pbaille/cycles/internal/domain"
)

func ptr(s string) *string { return &s }

func summary(t *testing.T) *domain.Summary {
	t.Helper()
	s, err := cycle.Analyze([]domain.RawEntry{
		{Day: "2024-01-01", Period: ptr("heavy")},
		{Day: "2024-01-02", Period: ptr("medium")},
		{Day: "2024-01-03", Period: ptr("spotting")},
		{Day: "2024-01-04", Device: ptr("iud_thread_checked")},
		{Day: "2024-01-06", Period: ptr("light")},
		{Day: "2024-01-29", Period: ptr("heavy")},
		{Day: "2024-01-30", Period: ptr("light")},
		{Day: "2024-02-26", Period: ptr("medium")},
	}, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return s
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, summary(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Len(t, header, 3+28)
	assert.Equal(t, []string{"Cycle Start Date", "Cycle Length", "Period Length", "Day 1"}, header[:4])
	assert.Equal(t, "Day 28", header[len(header)-1])

	first := records[1]
	assert.Equal(t, []string{"01/01/2024", "28", "6", "4", "3", "1", "0", "0", "2", "0"}, first[:10])

	second := records[2]
	assert.Equal(t, []string{"29/01/2024", "28", "2", "4", "2", "0"}, second[:6])
}

func TestWriteCSVInsufficientData(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, &domain.Summary{})
	assert.ErrorIs(t, err, cycle.ErrInsufficientData)
	assert.Zero(t, buf.Len())
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "SampleData_processed_07-03-2024.csv", FileName("data/SampleData.cluedata", now))
}
