package summaries_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/summaries"
)

func week(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFileAppendCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.csv")
	f := summaries.NewFile(path)

	err := f.Append(summaries.Row{
		StartDate: week(2025, 10, 1),
		EndDate:   week(2025, 10, 7),
		ByBrand: map[string]string{
			"OZAS":     "Quiet week with two posts.",
			"PANORAMA": "Engagement doubled on a tenant opening.",
		},
	})
	assert.NoError(t, err)

	in, err := os.Open(path)
	assert.NoError(t, err)
	defer in.Close()

	records, err := csv.NewReader(in).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	// brand columns come after the fixed date columns, alphabetically
	assert.Equal(t, []string{"start_date", "end_date", "OZAS", "PANORAMA"}, records[0])
	assert.Equal(t, []string{"2025-10-01", "2025-10-07", "Quiet week with two posts.", "Engagement doubled on a tenant opening."}, records[1])
}

func TestFileAppendGrowsBrandColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.csv")
	f := summaries.NewFile(path)

	assert.NoError(t, f.Append(summaries.Row{
		StartDate: week(2025, 10, 1),
		EndDate:   week(2025, 10, 7),
		ByBrand:   map[string]string{"OZAS": "first week"},
	}))
	assert.NoError(t, f.Append(summaries.Row{
		StartDate: week(2025, 10, 8),
		EndDate:   week(2025, 10, 14),
		ByBrand:   map[string]string{"OZAS": "second week", "PANORAMA": "new brand"},
	}))

	rows, err := f.Rows()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	// the first week has no cell for the brand that appeared later
	assert.Equal(t, map[string]string{"OZAS": "first week"}, rows[0].ByBrand)
	assert.Equal(t, "new brand", rows[1].ByBrand["PANORAMA"])
	assert.Equal(t, week(2025, 10, 8), rows[1].StartDate)
}

func TestFileRowsMissingFile(t *testing.T) {
	f := summaries.NewFile(filepath.Join(t.TempDir(), "nope.csv"))

	rows, err := f.Rows()
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
