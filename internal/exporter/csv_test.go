package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	apperrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return &config.Paths{
		BaseDir:    base,
		DataDir:    filepath.Join(base, "data"),
		ReportsDir: filepath.Join(base, "reports"),
		LogsDir:    filepath.Join(base, "logs"),
	}
}

func sampleRecords() []domain.UnifiedRecord {
	return []domain.UnifiedRecord{
		{
			City:           "Ciudad de México",
			TimePoint:      "2015Q1",
			Year:           2015,
			Quarter:        1,
			EmploymentRate: domain.Some(95.2),
			HourlySalary:   domain.Some(42),
			Population:     domain.Some(4000000),
			HousingIndex:   domain.Some(120),
			MonthlySalary:  domain.Some(6720),
			RealWage:       domain.Some(56),
		},
		{
			City:           "León",
			TimePoint:      "2015Q1",
			Year:           2015,
			Quarter:        1,
			EmploymentRate: domain.Some(94),
			HourlySalary:   domain.Null(),
			Population:     domain.Some(1500000),
			HousingIndex:   domain.Null(),
			MonthlySalary:  domain.Null(),
			RealWage:       domain.Null(),
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteTable(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	path, err := writer.WriteTable(RecordsTable(sampleRecords()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, config.CompiledDataCSV), path)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, RecordsHeaders, rows[0])
	assert.Equal(t, []string{"Ciudad de México", "2015Q1", "2015", "1", "95.2", "42", "4000000", "120", "6720", "56"}, rows[1])
	assert.Equal(t, []string{"León", "2015Q1", "2015", "1", "94", "", "1500000", "", "", ""}, rows[2])
}

func TestCSVWriter_WriteTableIsByteIdentical(t *testing.T) {
	writer := NewCSVWriter(testPaths(t))
	table := RecordsTable(sampleRecords())

	path, err := writer.WriteTable(table)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = writer.WriteTable(table)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCSVWriter_EmptyTableWritesHeader(t *testing.T) {
	writer := NewCSVWriter(testPaths(t))

	path, err := writer.WriteTable(CAGRTable(nil))
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, CAGRHeaders, rows[0])
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name:     "headers and records",
			options:  WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "x,y"}}},
			expected: "a,b\n1,\"x,y\"\n",
		},
		{
			name:     "BOM prefix",
			options:  WriteOptions{Headers: []string{"a"}, BOMPrefix: true},
			expected: "\xEF\xBB\xBFa\n",
		},
		{
			name:     "records only",
			options:  WriteOptions{Records: [][]string{{"1"}, {"2"}}},
			expected: "1\n2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := testPaths(t)
			writer := NewCSVWriter(paths)

			require.NoError(t, writer.WriteCSV("nested/out.csv", tt.options))

			content, err := os.ReadFile(filepath.Join(paths.ReportsDir, "nested", "out.csv"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(content))
		})
	}
}

func TestCSVWriter_WriteTableFailure(t *testing.T) {
	paths := testPaths(t)
	// A regular file where the reports directory should be.
	require.NoError(t, os.WriteFile(paths.ReportsDir, []byte("x"), 0o644))

	_, err := NewCSVWriter(paths).WriteTable(GrowthTable(nil))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestTablesLayout(t *testing.T) {
	growth := []domain.GrowthRecord{{
		YearlyAggregate: domain.YearlyAggregate{
			City:       "León",
			Year:       2016,
			Population: domain.Some(4100000),
		},
		PopulationGrowth: domain.Some(2.5),
	}}
	cagr := []domain.CAGRRecord{{
		City:           "León",
		StartYear:      2015,
		EndYear:        2020,
		Span:           5,
		FirstYear:      2015,
		LastYear:       2019,
		PopulationCAGR: domain.Some(1.5),
	}}

	tables := Tables(sampleRecords(), growth, cagr)
	require.Len(t, tables, 3)

	for _, tbl := range tables {
		for _, row := range tbl.Rows {
			assert.Len(t, row, len(tbl.Headers), tbl.Name)
		}
	}

	assert.Equal(t, []string{"León", "2016", "", "", "", "4100000", "", "2.5", "", ""}, tables[1].StringRows(-1)[0])
	assert.Equal(t, []string{"León", "2015", "2020", "5", "1.5", "", "", "2015", "2019"}, tables[2].StringRows(-1)[0])
	assert.Len(t, tables[0].StringRows(1), 1)
	assert.Len(t, tables[0].StringRows(10), 2)
}
