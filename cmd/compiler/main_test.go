package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	apperrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/shared/testutil"
)

// writeConfig writes a config file pointing at fixture sources and returns
// its path and the reports directory.
func writeConfig(t *testing.T, sources config.SourcesConfig) (string, string) {
	t.Helper()
	base := t.TempDir()
	yaml := fmt.Sprintf(`sources:
  employment_file: %q
  salary_file: %q
  population_file: %q
  housing_file: %q
analysis:
  start_year: 2015
  end_year: 2016
logging:
  level: error
paths:
  base_dir: %q
  reports_dir: out
`, sources.EmploymentFile, sources.SalaryFile, sources.PopulationFile, sources.HousingFile, base)

	path := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path, filepath.Join(base, "out")
}

func TestRunWritesReports(t *testing.T) {
	cfgPath, out := writeConfig(t, testutil.WriteSources(t))
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-config", cfgPath}, &stdout, &stderr))

	for _, name := range []string{config.CompiledDataCSV, config.YearlyGrowthCSV, config.CAGRDataCSV, config.WorkbookXLSX} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	report := stdout.String()
	assert.Contains(t, report, "city_data (16 rows)")
	assert.Contains(t, report, "yearly_growth (2 rows)")
	assert.Contains(t, report, "cagr (2 rows)")
	assert.Contains(t, report, "Ciudad de México")
	assert.Contains(t, report, "Total cities: 2")
	assert.Contains(t, report, "Year range: 2015-2016")
	assert.Contains(t, report, "Total data points: 16")
	assert.Contains(t, report, "CAGR window: 2015-2016")
}

func TestRunFlagOverrides(t *testing.T) {
	cfgPath, out := writeConfig(t, testutil.WriteSources(t))
	var stdout, stderr bytes.Buffer

	args := []string{"-config", cfgPath, "-no-xlsx", "-preview", "0"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	assert.FileExists(t, filepath.Join(out, config.CompiledDataCSV))
	assert.NoFileExists(t, filepath.Join(out, config.WorkbookXLSX))
	assert.NotContains(t, stdout.String(), "city_data (")
	assert.Contains(t, stdout.String(), "Total cities: 2")
}

func TestRunMissingSource(t *testing.T) {
	sources := testutil.WriteSources(t)
	require.NoError(t, os.Remove(sources.HousingFile))
	cfgPath, out := writeConfig(t, sources)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-config", cfgPath}, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
	assert.NoFileExists(t, filepath.Join(out, config.CompiledDataCSV), "no partial output")
}

func TestRunRejectsBadArguments(t *testing.T) {
	cfgPath, _ := writeConfig(t, testutil.WriteSources(t))

	tests := []struct {
		name string
		args []string
	}{
		{"non-numeric year", []string{"-config", cfgPath, "-start", "abc"}},
		{"end before start", []string{"-config", cfgPath, "-start", "2020", "-end", "2015"}},
		{"unknown flag", []string{"-config", cfgPath, "-verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunInvalidConfigIsConfigError(t *testing.T) {
	cfgPath, _ := writeConfig(t, testutil.WriteSources(t))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "-start", "2020", "-end", "2015"}, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "City Growth Compiler v")
}
