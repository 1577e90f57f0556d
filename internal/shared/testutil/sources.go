package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
)

// Years and quarters covered by WriteSources.
var (
	SourceYears    = []string{"2015", "2015", "2015", "2015", "2016", "2016", "2016", "2016"}
	SourceQuarters = []string{"1", "2", "3", "4", "1", "2", "3", "4"}
)

// WriteLatin1 encodes content as ISO-8859-1 and writes it under dir.
func WriteLatin1(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TableHTML renders a survey export: six preamble rows, the year and quarter
// header rows, then the data rows.
func TableHTML(years, quarters []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"iso-8859-1\"></head><body><table>\n")
	for i := 0; i < 6; i++ {
		b.WriteString("<tr><td>Encuesta Nacional de Ocupación y Empleo</td></tr>\n")
	}
	all := append([][]string{
		append([]string{"Año"}, years...),
		append([]string{"Trimestre"}, quarters...),
	}, rows...)
	for _, r := range all {
		b.WriteString("<tr>")
		for _, c := range r {
			b.WriteString("<td>" + c + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>\n")
	return b.String()
}

// HousingCSV renders a semicolon-delimited housing index export.
func HousingCSV(rows ...string) string {
	return "Global;Estado;Año;Trimestre;Indice\n" + strings.Join(rows, "\n") + "\n"
}

func quarterly(y2015, y2016 string) []string {
	return []string{y2015, y2015, y2015, y2015, y2016, y2016, y2016, y2016}
}

// WriteSources writes a small but complete set of the four source files into
// a temporary directory and returns their paths.
//
// Ciudad de México earns 42 per hour with a housing index of 120 in 2015,
// and its population grows from 4,000,000 to 4,100,000. León has one
// "No aplica" salary cell in 2016Q1.
func WriteSources(t *testing.T) config.SourcesConfig {
	t.Helper()
	dir := t.TempDir()

	employment := TableHTML(SourceYears, SourceQuarters,
		append([]string{"Ciudad de México"}, quarterly("95,1", "95,6")...),
		append([]string{"León"}, quarterly("94", "95")...),
		append([]string{"Áreas metropolitanas"}, quarterly("90", "91")...),
	)
	leonSalary := quarterly("40", "44")
	leonSalary[4] = "No aplica"
	salary := TableHTML(SourceYears, SourceQuarters,
		append([]string{"Ciudad de México"}, quarterly("42", "44,1")...),
		append([]string{"León"}, leonSalary...),
	)
	population := TableHTML(SourceYears, SourceQuarters,
		append([]string{"Ciudad de México"}, quarterly("4000000", "4100000")...),
		append([]string{"León"}, quarterly("1500000", "1530000")...),
	)

	var housing []string
	for _, h := range []struct{ id, y2015, y2016 string }{
		{"ZM Valle México", "120", "126"},
		{"ZM León", "100", "110"},
		{"Nacional", "100", "100"},
	} {
		for i, year := range SourceYears {
			index := h.y2015
			if year == "2016" {
				index = h.y2016
			}
			housing = append(housing, fmt.Sprintf("%s;X;%s;%s;%s", h.id, year, SourceQuarters[i], index))
		}
	}

	return config.SourcesConfig{
		EmploymentFile: WriteLatin1(t, dir, "employment.xls", employment),
		SalaryFile:     WriteLatin1(t, dir, "salary.xls", salary),
		PopulationFile: WriteLatin1(t, dir, "population.xls", population),
		HousingFile:    WriteLatin1(t, dir, "housing.csv", HousingCSV(housing...)),
	}
}
