package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/exporter"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printReport writes the first n rows of each table followed by the data
// summary. Null cells print empty, as in the CSV output.
func printReport(w io.Writer, res *pipeline.Result, tables []exporter.Table, n int, written []string) {
	if n > 0 {
		for _, t := range tables {
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s rows)", t.Name, humanize.Comma(int64(len(t.Rows))))))
			fmt.Fprintln(w, previewTable(t, n))
			fmt.Fprintln(w)
		}
	}

	s := res.Summary
	fmt.Fprintln(w, titleStyle.Render("Data summary"))
	fmt.Fprintf(w, "Total cities: %d\n", s.TotalCities)
	if s.TotalDataPoints > 0 {
		fmt.Fprintf(w, "Year range: %d-%d\n", s.FirstYear, s.LastYear)
	} else {
		fmt.Fprintln(w, "Year range: none")
	}
	fmt.Fprintf(w, "Total data points: %s\n", humanize.Comma(int64(s.TotalDataPoints)))
	fmt.Fprintf(w, "CAGR window: %d-%d\n", res.StartYear, res.EndYear)
	for _, path := range written {
		fmt.Fprintf(w, "Wrote %s\n", path)
	}
}

func previewTable(t exporter.Table, n int) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(t.Headers...).
		Rows(t.StringRows(n)...).
		String()
}
