package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Fixed layout of the statistics-office table exports.
const (
	yearHeaderRow    = 6
	quarterHeaderRow = 7
	firstDataRow     = 8
)

// ErrTooFewRows is returned when a table ends before its header block.
var ErrTooFewRows = errors.New("table has fewer rows than the header layout requires")

// TabularSource is one parsed metric file.
type TabularSource struct {
	Metric     domain.Metric
	Series     domain.SeriesByCity
	TimePoints []domain.TimePoint
}

// Cities returns the number of cities with a series.
func (s *TabularSource) Cities() int {
	return len(s.Series)
}

// ParseTabular reads a Latin-1 HTML table export and returns per-city series
// keyed by the time points found in the header rows.
func ParseTabular(r io.Reader, metric domain.Metric, logger *slog.Logger) (*TabularSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := html.Parse(latin1(r))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	rows := tableRows(doc)

	years, quarters, err := locateHeaderRows(rows)
	if err != nil {
		return nil, err
	}
	points := zipTimePoints(years, quarters)

	src := &TabularSource{
		Metric:     metric,
		Series:     make(domain.SeriesByCity),
		TimePoints: points,
	}

	discarded := 0
	for i, cells := range rows[firstDataRow:] {
		if len(cells) <= 1 {
			continue
		}
		city := cells[0]
		if city == "" || IsAggregateLabel(city) {
			continue
		}

		values := make([]domain.Value, 0, len(cells)-1)
		for _, text := range cells[1:] {
			values = append(values, ParseCell(text))
		}
		if len(values) != len(points) {
			discarded++
			logger.Debug("Discarding row with mismatched width",
				slog.String("metric", string(metric)),
				slog.String("city", city),
				slog.Int("row", firstDataRow+i),
				slog.Int("values", len(values)),
				slog.Int("time_points", len(points)))
			continue
		}

		series, err := domain.NewCitySeries(city, metric, points, values)
		if err != nil {
			return nil, err
		}
		src.Series[city] = series
	}

	logger.Info("Parsed tabular source",
		slog.String("metric", string(metric)),
		slog.Int("cities", len(src.Series)),
		slog.Int("time_points", len(points)),
		slog.Int("discarded_rows", discarded))

	return src, nil
}

// locateHeaderRows returns the year and quarter header cells, without the
// leading label column.
func locateHeaderRows(rows [][]string) (years, quarters []string, err error) {
	if len(rows) < firstDataRow {
		return nil, nil, fmt.Errorf("%w: got %d rows, need at least %d", ErrTooFewRows, len(rows), firstDataRow)
	}
	return tail(rows[yearHeaderRow]), tail(rows[quarterHeaderRow]), nil
}

func tail(cells []string) []string {
	if len(cells) == 0 {
		return nil
	}
	return cells[1:]
}

// zipTimePoints pairs header cells by column. Columns where either header is
// blank carry no time point. The quarter is the first token of its cell.
func zipTimePoints(years, quarters []string) []domain.TimePoint {
	n := min(len(years), len(quarters))
	points := make([]domain.TimePoint, 0, n)
	for i := 0; i < n; i++ {
		if years[i] == "" || quarters[i] == "" {
			continue
		}
		points = append(points, domain.NewTimePoint(years[i], strings.Fields(quarters[i])[0]))
	}
	return points
}

// tableRows collects every <tr> in document order as the trimmed text of its
// <td> cells. Header <th> cells are not counted.
func tableRows(doc *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			rows = append(rows, rowCells(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func rowCells(tr *html.Node) []string {
	var cells []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Td {
			cells = append(cells, strings.TrimSpace(textContent(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return cells
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
