package dataprocessing

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// MissingMarker is the literal the statistics office writes into cells that
// have no observation.
const MissingMarker = "No aplica"

// aggregateLabels are the row names of the all-cities total, which is not a city.
var aggregateLabels = map[string]struct{}{
	"Áreas metropolitanas": {},
	"Metropolitan areas":   {},
}

// IsAggregateLabel reports whether name is the aggregate "all areas" row.
func IsAggregateLabel(name string) bool {
	_, ok := aggregateLabels[name]
	return ok
}

// ParseCell converts source cell text into a Value. Decimal commas are
// accepted. The missing marker, blank text and anything unparseable are null.
func ParseCell(text string) domain.Value {
	text = strings.TrimSpace(text)
	if text == MissingMarker {
		return domain.Null()
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return domain.Null()
	}
	return domain.Some(f)
}

// latin1 decodes an ISO-8859-1 byte stream into UTF-8.
func latin1(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}
