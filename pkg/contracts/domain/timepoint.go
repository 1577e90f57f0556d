package domain

import (
	"regexp"
	"strconv"
)

// TimePoint identifies one quarterly observation period, e.g. "2015Q3".
// The year is four digits and the quarter a single digit, so string order
// and chronological order coincide.
type TimePoint string

var timePointPattern = regexp.MustCompile(`^(\d{4})Q(\d)`)

// NewTimePoint joins a year and quarter token into a TimePoint.
func NewTimePoint(year, quarter string) TimePoint {
	return TimePoint(year + "Q" + quarter)
}

// YearQuarter splits the time point into its numeric parts. ok is false when
// the token does not match the four-digit-year, "Q", one-digit-quarter layout.
func (tp TimePoint) YearQuarter() (year, quarter int, ok bool) {
	m := timePointPattern.FindStringSubmatch(string(tp))
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	quarter, _ = strconv.Atoi(m[2])
	return year, quarter, true
}

// String returns the raw token.
func (tp TimePoint) String() string {
	return string(tp)
}
