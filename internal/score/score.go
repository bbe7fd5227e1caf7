// Package score computes the demand and competition metrics from source
// output. All functions are pure and total: malformed or empty input
// yields the documented default, never a panic.
package score

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/prodscout/prodscout/internal/research"
)

// window is the trailing span, in data points, of one comparison period.
// Trend series are weekly, so 52 points approximate one year.
const window = 52

// epsilon replaces a zero prior-period mean so the growth ratio stays
// defined.
const epsilon = 1e-6

// Demand returns the year-over-year growth ratio of a trend series:
// the mean of the last 52 points against the mean of the first 52 of the
// last 104 points, divided by the prior mean, rounded to 2 decimal
// places. An empty series returns 0.0.
//
// This is a crude trailing-window ratio, not a forecast. Series shorter
// than two full windows overlap; 52 points or fewer compare identical
// windows and read 0.0.
func Demand(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	n := len(values)
	lastStart := n - window
	if lastStart < 0 {
		lastStart = 0
	}
	prevStart := n - 2*window
	if prevStart < 0 {
		prevStart = 0
	}
	prevEnd := prevStart + window
	if prevEnd > n {
		prevEnd = n
	}

	lastMean := mean(values[lastStart:])
	prevMean := mean(values[prevStart:prevEnd])

	denom := prevMean
	if denom == 0 {
		denom = epsilon
	}
	return round2((lastMean - prevMean) / denom)
}

// Competition returns the median review count across marketplace listing
// rows, truncated to an integer. No rows yields 0. An even row count uses
// the conventional median (mean of the two middle values) before
// truncation.
func Competition(reviews []float64) int {
	if len(reviews) == 0 {
		return 0
	}
	sorted := make([]float64, len(reviews))
	copy(sorted, reviews)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	var median float64
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return int(median)
}

// Series extracts the value column of a trend interest table: the second
// column, matching the (date, value) layout the trend source emits. Cells
// that do not parse as numbers are skipped.
func Series(t research.Table) []float64 {
	const valueColumn = 1
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) <= valueColumn {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[valueColumn]), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

// Reviews extracts the "reviews" column of a marketplace listing table.
// Missing column or unparseable cells contribute nothing.
func Reviews(t research.Table) []float64 {
	col := -1
	for i, name := range t.Columns {
		if strings.EqualFold(name, "reviews") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) <= col {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
