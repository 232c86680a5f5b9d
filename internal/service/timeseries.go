package service

import (
	"math"
	"time"

	"github.com/ameyrk/wealthledger/internal/marketdata"
)

// Time-series primitives for the history rebuild. Series are plain slices
// aligned to a shared calendar-day axis; a NaN sample means the value is
// undefined on that day.

// day truncates a timestamp to midnight UTC, the canonical series key.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dateAxis returns every calendar day from start to end inclusive. Trading
// calendars have gaps; the axis deliberately does not.
func dateAxis(start, end time.Time) []time.Time {
	start, end = day(start), day(end)
	if end.Before(start) {
		return nil
	}

	axis := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		axis = append(axis, d)
	}
	return axis
}

// forwardFill projects sparse price points onto the axis, carrying the last
// known price across gaps. Days before the first point are NaN.
func forwardFill(axis []time.Time, points []marketdata.PricePoint) []float64 {
	byDay := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDay[day(p.Date)] = p.Price
	}

	series := make([]float64, len(axis))
	last := math.NaN()
	for i, d := range axis {
		if v, ok := byDay[d]; ok {
			last = v
		}
		series[i] = last
	}
	return series
}

// cumulate returns the running sum of a delta series.
func cumulate(deltas []float64) []float64 {
	out := make([]float64, len(deltas))
	var sum float64
	for i, d := range deltas {
		sum += d
		out[i] = sum
	}
	return out
}
