package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ameyrk/wealthledger/internal/marketdata"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", s, err)
	}
	return d
}

func TestDay(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Failed to load timezone: %v", err)
	}

	// 01:30 IST is still 20:00 UTC of the previous day; the series key is
	// the UTC calendar day.
	local := time.Date(2024, 3, 15, 1, 30, 0, 0, ist)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), day(local))

	noon := time.Date(2024, 3, 15, 12, 45, 9, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), day(noon))
}

func TestDateAxis(t *testing.T) {
	t.Run("inclusive of both endpoints", func(t *testing.T) {
		axis := dateAxis(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-05"))
		assert.Len(t, axis, 5)
		assert.Equal(t, mustDate(t, "2024-01-01"), axis[0])
		assert.Equal(t, mustDate(t, "2024-01-05"), axis[4])
	})

	t.Run("single day", func(t *testing.T) {
		axis := dateAxis(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-01"))
		assert.Len(t, axis, 1)
	})

	t.Run("spans month boundary without gaps", func(t *testing.T) {
		axis := dateAxis(mustDate(t, "2024-01-30"), mustDate(t, "2024-02-02"))
		assert.Len(t, axis, 4)
		for i := 1; i < len(axis); i++ {
			assert.Equal(t, axis[i-1].AddDate(0, 0, 1), axis[i])
		}
	})

	t.Run("end before start is empty", func(t *testing.T) {
		assert.Nil(t, dateAxis(mustDate(t, "2024-01-05"), mustDate(t, "2024-01-01")))
	})
}

func TestForwardFill(t *testing.T) {
	axis := dateAxis(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-06"))
	points := []marketdata.PricePoint{
		{Date: mustDate(t, "2024-01-02"), Price: 100},
		{Date: mustDate(t, "2024-01-05"), Price: 110},
	}

	series := forwardFill(axis, points)

	assert.True(t, math.IsNaN(series[0]), "day before first sample must be undefined")
	assert.Equal(t, 100.0, series[1])
	assert.Equal(t, 100.0, series[2], "weekend gap carries last known price")
	assert.Equal(t, 100.0, series[3])
	assert.Equal(t, 110.0, series[4])
	assert.Equal(t, 110.0, series[5])
}

func TestForwardFillNoPoints(t *testing.T) {
	axis := dateAxis(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-03"))
	series := forwardFill(axis, nil)

	for i := range series {
		assert.True(t, math.IsNaN(series[i]))
	}
}

func TestCumulate(t *testing.T) {
	assert.Equal(t, []float64{10, 10, 15, 7}, cumulate([]float64{10, 0, 5, -8}))
	assert.Empty(t, cumulate(nil))
}
