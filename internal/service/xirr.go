package service

import (
	"math"
	"sort"
	"time"

	"github.com/ameyrk/wealthledger/internal/model"
	"github.com/ameyrk/wealthledger/internal/repository"
)

// cashFlow is one dated flow for the rate-of-return solver. Negative is
// money out (buys), positive is money in (sells, terminal value).
type cashFlow struct {
	date   time.Time
	amount float64
}

// portfolioXIRR computes the annualized internal rate of return over the
// user's full trade log. Each buy contributes a negative flow and each sell
// a positive one at its trade date; the current holdings value is appended
// as a synthetic terminal inflow dated now, simulating full liquidation.
// Returns a percentage, or 0 whenever no meaningful rate exists (no trades,
// no sign change in the flows, or a solver that fails to converge).
func portfolioXIRR(trades []repository.TradeWithSymbol, currentValue float64, now time.Time) float64 {
	if len(trades) == 0 {
		return 0
	}

	flows := make([]cashFlow, 0, len(trades)+1)
	for _, t := range trades {
		amount, _ := t.Total().Float64()
		if t.Type == model.TradeBuy {
			amount = -amount
		}
		flows = append(flows, cashFlow{date: day(t.Date), amount: amount})
	}
	if currentValue > 0 {
		flows = append(flows, cashFlow{date: day(now), amount: currentValue})
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].date.Before(flows[j].date)
	})

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.amount < 0 {
			hasNeg = true
		}
		if f.amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	rate := solveRate(flows)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate * 100
}

// solveRate finds r such that the net present value of the flows is zero,
// discounting by actual day-count year fractions from the earliest flow.
// Newton-Raphson first, bisection when it fails to converge.
func solveRate(flows []cashFlow) float64 {
	const (
		maxIter = 100
		tol     = 1e-7
		minRate = -0.999
		maxRate = 100
	)

	base := flows[0].date
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = f.date.Sub(base).Hours() / 24 / 365.25
	}

	// Start from the simple return. Besides faster convergence, this makes
	// the degenerate all-same-day case (every year fraction zero, NPV flat
	// in the rate) resolve to the true rate instead of an arbitrary guess.
	var invested, received float64
	for _, f := range flows {
		if f.amount < 0 {
			invested -= f.amount
		} else {
			received += f.amount
		}
	}
	rate := 0.1
	if invested > 0 {
		if simple := received/invested - 1; simple > -0.9 && simple < 10 {
			rate = simple
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		var npv, dnpv float64
		for i, f := range flows {
			b := 1 + rate
			if b <= 0 {
				rate = minRate
				b = 1 + rate
			}
			discount := math.Pow(b, years[i])
			if discount == 0 {
				continue
			}
			npv += f.amount / discount
			if years[i] != 0 {
				dnpv -= years[i] * f.amount / (discount * b)
			}
		}

		if math.Abs(npv) < tol {
			return rate
		}
		if dnpv == 0 {
			break
		}

		next := rate - npv/dnpv
		if next < minRate {
			next = minRate
		}
		if next > maxRate {
			next = maxRate
		}
		rate = next
	}

	return bisectRate(flows, years)
}

func bisectRate(flows []cashFlow, years []float64) float64 {
	const (
		maxIter = 200
		tol     = 1e-6
	)

	npvAt := func(rate float64) float64 {
		var sum float64
		for i, f := range flows {
			b := 1 + rate
			if b <= 0 {
				return math.NaN()
			}
			sum += f.amount / math.Pow(b, years[i])
		}
		return sum
	}

	lo, hi := -0.99, 10.0
	npvLo, npvHi := npvAt(lo), npvAt(hi)
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || npvLo*npvHi > 0 {
		return math.NaN()
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.IsNaN(npvMid) {
			return math.NaN()
		}
		if math.Abs(npvMid) < tol {
			return mid
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}
	return (lo + hi) / 2
}
