package cycle

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pbaille/cycles/internal/domain"
)

// Aggregate computes statistics over closed cycles. It fails with
// ErrInsufficientData when there are none.
func Aggregate(closed []domain.Cycle) (domain.Stats, error) {
	if len(closed) == 0 {
		return domain.Stats{}, ErrInsufficientData
	}

	cycleLengths := make([]float64, 0, len(closed))
	periodLengths := make([]float64, 0, len(closed))
	var stats domain.Stats

	for _, c := range closed {
		if c.CycleLength == nil {
			continue
		}
		n := *c.CycleLength
		if len(cycleLengths) == 0 || n > stats.MaxCycleLength {
			stats.MaxCycleLength = n
		}
		if len(cycleLengths) == 0 || n < stats.MinCycleLength {
			stats.MinCycleLength = n
		}
		cycleLengths = append(cycleLengths, float64(n))
		periodLengths = append(periodLengths, float64(c.PeriodLength))
	}
	if len(cycleLengths) == 0 {
		return domain.Stats{}, ErrInsufficientData
	}

	stats.NumCycles = len(cycleLengths)
	stats.AverageCycleLength = stat.Mean(cycleLengths, nil)
	stats.AveragePeriodLength = stat.Mean(periodLengths, nil)
	if len(cycleLengths) > 1 {
		stats.CycleLengthStdDev = stat.StdDev(cycleLengths, nil)
	}

	return stats, nil
}

// Predict extrapolates the start of the next cycle from the current cycle's
// start and the average cycle length, relative to asOf.
func Predict(current *domain.Cycle, stats domain.Stats, asOf time.Time) domain.Prediction {
	today := dateOnly(asOf)
	next := current.StartDate.AddDate(0, 0, int(math.Round(stats.AverageCycleLength)))

	p := domain.Prediction{
		NextStart:     next,
		DaysUntilNext: daysBetween(today, next),
	}
	if !today.Before(current.StartDate) {
		p.CycleDay = daysBetween(current.StartDate, today) + 1
	}
	return p
}
