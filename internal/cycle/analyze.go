// Package cycle reconstructs cycles from a daily flow log and derives
// statistics and a next-cycle prediction from them.
package cycle

import (
	"errors"
	"time"

	"github.com/pbaille/cycles/internal/domain"
	"github.com/pbaille/cycles/internal/log"
)

// Analyze runs the full pipeline over raw export entries
func Analyze(raw []domain.RawEntry, asOf time.Time) (*domain.Summary, error) {
	res, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return SummarizeEntries(res.Entries, res.Discarded, asOf)
}

// SummarizeEntries segments normalized entries and aggregates the closed
// cycles. Having no closed cycle is not an error: the summary then carries
// the current cycle without stats or prediction.
func SummarizeEntries(entries []domain.Entry, discarded int, asOf time.Time) (*domain.Summary, error) {
	closed, current, err := Segment(entries)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		Cycles:    closed,
		Current:   current,
		Discarded: discarded,
	}

	stats, err := Aggregate(closed)
	if errors.Is(err, ErrInsufficientData) {
		log.Infow("no complete cycles yet", "entries", len(entries))
		return summary, nil
	}
	if err != nil {
		return nil, err
	}
	summary.Stats = &stats

	if current != nil {
		p := Predict(current, stats, asOf)
		summary.Prediction = &p
	}

	log.Debugw("entries summarized", "cycles", stats.NumCycles, "average_cycle_length", stats.AverageCycleLength)
	return summary, nil
}
