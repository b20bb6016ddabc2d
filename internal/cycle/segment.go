package cycle

import (
	"github.com/pbaille/cycles/internal/domain"
)

// GapDays is the largest gap, inclusive, between two flow entries of the
// same cycle.
const GapDays = 5

// segmenter accumulates entries into the open cycle and emits a closed
// cycle whenever a flow entry lands outside the gap window.
type segmenter struct {
	closed []domain.Cycle
	open   *domain.Cycle
}

// Segment partitions time-ordered entries into closed cycles plus the
// current, still open cycle. The current cycle is nil only when entries
// is empty.
func Segment(entries []domain.Entry) ([]domain.Cycle, *domain.Cycle, error) {
	var s segmenter
	for _, e := range entries {
		if err := s.add(e); err != nil {
			return nil, nil, err
		}
	}
	return s.closed, s.current(), nil
}

func (s *segmenter) add(e domain.Entry) error {
	if s.open == nil {
		s.start(e)
		return nil
	}

	// spotting and device markers never decide a boundary
	if !e.IsPrimary() {
		s.open.Entries = append(s.open.Entries, e)
		return nil
	}

	last, err := lastPrimary(s.open.Entries)
	if err != nil {
		return err
	}
	if daysBetween(last.Date, e.Date) <= GapDays {
		s.open.Entries = append(s.open.Entries, e)
		return nil
	}

	cycleLength := daysBetween(s.open.StartDate, e.Date)
	s.open.CycleLength = &cycleLength
	s.open.PeriodLength = daysBetween(s.open.StartDate, last.Date) + 1
	s.closed = append(s.closed, *s.open)

	s.start(e)
	return nil
}

func (s *segmenter) start(e domain.Entry) {
	s.open = &domain.Cycle{
		StartDate: e.Date,
		Entries:   []domain.Entry{e},
	}
}

// current returns the open cycle. Its period length is its entry count.
func (s *segmenter) current() *domain.Cycle {
	if s.open == nil {
		return nil
	}
	s.open.PeriodLength = len(s.open.Entries)
	return s.open
}

// lastPrimary scans backward for the most recent flow entry
func lastPrimary(entries []domain.Entry) (domain.Entry, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsPrimary() {
			return entries[i], nil
		}
	}
	return domain.Entry{}, ErrEmptyCycle
}
