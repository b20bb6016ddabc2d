package cycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/pbaille/cycles/internal/domain"
	"github.com/pbaille/cycles/internal/log"
)

// Flow intensity ranks. Spotting is the only flow level that is not primary.
var intensityRanks = map[string]int{
	"spotting": 1,
	"light":    2,
	"medium":   3,
	"heavy":    4,
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

var (
	errMissingDate = errors.New("missing date")
	errOutOfOrder  = errors.New("date precedes previous entry")
)

// NormalizeResult holds the retained entries and how many were dropped
type NormalizeResult struct {
	Entries   []domain.Entry
	Discarded int
}

// Normalize validates raw entries and annotates them with a rank and a
// calendar date. Entries with neither a flow nor a device marker, and
// entries flagged as excluded, are discarded and counted. Any invalid
// retained entry rejects the whole batch.
func Normalize(raw []domain.RawEntry) (NormalizeResult, error) {
	var res NormalizeResult
	res.Entries = make([]domain.Entry, 0, len(raw))

	var prev time.Time
	for i, r := range raw {
		if r.Excluded || (r.Period == nil && r.Device == nil) {
			res.Discarded++
			continue
		}

		date, err := ParseDate(r.Day)
		if err != nil {
			return NormalizeResult{}, &MalformedInputError{Index: i, Day: r.Day, Err: err}
		}
		if date.Before(prev) {
			return NormalizeResult{}, &MalformedInputError{Index: i, Day: r.Day, Err: errOutOfOrder}
		}
		prev = date

		entry := domain.Entry{Date: date, Kind: domain.KindDevice}
		if r.Device != nil {
			entry.Device = *r.Device
		}
		if r.Period != nil {
			rank, ok := intensityRanks[*r.Period]
			if !ok {
				return NormalizeResult{}, &UnknownIntensityError{Index: i, Token: *r.Period}
			}
			entry.Flow = *r.Period
			entry.Rank = rank
			entry.Kind = domain.KindFlow
			if rank == 1 {
				entry.Kind = domain.KindSpotting
			}
		}

		res.Entries = append(res.Entries, entry)
	}

	log.Infow("entries normalized", "retained", len(res.Entries), "discarded", res.Discarded)
	return res, nil
}

// ParseDate parses a day field into a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errMissingDate
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole days from a to b; both must be calendar dates
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
