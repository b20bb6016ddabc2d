package domain

import "time"

// RawEntry is one record of a tracking export before validation
type RawEntry struct {
	Day      string  `json:"day"`
	Period   *string `json:"period,omitempty"`
	Device   *string `json:"iud,omitempty"`
	Excluded bool    `json:"excluded_cycle,omitempty"`
}

// Kind is the category of an observation
type Kind string

const (
	KindFlow     Kind = "flow"
	KindSpotting Kind = "spotting"
	KindDevice   Kind = "device"
)

// Entry is one normalized observation for a single calendar day
type Entry struct {
	ID     string    `json:"id,omitempty"`
	Date   time.Time `json:"date"`
	Kind   Kind      `json:"kind"`
	Flow   string    `json:"flow,omitempty"`
	Rank   int       `json:"rank"`
	Device string    `json:"device,omitempty"`
}

// IsPrimary reports whether the entry is true flow (light, medium or heavy).
// Only primary entries take part in cycle boundary decisions.
func (e Entry) IsPrimary() bool {
	return e.Kind == KindFlow && e.Rank >= 2
}

// Cycle is a run of entries belonging to one physiological cycle
type Cycle struct {
	StartDate    time.Time `json:"start_date"`
	CycleLength  *int      `json:"cycle_length"`
	PeriodLength int       `json:"period_length"`
	Entries      []Entry   `json:"entries"`
}

// Closed reports whether the cycle has been followed by another one
func (c Cycle) Closed() bool {
	return c.CycleLength != nil
}

// Stats holds aggregate statistics over closed cycles
type Stats struct {
	NumCycles           int     `json:"num_cycles"`
	MaxCycleLength      int     `json:"max_cycle_length"`
	MinCycleLength      int     `json:"min_cycle_length"`
	AverageCycleLength  float64 `json:"average_cycle_length"`
	AveragePeriodLength float64 `json:"average_period_length"`
	CycleLengthStdDev   float64 `json:"cycle_length_stddev"`
}

// Prediction extrapolates the current cycle using the average cycle length
type Prediction struct {
	NextStart     time.Time `json:"next_start"`
	CycleDay      int       `json:"cycle_day"`
	DaysUntilNext int       `json:"days_until_next"`
}

// Summary is the full result of analyzing an entry log
type Summary struct {
	Cycles     []Cycle     `json:"cycles"`
	Current    *Cycle      `json:"current_cycle,omitempty"`
	Stats      *Stats      `json:"stats,omitempty"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Discarded  int         `json:"discarded"`
}

// Import records one ingested export
type Import struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"imported_at"`
	Entries    int       `json:"entries"`
	Discarded  int       `json:"discarded"`
}
