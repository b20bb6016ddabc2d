// Package export writes cycle summaries as tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/cycles/internal/cycle"
	"github.com/pbaille/cycles/internal/domain"
)

const dateLayout = "02/01/2006"

// WriteCSV writes one row per closed cycle: start date, cycle length,
// period length, then one cell per cycle day holding the intensity rank
// logged that day (0 when nothing was logged).
func WriteCSV(w io.Writer, s *domain.Summary) error {
	if s.Stats == nil {
		return cycle.ErrInsufficientData
	}
	width := s.Stats.MaxCycleLength

	cw := csv.NewWriter(w)

	header := make([]string, 0, width+3)
	header = append(header, "Cycle Start Date", "Cycle Length", "Period Length")
	for i := 1; i <= width; i++ {
		header = append(header, fmt.Sprintf("Day %d", i))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range s.Cycles {
		if err := cw.Write(row(c, width)); err != nil {
			return fmt.Errorf("write cycle %s: %w", c.StartDate.Format(dateLayout), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func row(c domain.Cycle, width int) []string {
	days := DayRanks(c, width)

	cells := make([]string, 0, width+3)
	cells = append(cells,
		c.StartDate.Format(dateLayout),
		strconv.Itoa(*c.CycleLength),
		strconv.Itoa(c.PeriodLength),
	)
	for _, rank := range days {
		cells = append(cells, strconv.Itoa(rank))
	}
	return cells
}

// DayRanks lays a cycle's entries out by cycle day. Days past the end of
// the slice are dropped; later entries on the same day win.
func DayRanks(c domain.Cycle, width int) []int {
	days := make([]int, width)
	for _, e := range c.Entries {
		n := int(e.Date.Sub(c.StartDate).Hours() / 24)
		if n >= 0 && n < width {
			days[n] = e.Rank
		}
	}
	return days
}

// FileName names the CSV written for an export file
func FileName(source string, now time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return fmt.Sprintf("%s_processed_%s.csv", stem, now.Format("02-01-2006"))
}
