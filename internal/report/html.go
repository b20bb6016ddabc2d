// Package report renders cycle summaries as a standalone HTML document.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pbaille/cycles/internal/domain"
	"github.com/pbaille/cycles/internal/export"
)

const dateLayout = "02/01/2006"

const stylesheet = `
body { font-family: Arial, sans-serif; margin: 2em; }
h1, .generated { text-align: center; }
table { border-collapse: collapse; margin-bottom: 1em; }
td, th { border: 1px solid #ccc; padding: 2px 6px; font-size: 12px; }
td.day { width: 10px; padding: 0; }
td.r1 { background: #f6c6c6; }
td.r2 { background: #ec8c8c; }
td.r3 { background: #d94848; }
td.r4 { background: #a31515; }
`

// Options controls the report header
type Options struct {
	Title     string
	Generated time.Time
}

// Render writes the report for s to w
func Render(w io.Writer, s *domain.Summary, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Cycle Report"
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := el(atom.Head,
		el(atom.Meta, attr("charset", "utf-8")),
		el(atom.Title, text(opts.Title)),
		el(atom.Style, text(stylesheet)),
	)
	body := el(atom.Body,
		el(atom.H1, text(opts.Title)),
		el(atom.P, attr("class", "generated"), text("Generated "+opts.Generated.Format(dateLayout))),
		summarySection(s),
		currentSection(s),
		detailSection(s),
	)
	doc.AppendChild(el(atom.Html, attr("lang", "en"), head, body))

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func summarySection(s *domain.Summary) *html.Node {
	sec := el(atom.Section, attr("id", "summary"), el(atom.H2, text("Summary")))
	if s.Stats == nil {
		sec.AppendChild(el(atom.P, text("Not enough data yet: no complete cycles.")))
		return sec
	}

	st := s.Stats
	sec.AppendChild(el(atom.Table,
		labelRow("Complete cycles", strconv.Itoa(st.NumCycles)),
		labelRow("Average cycle length", fmt.Sprintf("%.1f days", st.AverageCycleLength)),
		labelRow("Shortest / longest cycle", fmt.Sprintf("%d / %d days", st.MinCycleLength, st.MaxCycleLength)),
		labelRow("Cycle length deviation", fmt.Sprintf("%.1f days", st.CycleLengthStdDev)),
		labelRow("Average period length", fmt.Sprintf("%.1f days", st.AveragePeriodLength)),
	))
	return sec
}

func currentSection(s *domain.Summary) *html.Node {
	sec := el(atom.Section, attr("id", "current"), el(atom.H2, text("Current Cycle")))
	if s.Current == nil {
		sec.AppendChild(el(atom.P, text("No entries logged.")))
		return sec
	}

	table := el(atom.Table,
		labelRow("Started", s.Current.StartDate.Format(dateLayout)),
		labelRow("Entries", strconv.Itoa(len(s.Current.Entries))),
	)
	if p := s.Prediction; p != nil {
		table.AppendChild(labelRow("Cycle day", strconv.Itoa(p.CycleDay)))
		table.AppendChild(labelRow("Next cycle expected", p.NextStart.Format(dateLayout)))
		table.AppendChild(labelRow("Days until next cycle", strconv.Itoa(p.DaysUntilNext)))
	}
	sec.AppendChild(table)
	return sec
}

func detailSection(s *domain.Summary) *html.Node {
	sec := el(atom.Section, attr("id", "detail"), el(atom.H2, text("Cycle Detail")))
	if len(s.Cycles) == 0 {
		return sec
	}

	width := 0
	if s.Stats != nil {
		width = s.Stats.MaxCycleLength
	}

	table := el(atom.Table, el(atom.Tr,
		el(atom.Th, text("Cycle")),
		el(atom.Th, text("Start")),
		el(atom.Th, text("Length")),
		el(atom.Th, text("Period")),
		el(atom.Th, attr("colspan", strconv.Itoa(width)), text("Days")),
	))
	for i, c := range s.Cycles {
		tr := el(atom.Tr, attr("class", "cycle"),
			el(atom.Td, text(strconv.Itoa(i+1))),
			el(atom.Td, text(c.StartDate.Format(dateLayout))),
			el(atom.Td, text(strconv.Itoa(*c.CycleLength))),
			el(atom.Td, text(strconv.Itoa(c.PeriodLength))),
		)
		for _, rank := range export.DayRanks(c, *c.CycleLength) {
			tr.AppendChild(el(atom.Td, attr("class", fmt.Sprintf("day r%d", rank))))
		}
		table.AppendChild(tr)
	}
	sec.AppendChild(table)
	return sec
}

func labelRow(label, value string) *html.Node {
	return el(atom.Tr, el(atom.Th, text(label)), el(atom.Td, text(value)))
}

// el builds an element; html.Attribute arguments become attributes and
// nodes become children.
func el(a atom.Atom, parts ...interface{}) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for _, p := range parts {
		switch v := p.(type) {
		case html.Attribute:
			n.Attr = append(n.Attr, v)
		case *html.Node:
			n.AppendChild(v)
		}
	}
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
