// Package extract turns the rendered reservation page into Reservation
// records. The page has no stable schema, so extraction cascades through an
// ordered list of strategies (table layouts first, then list-like layouts)
// and falls back to a single diagnostic record when every tier comes up
// empty.
package extract

import (
	"fmt"
	"log"

	"github.com/PuerkitoBio/goquery"

	"reservation-monitor-backend/internal/model"
)

// ColumnOffset controls where data columns start within a table row.
type ColumnOffset int

const (
	// OffsetAuto infers the offset per row: when the first cell holds the
	// selection checkbox, data columns start at index 1.
	OffsetAuto ColumnOffset = -1
	// OffsetNone forces data columns to start at the first cell.
	OffsetNone ColumnOffset = 0
	// OffsetSkipFirst forces data columns to start at the second cell.
	OffsetSkipFirst ColumnOffset = 1
)

// Options configures the extraction cascade. Zero values fall back to the
// selectors and keyword sets observed on the facility page.
type Options struct {
	TableSelectors      []string
	ListSelectors       []string
	ReservedKeywords    []string
	UnavailableKeywords []string
	DomainKeywords      []string
	ColumnOffset        ColumnOffset
}

var (
	defaultTableSelectors = []string{
		".regist_list",
		"table.regist_list",
		".regist_list table",
	}
	defaultListSelectors = []string{
		".regist_list",
		".regist_list .list-item",
		".reservation-list",
		".list-item",
		"[class*='reservation']",
		"[class*='item']",
		"[class*='list']",
		".time-slot",
		"[data-time]",
	}
	// Whole-row text markers that mean the slot is already taken.
	defaultReservedKeywords = []string{"예약됨", "예약완료", "불가", "불가능"}
	defaultUnavailableFees  = []string{"예약불가", "불가"}
	// Markers that qualify a list item as reservation data at all.
	defaultDomainKeywords = []string{"시", "분", "원", "팀", "예약"}
)

// noDataNote is carried by the diagnostic record when no tier found anything.
const noDataNote = "페이지 구조를 확인할 수 없습니다"

// RowSkip records why a single row produced no record.
type RowSkip struct {
	Index  int
	Reason string
}

// Report describes one extraction run for observability: which strategy
// produced the records and what was skipped along the way.
type Report struct {
	Strategy string
	Rows     int
	Skips    []RowSkip
}

func (r *Report) skip(index int, format string, args ...any) {
	r.Skips = append(r.Skips, RowSkip{Index: index, Reason: fmt.Sprintf(format, args...)})
}

// strategy is one structural hypothesis about the page. It returns nil when
// the structure it probes for is absent; that is a miss, not an error.
type strategy struct {
	name string
	run  func(doc *goquery.Document, date string, rep *Report) []model.Reservation
}

// Extractor runs the strategy cascade over a parsed page.
type Extractor struct {
	opts       Options
	strategies []strategy
}

// New creates an Extractor, filling unset options with the page defaults.
func New(opts Options) *Extractor {
	if len(opts.TableSelectors) == 0 {
		opts.TableSelectors = defaultTableSelectors
	}
	if len(opts.ListSelectors) == 0 {
		opts.ListSelectors = defaultListSelectors
	}
	if len(opts.ReservedKeywords) == 0 {
		opts.ReservedKeywords = defaultReservedKeywords
	}
	if len(opts.UnavailableKeywords) == 0 {
		opts.UnavailableKeywords = defaultUnavailableFees
	}
	if len(opts.DomainKeywords) == 0 {
		opts.DomainKeywords = defaultDomainKeywords
	}

	e := &Extractor{opts: opts}
	e.strategies = []strategy{
		{name: "table", run: e.extractTable},
		{name: "list", run: e.extractList},
	}
	return e
}

// Extract walks the strategy cascade for one date. The returned slice is
// never empty: when every strategy misses, it holds exactly one diagnostic
// record so the caller can tell "nothing scheduled" from "nothing found".
func (e *Extractor) Extract(doc *goquery.Document, date string) ([]model.Reservation, Report) {
	var rep Report
	for _, s := range e.strategies {
		records := s.run(doc, date, &rep)
		if len(records) > 0 {
			rep.Strategy = s.name
			rep.Rows = len(records)
			for _, sk := range rep.Skips {
				log.Printf("extract: date %s row %d skipped: %s", date, sk.Index, sk.Reason)
			}
			return records, rep
		}
	}

	rep.Strategy = "none"
	log.Printf("extract: date %s matched no known structure, emitting diagnostic record", date)
	return []model.Reservation{{
		Date:   date,
		Status: model.StatusNoData,
		Note:   noDataNote,
	}}, rep
}

// ErrorRecord builds the synthetic record for a date whose extraction failed
// before any structure could be probed (navigation fault, dead page handle).
func ErrorRecord(date string, err error) model.Reservation {
	return model.Reservation{
		Date:   date,
		Status: model.StatusError,
		Note:   err.Error(),
	}
}
