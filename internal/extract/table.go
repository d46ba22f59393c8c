package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/normalize"
)

// extractTable probes the table selectors in priority order and parses the
// first table found. A selector that matches nothing is a structural miss;
// the next one is tried.
func (e *Extractor) extractTable(doc *goquery.Document, date string, rep *Report) []model.Reservation {
	var table *goquery.Selection
	for _, sel := range e.opts.TableSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		// The container may be the table itself or hold it.
		if goquery.NodeName(container) == "table" {
			table = container
		} else if t := container.Find("table").First(); t.Length() > 0 {
			table = t
		}
		if table != nil {
			break
		}
	}
	if table == nil {
		return nil
	}

	rows := table.Find("tr")
	var records []model.Reservation
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 && row.Find("th").Length() > 0 {
			return // header row
		}
		rec, reason := e.parseRow(row, date)
		if reason != "" {
			rep.skip(i, "%s", reason)
			return
		}
		records = append(records, rec)
	})
	return records
}

// parseRow reads one data row. It returns a non-empty reason instead of a
// record when the row must be skipped; a fault in a single row never aborts
// the surrounding extraction.
func (e *Extractor) parseRow(row *goquery.Selection, date string) (rec model.Reservation, reason string) {
	defer func() {
		if r := recover(); r != nil {
			rec, reason = model.Reservation{}, fmt.Sprintf("row fault: %v", r)
		}
	}()

	cells := row.Find("td")
	// Minimum viable schema: selector, time, fee, team (reservator optional).
	if cells.Length() < 4 {
		return model.Reservation{}, "fewer than 4 cells"
	}

	checkbox, inFirstCell := findCheckbox(row, cells)

	offset := int(e.opts.ColumnOffset)
	if e.opts.ColumnOffset == OffsetAuto {
		// The selection control may or may not occupy its own column.
		offset = 0
		if inFirstCell {
			offset = 1
		}
	}

	cellText := func(idx int) string {
		if idx >= cells.Length() {
			return ""
		}
		return strings.TrimSpace(cells.Eq(idx).Text())
	}

	rawTime := cellText(offset)
	rawFee := cellText(offset + 1)
	team := cellText(offset + 2)
	reservator := cellText(offset + 3)

	if rawTime == "" && rawFee == "" && team == "" && reservator == "" {
		return model.Reservation{}, "blank row"
	}

	return model.Reservation{
		Date:       date,
		Status:     e.classify(row, checkbox),
		Time:       normalize.Time(rawTime),
		Fee:        normalize.FeeWithKeywords(rawFee, e.opts.UnavailableKeywords),
		Team:       team,
		Reservator: reservator,
	}, ""
}

// findCheckbox locates the row's selection control, preferring the first
// cell. inFirstCell drives the column-offset inference.
func findCheckbox(row, cells *goquery.Selection) (checkbox *goquery.Selection, inFirstCell bool) {
	if cb := cells.First().Find("input[type='checkbox']"); cb.Length() > 0 {
		return cb.First(), true
	}
	if cb := row.Find("input[type='checkbox']"); cb.Length() > 0 {
		return cb.First(), false
	}
	return nil, false
}

// classify decides availability for one row. A selection control, when
// present, is authoritative: a disabled control means the slot is taken.
// Rows rendered without a control fall back to keyword matching on the whole
// row text, because the page inconsistently renders one or the other.
func (e *Extractor) classify(row, checkbox *goquery.Selection) model.Availability {
	if checkbox != nil {
		if _, disabled := checkbox.Attr("disabled"); disabled {
			return model.StatusReserved
		}
		return model.StatusAvailable
	}
	text := row.Text()
	for _, kw := range e.opts.ReservedKeywords {
		if strings.Contains(text, kw) {
			return model.StatusReserved
		}
	}
	return model.StatusAvailable
}

