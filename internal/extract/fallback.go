package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reservation-monitor-backend/internal/model"
)

// extractList is the fallback tier for pages that render reservation entries
// as list-like markup instead of a table. Each matched item whose text looks
// like reservation data yields a best-effort record: only the time slot can
// be recovered from free-form text, the remaining fields stay empty.
func (e *Extractor) extractList(doc *goquery.Document, date string, rep *Report) []model.Reservation {
	for _, sel := range e.opts.ListSelectors {
		items := doc.Find(sel)
		if items.Length() == 0 {
			continue
		}

		var records []model.Reservation
		items.Each(func(i int, item *goquery.Selection) {
			text := strings.TrimSpace(item.Text())
			if !containsAny(text, e.opts.DomainKeywords) {
				return
			}
			status := model.StatusAvailable
			if strings.Contains(text, "예약") || strings.Contains(text, "불가") {
				status = model.StatusReserved
			}
			records = append(records, model.Reservation{
				Date:   date,
				Status: status,
				Time:   firstToken(text),
			})
		})
		if len(records) > 0 {
			return records
		}
	}
	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
