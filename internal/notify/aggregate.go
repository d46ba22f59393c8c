package notify

import (
	"fmt"
	"strings"
	"time"

	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/normalize"
)

// Aggregate maps each date to the newly available time slots found for it.
// It is derived per notification cycle and never persisted. Dates keeps
// first-seen order; duplicate times are kept because several rows can
// legitimately report the same slot.
type Aggregate struct {
	Dates []string
	Times map[string][]string
}

// Build groups the available records by date. Records without both a date
// and a time carry nothing notifiable and are ignored.
func Build(records []model.Reservation) Aggregate {
	agg := Aggregate{Times: make(map[string][]string)}
	for _, rec := range records {
		if rec.Status != model.StatusAvailable || rec.Date == "" || rec.Time == "" {
			continue
		}
		if _, seen := agg.Times[rec.Date]; !seen {
			agg.Dates = append(agg.Dates, rec.Date)
		}
		agg.Times[rec.Date] = append(agg.Times[rec.Date], rec.Time)
	}
	return agg
}

// Empty reports whether there is nothing to notify about.
func (a Aggregate) Empty() bool {
	return len(a.Dates) == 0
}

// Payload is the structured notification handed to the transport layer.
type Payload struct {
	Subject    string
	Body       string
	Recipients []string
}

// BuildPayload renders the notification for an aggregate: one section per
// date with the formatted date, its time slots and a deep link back to the
// monitored page. linkTemplate carries one %s verb for the YYYYMMDD date.
func BuildPayload(agg Aggregate, recipients []string, linkTemplate string, now time.Time) Payload {
	var sb strings.Builder
	sb.WriteString("예약가능한 시간이 발견되었습니다!\n\n")

	for _, date := range agg.Dates {
		sb.WriteString(fmt.Sprintf("📅 날짜: %s\n", normalize.DateDashed(date)))
		sb.WriteString("⏰ 예약가능한 시간:\n")
		for _, slot := range agg.Times[date] {
			sb.WriteString(fmt.Sprintf("  - %s\n", slot))
		}
		if linkTemplate != "" {
			sb.WriteString(fmt.Sprintf("🔗 모니터링 바로가기: %s\n", fmt.Sprintf(linkTemplate, normalize.DateKey(date))))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\n모니터링 시간: %s\n", now.Format("2006-01-02 15:04:05")))

	return Payload{
		Subject:    fmt.Sprintf("예약가능 알림 - %d개 날짜", len(agg.Dates)),
		Body:       sb.String(),
		Recipients: recipients,
	}
}
