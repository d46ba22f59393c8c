package model

import "time"

// Availability is the derived state of a single reservation slot.
type Availability string

const (
	StatusAvailable Availability = "available"
	StatusReserved  Availability = "reserved"
	StatusUnknown   Availability = "unknown"
	// StatusError marks a synthetic record produced when extraction failed
	// outright for a date.
	StatusError Availability = "error"
	// StatusNoData marks a synthetic record produced when every extraction
	// tier ran without error but found nothing for a date.
	StatusNoData Availability = "no_data"
)

// Diagnostic reports whether the record was synthesized on a failure path
// rather than extracted from a real row.
func (a Availability) Diagnostic() bool {
	return a == StatusError || a == StatusNoData
}

// Reservation represents one extracted slot for a monitored date.
// Date keeps whatever format the scrape request supplied (dashes stripped
// to YYYYMMDD before scraping); Time is canonical HH:MM when a time pattern
// was found, otherwise the untouched original cell text.
type Reservation struct {
	ID         int64        `gorm:"autoIncrement" json:"-"`
	Date       string       `gorm:"size:16;index;not null" json:"date"`
	Status     Availability `gorm:"size:16;not null" json:"status"`
	Time       string       `gorm:"size:64" json:"time"`
	Fee        string       `gorm:"size:128" json:"fee"`
	Team       string       `gorm:"size:256" json:"team"`
	Reservator string       `gorm:"size:256" json:"reservator"`
	Note       string       `gorm:"size:512" json:"note,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
