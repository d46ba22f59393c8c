package model

import "time"

// MonitoringDate is one date the scheduler watches, stored in the
// canonical YYYY-MM-DD form.
type MonitoringDate struct {
	ID        int64     `gorm:"autoIncrement"`
	Date      string    `gorm:"size:10;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// Receiver is one notification-target email address.
type Receiver struct {
	ID        int64     `gorm:"autoIncrement"`
	Email     string    `gorm:"size:256;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
