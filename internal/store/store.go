package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/normalize"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// DB exposes the underlying handle for handlers that query directly.
	DB() *gorm.DB

	// ReplaceDate atomically replaces every stored record for the given
	// date with the new set, stamping each record with the current time.
	ReplaceDate(ctx context.Context, date string, records []model.Reservation) error
	// QueryDates returns all stored records whose date is in the set.
	QueryDates(ctx context.Context, dates []string) ([]model.Reservation, error)

	ListMonitoringDates(ctx context.Context) ([]string, error)
	AddMonitoringDate(ctx context.Context, date string) error
	RemoveMonitoringDate(ctx context.Context, date string) error

	ListReceivers(ctx context.Context) ([]string, error)
	AddReceiver(ctx context.Context, email string) error
	RemoveReceiver(ctx context.Context, email string) error

	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// dateStripes bounds the per-date lock table.
const dateStripes = 16

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db              *gorm.DB
	defaultReceiver string
	// Replace-by-date is read-modify-write; writes for the same date must
	// not interleave when extraction is ever parallelized across dates.
	dateLocks [dateStripes]sync.Mutex
}

// NewGormStore creates a new GORM-backed store. defaultReceiver seeds the
// receiver list the first time it is read while empty.
func NewGormStore(db *gorm.DB, defaultReceiver string) Store {
	return &gormStore{db: db, defaultReceiver: defaultReceiver}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) dateLock(date string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(date))
	return &s.dateLocks[h.Sum32()%dateStripes]
}

func (s *gormStore) ReplaceDate(ctx context.Context, date string, records []model.Reservation) error {
	mu := s.dateLock(date)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&model.Reservation{}).Error; err != nil {
			return fmt.Errorf("failed to clear records for date %s: %w", date, err)
		}
		if len(records) == 0 {
			return nil
		}
		toInsert := make([]model.Reservation, len(records))
		for i, rec := range records {
			rec.ID = 0
			rec.CreatedAt = now
			toInsert[i] = rec
		}
		if err := tx.Create(&toInsert).Error; err != nil {
			return fmt.Errorf("failed to insert records for date %s: %w", date, err)
		}
		return nil
	})
}

func (s *gormStore) QueryDates(ctx context.Context, dates []string) ([]model.Reservation, error) {
	var records []model.Reservation
	if len(dates) == 0 {
		return records, nil
	}
	if err := s.db.WithContext(ctx).Where("date IN ?", dates).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

func (s *gormStore) ListMonitoringDates(ctx context.Context) ([]string, error) {
	var rows []model.MonitoringDate
	if err := s.db.WithContext(ctx).Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list monitoring dates: %w", err)
	}
	dates := make([]string, len(rows))
	for i, r := range rows {
		dates[i] = r.Date
	}
	return dates, nil
}

func (s *gormStore) AddMonitoringDate(ctx context.Context, date string) error {
	row := model.MonitoringDate{Date: normalize.DateDashed(date)}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to add monitoring date %s: %w", row.Date, err)
	}
	return nil
}

func (s *gormStore) RemoveMonitoringDate(ctx context.Context, date string) error {
	if err := s.db.WithContext(ctx).
		Where("date = ?", normalize.DateDashed(date)).
		Delete(&model.MonitoringDate{}).Error; err != nil {
		return fmt.Errorf("failed to remove monitoring date %s: %w", date, err)
	}
	return nil
}

func (s *gormStore) ListReceivers(ctx context.Context) ([]string, error) {
	var rows []model.Receiver
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list receivers: %w", err)
	}
	if len(rows) == 0 && s.defaultReceiver != "" {
		seed := model.Receiver{Email: s.defaultReceiver}
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return nil, fmt.Errorf("failed to seed default receiver: %w", err)
		}
		return []string{s.defaultReceiver}, nil
	}
	emails := make([]string, len(rows))
	for i, r := range rows {
		emails[i] = r.Email
	}
	return emails, nil
}

func (s *gormStore) AddReceiver(ctx context.Context, email string) error {
	row := model.Receiver{Email: email}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to add receiver %s: %w", email, err)
	}
	return nil
}

func (s *gormStore) RemoveReceiver(ctx context.Context, email string) error {
	if err := s.db.WithContext(ctx).Where("email = ?", email).Delete(&model.Receiver{}).Error; err != nil {
		return fmt.Errorf("failed to remove receiver %s: %w", email, err)
	}
	return nil
}

func (s *gormStore) ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
