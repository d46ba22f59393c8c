// Package scraper runs the monitoring cycle: fetch the rendered reservation
// page for each monitored date, extract and normalize its rows, persist them
// by replacing the previous snapshot for that date, and notify when new
// availability shows up.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reservation-monitor-backend/config"
	"reservation-monitor-backend/internal/browser"
	"reservation-monitor-backend/internal/extract"
	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/normalize"
	"reservation-monitor-backend/internal/notify"
	"reservation-monitor-backend/internal/store"
)

// ErrNoDates means a batch was requested but no dates were given and none
// are persisted.
var ErrNoDates = errors.New("scraper: no dates to monitor")

// Notifier receives the availability aggregate of a finished batch.
type Notifier interface {
	Notify(ctx context.Context, agg notify.Aggregate) error
}

// DateResult summarizes one date of a batch.
type DateResult struct {
	Date      string `json:"date"`
	Records   int    `json:"records"`
	Available int    `json:"available"`
	Skipped   int    `json:"skipped"`
	Err       string `json:"error,omitempty"`
}

// BatchResult summarizes one monitoring batch.
type BatchResult struct {
	Dates     []DateResult `json:"dates"`
	Truncated bool         `json:"truncated,omitempty"`
	Notified  bool         `json:"notified"`
}

// Service drives monitoring batches, on a timer and on demand.
type Service struct {
	cfg       config.ScraperConfig
	store     store.Store
	browser   browser.Browser
	extractor *extract.Extractor
	notifier  Notifier
	sleep     func(ctx context.Context, d time.Duration)
}

// New builds the scraper service. The extractor is configured from the
// scraper section: keyword overrides and the column offset mode.
func New(cfg config.ScraperConfig, s store.Store, b browser.Browser, n Notifier) *Service {
	return &Service{
		cfg:     cfg,
		store:   s,
		browser: b,
		extractor: extract.New(extract.Options{
			ReservedKeywords:    cfg.ReservedKeywords,
			UnavailableKeywords: cfg.UnavailableKeywords,
			ColumnOffset:        parseOffset(cfg.ColumnOffset),
		}),
		notifier: n,
		sleep:    sleepCtx,
	}
}

// parseOffset maps the config value to an extraction offset mode. Anything
// unrecognized falls back to auto.
func parseOffset(v string) extract.ColumnOffset {
	switch strings.TrimSpace(v) {
	case "0":
		return extract.OffsetNone
	case "1":
		return extract.OffsetSkipFirst
	default:
		return extract.OffsetAuto
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Run executes batches on the configured interval until the context ends.
// The first batch runs immediately.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Scraper is disabled, monitoring loop not started")
		return
	}

	log.Printf("Starting monitoring loop, interval %s", s.cfg.Interval)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.MonitorBatch(ctx, nil); err != nil && !errors.Is(err, ErrNoDates) {
			log.Printf("Monitoring batch failed: %v", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Println("Monitoring loop shutting down")
			return
		}
	}
}

// MonitorBatch scrapes the given dates. When dates is empty the persisted
// monitoring set is used; when that is empty too, ErrNoDates is returned.
// Each date's stored records are replaced with the fresh snapshot, so a date
// with a broken page still keeps a diagnostic record rather than stale rows.
// After the last date, newly available slots are aggregated and dispatched.
func (s *Service) MonitorBatch(ctx context.Context, dates []string) (*BatchResult, error) {
	if len(dates) == 0 {
		stored, err := s.store.ListMonitoringDates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load monitoring dates: %w", err)
		}
		dates = stored
	}
	if len(dates) == 0 {
		return nil, ErrNoDates
	}

	result := &BatchResult{}
	if len(dates) > s.cfg.MaxDates {
		log.Printf("Limiting batch to the first %d of %d dates", s.cfg.MaxDates, len(dates))
		dates = dates[:s.cfg.MaxDates]
		result.Truncated = true
	}

	var available []model.Reservation
	for i, raw := range dates {
		if i > 0 {
			s.sleep(ctx, s.cfg.InterDateDelay)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		date := normalize.DateKey(raw)
		records, dr := s.monitorDate(ctx, date)
		result.Dates = append(result.Dates, dr)

		for _, rec := range records {
			if rec.Status == model.StatusAvailable {
				available = append(available, rec)
			}
		}
	}

	agg := notify.Build(available)
	if !agg.Empty() && s.notifier != nil {
		if err := s.notifier.Notify(ctx, agg); err != nil {
			log.Printf("Notification dispatch failed: %v", err)
		} else {
			result.Notified = true
		}
	}
	return result, nil
}

// monitorDate fetches, extracts and persists one date. It always produces at
// least one record for the date; fetch and parse failures become a
// diagnostic record so the failure is visible in the stored data.
func (s *Service) monitorDate(ctx context.Context, date string) ([]model.Reservation, DateResult) {
	dr := DateResult{Date: date}

	records, skipped, err := s.scrapeDate(ctx, date)
	if err != nil {
		log.Printf("Scrape failed for %s: %v", date, err)
		records = []model.Reservation{extract.ErrorRecord(date, err)}
		dr.Err = err.Error()
	}
	dr.Records = len(records)
	dr.Skipped = skipped
	for _, rec := range records {
		if rec.Status == model.StatusAvailable {
			dr.Available++
		}
	}

	if err := s.store.ReplaceDate(ctx, date, records); err != nil {
		log.Printf("Failed to persist records for %s: %v", date, err)
		dr.Err = err.Error()
		return nil, dr
	}
	log.Printf("Stored %d records for %s (%d available, %d rows skipped)", len(records), date, dr.Available, skipped)
	return records, dr
}

func (s *Service) scrapeDate(ctx context.Context, date string) ([]model.Reservation, int, error) {
	url := fmt.Sprintf(s.cfg.TargetURL, date)
	html, err := s.browser.Fetch(ctx, url)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse page: %w", err)
	}

	records, report := s.extractor.Extract(doc, date)
	log.Printf("Extracted %d records for %s via %s strategy", len(records), date, report.Strategy)

	return extract.FilterByTime(records, s.cfg.AllowedTimes), len(report.Skips), nil
}
