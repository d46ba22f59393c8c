package api

import (
	"sync/atomic"

	"github.com/SherClockHolmes/webpush-go"

	"reservation-monitor-backend/internal/scraper"
	"reservation-monitor-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	scraper *scraper.Service
	webpush *webpush.Options

	// monitoring guards against overlapping on-demand batches; the page
	// tolerates exactly one browser session at a time.
	monitoring atomic.Bool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, svc *scraper.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		scraper: svc,
		webpush: webpushOptions,
	}
}
