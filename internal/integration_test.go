package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"reservation-monitor-backend/config"
	"reservation-monitor-backend/internal/api"
	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/notify"
	"reservation-monitor-backend/internal/scraper"
	"reservation-monitor-backend/internal/store"
)

const fullyReservedPage = `<html><body>
<table class="regist_list">
  <tr><th>선택</th><th>시간</th><th>요금</th><th>팀명</th><th>예약자</th></tr>
  <tr><td><input type="checkbox" disabled></td><td>19:00</td><td>10,000원</td><td>독수리</td><td>김철수</td></tr>
  <tr><td><input type="checkbox" disabled></td><td>20:00</td><td>10,000원</td><td>매</td><td>이영희</td></tr>
</table>
</body></html>`

const slotOpenedPage = `<html><body>
<table class="regist_list">
  <tr><th>선택</th><th>시간</th><th>요금</th><th>팀명</th><th>예약자</th></tr>
  <tr><td><input type="checkbox" disabled></td><td>19:00</td><td>10,000원</td><td>독수리</td><td>김철수</td></tr>
  <tr><td><input type="checkbox"></td><td>20:00</td><td>10,000원</td><td></td><td></td></tr>
</table>
</body></html>`

// switchingBrowser serves one canned page per call, in order.
type switchingBrowser struct {
	mu    sync.Mutex
	pages []string
	calls int
}

func (b *switchingBrowser) Fetch(_ context.Context, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	page := b.pages[len(b.pages)-1]
	if b.calls < len(b.pages) {
		page = b.pages[b.calls]
	}
	b.calls++
	return page, nil
}

func (b *switchingBrowser) Close() error { return nil }

// captureSender records deliveries instead of sending them.
type captureSender struct {
	mu         sync.Mutex
	deliveries []notify.Delivery
}

func (s *captureSender) Send(_ context.Context, recipient string, p notify.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, notify.Delivery{Recipient: recipient, Payload: p})
	return nil
}

func (s *captureSender) all() []notify.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Delivery(nil), s.deliveries...)
}

// TestAvailabilityLifecycle runs two monitoring batches against a page that
// opens a slot between them and verifies storage, notification and the API
// view at each step.
func TestAvailabilityLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.Reservation{},
		&model.MonitoringDate{},
		&model.Receiver{},
		&model.PushSubscription{},
	))

	appStore := store.NewGormStore(testDB, "default@example.com")
	require.NoError(t, appStore.AddMonitoringDate(ctx, "20250301"))

	sender := &captureSender{}
	dispatcher := notify.NewDispatcher(1, nil, sender)
	notifier := notify.NewService(appStore, dispatcher, nil, "https://booking.example.com/list?date=%s")
	notifier.Start(ctx)

	b := &switchingBrowser{pages: []string{fullyReservedPage, slotOpenedPage}}
	scraperCfg := config.ScraperConfig{
		TargetURL:      "https://booking.example.com/list?date=%s",
		MaxDates:       5,
		AllowedTimes:   []string{"19:00", "20:00"},
		InterDateDelay: time.Millisecond,
	}
	svc := scraper.New(scraperCfg, appStore, b, notifier)

	// First batch: everything reserved, nothing to notify.
	result, err := svc.MonitorBatch(ctx, nil)
	require.NoError(t, err)
	assert.False(t, result.Notified)

	stored, err := appStore.QueryDates(ctx, []string{"20250301"})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, rec := range stored {
		assert.Equal(t, model.StatusReserved, rec.Status)
	}

	// Second batch: 20:00 opened up. The stale snapshot is replaced and the
	// default receiver is notified.
	result, err = svc.MonitorBatch(ctx, nil)
	require.NoError(t, err)
	assert.True(t, result.Notified)

	stored, err = appStore.QueryDates(ctx, []string{"20250301"})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	statuses := map[model.Availability]int{}
	for _, rec := range stored {
		statuses[rec.Status]++
	}
	assert.Equal(t, 1, statuses[model.StatusReserved])
	assert.Equal(t, 1, statuses[model.StatusAvailable])

	var delivered []notify.Delivery
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if delivered = sender.all(); len(delivered) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Len(t, delivered, 1)
	assert.Equal(t, "default@example.com", delivered[0].Recipient)
	assert.Contains(t, delivered[0].Payload.Body, "2025-03-01")
	assert.Contains(t, delivered[0].Payload.Body, "  - 20:00")
	assert.NotContains(t, delivered[0].Payload.Body, "  - 19:00")

	// The API serves the fresh snapshot.
	router := api.NewRouter(config.ServerConfig{RateLimitPerSec: 100, RateLimitBurst: 100, CacheTTLSeconds: 1}, appStore, svc, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reservations?dates=20250301", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reservations map[string][]model.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Reservations["20250301"], 2)
}
