package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"reservation-monitor-backend/config"
	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/scraper"
	"reservation-monitor-backend/internal/store"
)

// emptyPageBrowser returns a structureless page for every URL, so every
// scraped date yields exactly one no-data diagnostic record.
type emptyPageBrowser struct {
	fetched []string
}

func (b *emptyPageBrowser) Fetch(_ context.Context, url string) (string, error) {
	b.fetched = append(b.fetched, url)
	return "<html><body></body></html>", nil
}

func (b *emptyPageBrowser) Close() error { return nil }

func setupRouter(t *testing.T) (*gin.Engine, store.Store, *emptyPageBrowser) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(
		&model.Reservation{},
		&model.MonitoringDate{},
		&model.Receiver{},
		&model.PushSubscription{},
	))

	s := store.NewGormStore(db, "")
	b := &emptyPageBrowser{}
	svc := scraper.New(config.ScraperConfig{
		TargetURL:      "https://booking.example.com/list?date=%s",
		MaxDates:       5,
		AllowedTimes:   []string{"19:00", "20:00"},
		InterDateDelay: time.Millisecond,
	}, s, b, nil)

	serverCfg := config.ServerConfig{RateLimitPerSec: 100, RateLimitBurst: 100, CacheTTLSeconds: 1}
	return NewRouter(serverCfg, s, svc, nil), s, b
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestMonitoringDatesCRUD(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "POST", "/api/monitoring-dates", `{"date":"2025-03-01"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Same date in compact form is a no-op.
	w = doJSON(router, "POST", "/api/monitoring-dates", `{"date":"20250301"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", "/api/monitoring-dates", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, []string{"2025-03-01"}, listResp.Dates)

	w = doJSON(router, "DELETE", "/api/monitoring-dates", `{"date":"20250301"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, "GET", "/api/monitoring-dates", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Empty(t, listResp.Dates)
}

func TestPostMonitoringDateRejectsMalformed(t *testing.T) {
	router, _, _ := setupRouter(t)

	for _, body := range []string{`{"date":"2025-3-1"}`, `{"date":"tomorrow"}`, `{}`} {
		w := doJSON(router, "POST", "/api/monitoring-dates", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestReceiverValidation(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "POST", "/api/email-receivers", `{"email":"not-an-address"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/email-receivers", `{"email":"watcher@example.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", "/api/email-receivers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Receivers []string `json:"receivers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"watcher@example.com"}, resp.Receivers)
}

func TestPostMonitorScrapesRequestedDates(t *testing.T) {
	router, s, b := setupRouter(t)

	w := doJSON(router, "POST", "/api/monitor", `{"dates":["2025-03-01","20250302"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result scraper.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Dates, 2)
	assert.False(t, result.Truncated)
	assert.Len(t, b.fetched, 2)

	stored, err := s.QueryDates(context.Background(), []string{"20250301", "20250302"})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestPostMonitorTruncatesToFiveDates(t *testing.T) {
	router, _, b := setupRouter(t)

	body := `{"dates":["20250301","20250302","20250303","20250304","20250305","20250306","20250307"]}`
	w := doJSON(router, "POST", "/api/monitor", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result scraper.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Truncated)
	assert.Len(t, result.Dates, 5)
	assert.Len(t, b.fetched, 5)
}

func TestPostMonitorWithoutDates(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "POST", "/api/monitor", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReservationsGroupsByDate(t *testing.T) {
	router, s, _ := setupRouter(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceDate(ctx, "20250301", []model.Reservation{
		{Date: "20250301", Status: model.StatusAvailable, Time: "19:00"},
		{Date: "20250301", Status: model.StatusReserved, Time: "20:00"},
	}))

	w := doJSON(router, "GET", "/api/reservations?dates=2025-03-01,20250399", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Dates        []string                       `json:"dates"`
		Reservations map[string][]model.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"20250301", "20250399"}, resp.Dates)
	assert.Len(t, resp.Reservations["20250301"], 2)
	assert.Empty(t, resp.Reservations["20250399"])
}

func TestGetReservationsWithoutDates(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "GET", "/api/reservations", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionLifecycle(t *testing.T) {
	router, s, _ := setupRouter(t)

	w := doJSON(router, "PUT", "/api/subscriptions", `{"endpoint":"https://push.example.com/a","p256dh":"key","auth":"secret"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Refreshing the same endpoint replaces the keys.
	w = doJSON(router, "PUT", "/api/subscriptions", `{"endpoint":"https://push.example.com/a","p256dh":"key2","auth":"secret2"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	subs, err := s.ListPushSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "key2", subs[0].P256DH)

	w = doJSON(router, "DELETE", "/api/subscriptions", `{"endpoint":"https://push.example.com/a"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	subs, err = s.ListPushSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestPutSubscriptionRejectsIncomplete(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "PUT", "/api/subscriptions", `{"endpoint":"https://push.example.com/a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKeyUnconfigured(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "GET", "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
