package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"reservation-monitor-backend/config"
	"reservation-monitor-backend/internal/mw"
	"reservation-monitor-backend/internal/scraper"
	"reservation-monitor-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, s store.Store, svc *scraper.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, svc, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Reads are cached between batches; a successful monitor run flushes.
	caching := mw.NewResponseCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/monitor", caching.FlushAfter(), handler.PostMonitor)

		api.GET("/reservations", caching.Middleware(), handler.GetReservations)

		api.GET("/monitoring-dates", handler.GetMonitoringDates)
		api.POST("/monitoring-dates", handler.PostMonitoringDate)
		api.DELETE("/monitoring-dates", handler.DeleteMonitoringDate)

		api.GET("/email-receivers", handler.GetReceivers)
		api.POST("/email-receivers", handler.PostReceiver)
		api.DELETE("/email-receivers", handler.DeleteReceiver)

		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
