package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"reservation-monitor-backend/config"
	"reservation-monitor-backend/internal/api"
	"reservation-monitor-backend/internal/browser"
	"reservation-monitor-backend/internal/db"
	"reservation-monitor-backend/internal/notify"
	"reservation-monitor-backend/internal/scraper"
	"reservation-monitor-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "reservd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Scraper.TargetURL == "" {
		logger.Fatalf("scraper.target_url must be configured")
	}

	// Web push is optional; without VAPID keys the channel stays off.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured, web push disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, cfg.Notify.DefaultReceiver)
	logger.Println("data store initialized")

	browserClient, err := browser.NewClient(browser.Options{
		Headless:    cfg.Scraper.Headless,
		WaitTimeout: time.Duration(cfg.Scraper.WaitTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		logger.Fatalf("failed to launch browser: %v", err)
	}
	defer browserClient.Close()

	// Delivery chain: edge relay first when configured, SMTP as fallback.
	var primary notify.Sender
	if cfg.Edge.Enabled && cfg.Edge.URL != "" {
		primary = notify.NewEdgeSender(cfg.Edge)
	}
	dispatcher := notify.NewDispatcher(cfg.Notify.WorkerPoolSize, primary, notify.NewEmailSender(cfg.SMTP))

	var pushBroadcast *notify.PushBroadcast
	if webpushOptions != nil {
		pushBroadcast = notify.NewPushBroadcast(appStore, webpushOptions)
	}

	notifier := notify.NewService(appStore, dispatcher, pushBroadcast, cfg.Scraper.TargetURL)
	notifier.Start(ctx)

	scraperSvc := scraper.New(cfg.Scraper, appStore, browserClient, notifier)
	go scraperSvc.Run(ctx)

	router := api.NewRouter(cfg.Server, appStore, scraperSvc, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
