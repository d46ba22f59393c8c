package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Database DatabaseConfig `yaml:"database"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Edge     EdgeConfig     `yaml:"edge"`
	Push     PushConfig     `yaml:"push"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// ScraperConfig holds the extraction-cycle configuration. TargetURL is a
// template with one %s verb for the YYYYMMDD base date.
type ScraperConfig struct {
	Enabled             bool          `yaml:"enabled"`
	IntervalSeconds     int           `yaml:"interval_seconds"`
	Interval            time.Duration `yaml:"-"` // Ignored by YAML parser
	TargetURL           string        `yaml:"target_url"`
	Headless            bool          `yaml:"headless"`
	WaitTimeoutMs       int           `yaml:"wait_timeout_ms"`
	InterDateDelaySecs  int           `yaml:"inter_date_delay_seconds"`
	InterDateDelay      time.Duration `yaml:"-"`
	MaxDates            int           `yaml:"max_dates"`
	AllowedTimes        []string      `yaml:"allowed_times"`
	ColumnOffset        string        `yaml:"column_offset"` // auto, 0 or 1
	ReservedKeywords    []string      `yaml:"reserved_keywords"`
	UnavailableKeywords []string      `yaml:"unavailable_keywords"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SMTPConfig holds the outgoing mail account. No defaults exist for the
// credentials; they must come from this file or stay empty (sending is then
// disabled).
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// EdgeConfig holds the edge-function relay used before falling back to SMTP.
type EdgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
}

// PushConfig holds the VAPID keys for the optional web push channel.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// NotifyConfig holds notification dispatch settings.
type NotifyConfig struct {
	DefaultReceiver string `yaml:"default_receiver"`
	WorkerPoolSize  int    `yaml:"worker_pool_size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Scraper.IntervalSeconds <= 0 {
		cfg.Scraper.IntervalSeconds = 600
	}
	cfg.Scraper.Interval = time.Duration(cfg.Scraper.IntervalSeconds) * time.Second

	if cfg.Scraper.InterDateDelaySecs <= 0 {
		cfg.Scraper.InterDateDelaySecs = 2
	}
	cfg.Scraper.InterDateDelay = time.Duration(cfg.Scraper.InterDateDelaySecs) * time.Second

	if cfg.Scraper.WaitTimeoutMs <= 0 {
		cfg.Scraper.WaitTimeoutMs = 15000
	}
	if cfg.Scraper.MaxDates <= 0 {
		cfg.Scraper.MaxDates = 5
	}
	if len(cfg.Scraper.AllowedTimes) == 0 {
		cfg.Scraper.AllowedTimes = []string{"19:00", "20:00"}
	}
	if cfg.Scraper.ColumnOffset == "" {
		cfg.Scraper.ColumnOffset = "auto"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "data/reservations.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Notify.WorkerPoolSize <= 0 {
		log.Printf("notify.worker_pool_size is not set or invalid; defaulting to 1")
		cfg.Notify.WorkerPoolSize = 1
	}

	return &cfg, nil
}
