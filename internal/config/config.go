package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type ScraperConfig struct {
	Mode              string        `mapstructure:"mode"`
	IntervalMinutes   int           `mapstructure:"interval_minutes"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	WaitSelector      string        `mapstructure:"wait_selector"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

type CrawlerConfig struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Managed        bool          `mapstructure:"managed"`
	Image          string        `mapstructure:"image"`
	ContainerName  string        `mapstructure:"container_name"`
	HostPort       string        `mapstructure:"host_port"`
	MemoryLimit    int64         `mapstructure:"memory_limit"`
}

type AlertsConfig struct {
	CooldownHours     int     `mapstructure:"cooldown_hours"`
	MaxRetries        int     `mapstructure:"max_retries"`
	InitialBackoff    string  `mapstructure:"initial_backoff"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`
	MaxSitesPerEmail  int     `mapstructure:"max_sites_per_email"`
	AdvanceNoticeMode string  `mapstructure:"advance_notice_mode"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
}

type EmailConfig struct {
	From     string `mapstructure:"from"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Config struct {
	DatabaseURL string         `mapstructure:"database_url"`
	ServerPort  string         `mapstructure:"server_port"`
	JWTSecret   string         `mapstructure:"jwt_secret"`
	Scraper     ScraperConfig  `mapstructure:"scraper"`
	Crawler     CrawlerConfig  `mapstructure:"crawler"`
	Alerts      AlertsConfig   `mapstructure:"alerts"`
	Temporal    TemporalConfig `mapstructure:"temporal"`
	Email       EmailConfig    `mapstructure:"email"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}

	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}

	if config.Scraper.Mode == "" {
		config.Scraper.Mode = "crawler"
	}
	if config.Scraper.IntervalMinutes <= 0 {
		config.Scraper.IntervalMinutes = 30
	}
	if config.Scraper.RequestsPerMinute <= 0 {
		config.Scraper.RequestsPerMinute = 2
	}
	if config.Scraper.BackoffMultiplier < 1 {
		config.Scraper.BackoffMultiplier = 2.0
	}
	if config.Scraper.MaxBackoff <= 0 {
		config.Scraper.MaxBackoff = 5 * time.Minute
	}
	if config.Scraper.RequestTimeout <= 0 {
		config.Scraper.RequestTimeout = 60 * time.Second
	}

	if config.Crawler.URL == "" {
		config.Crawler.URL = "http://127.0.0.1:3000"
	}
	if config.Crawler.RequestTimeout <= 0 {
		config.Crawler.RequestTimeout = 90 * time.Second
	}
	if config.Crawler.HostPort == "" {
		config.Crawler.HostPort = "3000"
	}

	if config.Alerts.CooldownHours <= 0 {
		config.Alerts.CooldownHours = 24
	}
	if config.Alerts.MaxRetries <= 0 {
		config.Alerts.MaxRetries = 3
	}
	if config.Alerts.InitialBackoff == "" {
		config.Alerts.InitialBackoff = "1s"
	}
	if config.Alerts.BackoffMultiplier < 1 {
		config.Alerts.BackoffMultiplier = 2.0
	}
	if config.Alerts.MaxSitesPerEmail <= 0 {
		config.Alerts.MaxSitesPerEmail = 10
	}
	if config.Alerts.AdvanceNoticeMode == "" {
		config.Alerts.AdvanceNoticeMode = "minimum_lead"
	}

	if config.Temporal.HostPort == "" {
		config.Temporal.HostPort = "localhost:7233"
	}
	if config.Temporal.Namespace == "" {
		config.Temporal.Namespace = "default"
	}

	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}

	return &config
}

// InitialBackoffDuration parses the configured initial backoff, defaulting
// to one second on malformed input.
func (c AlertsConfig) InitialBackoffDuration() time.Duration {
	d, err := time.ParseDuration(c.InitialBackoff)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
