package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values. Empty provider credentials are
// valid: each integration degrades to its fallback when unconfigured.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	BusinessName   string `mapstructure:"BUSINESS_NAME"`
	StudioLocation string `mapstructure:"STUDIO_LOCATION"`
	TherapistName  string `mapstructure:"THERAPIST_NAME"`

	// Working day used for slot generation.
	BusinessTimezone    string `mapstructure:"BUSINESS_TIMEZONE"`
	WorkStartHour       int    `mapstructure:"WORK_START_HOUR"`
	WorkEndHour         int    `mapstructure:"WORK_END_HOUR"`
	SlotIntervalMinutes int    `mapstructure:"SLOT_INTERVAL_MINUTES"`

	// Google Calendar busy lookup.
	GoogleCalendarID        string        `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleServiceAccountKey string        `mapstructure:"GOOGLE_SERVICE_ACCOUNT_KEY"`
	CalendarTimeout         time.Duration `mapstructure:"CALENDAR_TIMEOUT"`

	// Transactional email.
	EmailProvider      string        `mapstructure:"EMAIL_PROVIDER"`
	ZeptoMailToken     string        `mapstructure:"ZEPTOMAIL_TOKEN"`
	ZeptoMailFromEmail string        `mapstructure:"ZEPTOMAIL_FROM_EMAIL"`
	ZeptoMailAPIURL    string        `mapstructure:"ZEPTOMAIL_API_URL"`
	SendGridAPIKey     string        `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail  string        `mapstructure:"SENDGRID_FROM_EMAIL"`
	EmailFromName      string        `mapstructure:"EMAIL_FROM_NAME"`
	TherapistEmail     string        `mapstructure:"THERAPIST_EMAIL"`
	EmailTimeout       time.Duration `mapstructure:"EMAIL_TIMEOUT"`

	// Gallery feed.
	InstagramUsername string        `mapstructure:"INSTAGRAM_USERNAME"`
	GalleryTimeout    time.Duration `mapstructure:"GALLERY_TIMEOUT"`
	GalleryCacheTTL   time.Duration `mapstructure:"GALLERY_CACHE_TTL"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`

	// HTTP surface.
	CORSAllowedOrigins   string  `mapstructure:"CORS_ALLOWED_ORIGINS"`
	BookingRatePerMinute float64 `mapstructure:"BOOKING_RATE_PER_MINUTE"`
	BookingRateBurst     int     `mapstructure:"BOOKING_RATE_BURST"`

	location *time.Location
}

var defaults = map[string]any{
	"PORT":      "8080",
	"ENV":       "development",
	"LOG_LEVEL": "info",

	"BUSINESS_NAME":   "BEN&ESSERE",
	"STUDIO_LOCATION": "BEN&ESSERE Studio",
	"THERAPIST_NAME":  "Larissa",

	"BUSINESS_TIMEZONE":     "Europe/Rome",
	"WORK_START_HOUR":       9,
	"WORK_END_HOUR":         18,
	"SLOT_INTERVAL_MINUTES": 30,

	"GOOGLE_CALENDAR_ID":         "",
	"GOOGLE_SERVICE_ACCOUNT_KEY": "",
	"CALENDAR_TIMEOUT":           "5s",

	"EMAIL_PROVIDER":       "zeptomail",
	"ZEPTOMAIL_TOKEN":      "",
	"ZEPTOMAIL_FROM_EMAIL": "",
	"ZEPTOMAIL_API_URL":    "https://api.zeptomail.com/v1.1/email",
	"SENDGRID_API_KEY":     "",
	"SENDGRID_FROM_EMAIL":  "",
	"EMAIL_FROM_NAME":      "BEN&ESSERE",
	"THERAPIST_EMAIL":      "",
	"EMAIL_TIMEOUT":        "10s",

	"INSTAGRAM_USERNAME": "larissa_benessere",
	"GALLERY_TIMEOUT":    "5s",
	"GALLERY_CACHE_TTL":  "1h",
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,

	"CORS_ALLOWED_ORIGINS":    "*",
	"BOOKING_RATE_PER_MINUTE": 10,
	"BOOKING_RATE_BURST":      5,
}

// Load reads an optional .env file, then environment variables on top of
// the defaults above.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return fmt.Errorf("config: invalid BUSINESS_TIMEZONE %q: %w", c.BusinessTimezone, err)
	}
	c.location = loc

	if c.WorkStartHour < 0 || c.WorkEndHour > 24 || c.WorkEndHour <= c.WorkStartHour {
		return fmt.Errorf("config: working hours %d-%d are invalid", c.WorkStartHour, c.WorkEndHour)
	}
	if c.SlotIntervalMinutes <= 0 {
		return errors.New("config: SLOT_INTERVAL_MINUTES must be positive")
	}
	if c.BookingRatePerMinute <= 0 || c.BookingRateBurst <= 0 {
		return errors.New("config: booking rate limit must be positive")
	}
	c.EmailProvider = strings.ToLower(strings.TrimSpace(c.EmailProvider))
	switch c.EmailProvider {
	case "zeptomail", "sendgrid":
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	return nil
}

// Location is the business timezone resolved during Load.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// CalendarConfigured reports whether both Google Calendar values are present.
func (c *Config) CalendarConfigured() bool {
	return c.GoogleCalendarID != "" && c.GoogleServiceAccountKey != ""
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
