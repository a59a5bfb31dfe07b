package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/beeconnect/server/internal/calendar"
)

const (
	StorageMongoDB = "mongodb"
	StorageSQLite  = "sqlite"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	SQLite    SQLiteConfig
	Calendar  CalendarConfig
	Reminders RemindersConfig
	Push      PushConfig
	WhatsApp  WhatsAppConfig
	Weather   WeatherConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SQLiteConfig holds settings for the embedded store.
type SQLiteConfig struct {
	Path string
}

// CalendarConfig controls date handling for the visit calendar and ledger.
type CalendarConfig struct {
	Timezone  string
	WeekStart string
	PageSize  int
}

// Location resolves the configured timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FirstWeekday resolves the configured first day of the week. Empty means Sunday.
func (c CalendarConfig) FirstWeekday() (time.Weekday, error) {
	if strings.TrimSpace(c.WeekStart) == "" {
		return time.Sunday, nil
	}
	return calendar.ParseWeekday(c.WeekStart)
}

// RemindersConfig holds scheduler-related settings.
type RemindersConfig struct {
	SweepSchedule string
}

// PushConfig contains Firebase Cloud Messaging settings. Reminders are not
// pushed when ProjectID is empty. An empty CredentialsPath falls back to
// application default credentials.
type PushConfig struct {
	CredentialsPath string
	ProjectID       string
	Topic           string
}

// Enabled reports whether push delivery is configured.
func (c PushConfig) Enabled() bool {
	return c.ProjectID != ""
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API. When
// enabled, visit reminders are also sent as text to Recipient.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether WhatsApp delivery is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// WeatherConfig contains OpenWeatherMap settings. Weather is disabled when APIKey is empty.
type WeatherConfig struct {
	APIKey   string
	BaseURL  string
	Language string
}

// Enabled reports whether weather lookups are configured.
func (c WeatherConfig) Enabled() bool {
	return c.APIKey != ""
}

// SheetsConfig contains configuration required to mirror harvests to Google Sheets.
// Mirroring is disabled when either value is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Google Sheets mirror is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when the environment is set directly.
		_ = godotenv.Load()
	}

	pageSize, err := getenvInt("INSPECTION_PAGE_SIZE", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getenvWithDefault("STORAGE_DRIVER", StorageMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "beeconnect"),
		},
		SQLite: SQLiteConfig{
			Path: getenvWithDefault("SQLITE_PATH", "data/beeconnect.db"),
		},
		Calendar: CalendarConfig{
			Timezone:  getenvWithDefault("TIMEZONE", "Europe/Lisbon"),
			WeekStart: getenvWithDefault("WEEK_START", "sunday"),
			PageSize:  pageSize,
		},
		Reminders: RemindersConfig{
			SweepSchedule: getenvWithDefault("REMINDER_SWEEP_CRON", "*/5 * * * *"),
		},
		Push: PushConfig{
			CredentialsPath: os.Getenv("PUSH_CREDENTIALS_PATH"),
			ProjectID:       os.Getenv("PUSH_PROJECT_ID"),
			Topic:           getenvWithDefault("PUSH_TOPIC", "beeconnect"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_RECIPIENT"),
		},
		Weather: WeatherConfig{
			APIKey:   os.Getenv("WEATHER_API_KEY"),
			BaseURL:  getenvWithDefault("WEATHER_BASE_URL", "https://api.openweathermap.org"),
			Language: getenvWithDefault("WEATHER_LANG", "pt"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case StorageMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case StorageSQLite:
		if c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH must be provided")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if _, err := c.Calendar.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if _, err := c.Calendar.FirstWeekday(); err != nil {
		return fmt.Errorf("invalid WEEK_START: %w", err)
	}

	if c.Calendar.PageSize <= 0 {
		return errors.New("INSPECTION_PAGE_SIZE must be positive")
	}

	if c.Reminders.SweepSchedule == "" {
		return errors.New("REMINDER_SWEEP_CRON must be provided")
	}

	if c.Push.Enabled() && c.Push.Topic == "" {
		return errors.New("PUSH_TOPIC must be provided when PUSH_PROJECT_ID is set")
	}

	if c.WhatsApp.Enabled() && c.WhatsApp.Recipient == "" {
		return errors.New("WHATSAPP_RECIPIENT must be provided when WHATSAPP_TOKEN is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
