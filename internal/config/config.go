package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Dispatch DispatchConfig
	SMTP     SMTPConfig
	MongoDB  MongoDBConfig
	Sheets   SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig holds the data directory for the stored source workbook and
// recipient address.
type StorageConfig struct {
	DataDir string
}

// DispatchConfig holds the daily vendor-deficit mail schedule.
type DispatchConfig struct {
	Hour     int
	Timezone string
}

// SMTPConfig contains mail transport settings; credentials come from the
// process environment. Dispatch is disabled when Host is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MongoDBConfig holds settings for the optional dispatch-history store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig configures the optional Google Sheets history source. The
// source is enabled only when both CredentialsPath and SpreadsheetID are set.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ReadRange       string
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	dispatchHour, err := getenvInt("DISPATCH_HOUR", 8)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getenvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			DataDir: getenvWithDefault("DATA_DIR", "data"),
		},
		Dispatch: DispatchConfig{
			Hour:     dispatchHour,
			Timezone: getenvWithDefault("TIMEZONE", "Local"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "poplanner"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_SOURCE_ID"),
			ReadRange:       getenvWithDefault("GOOGLE_SHEET_SOURCE_RANGE", "History!A:Z"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and
// within range.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Storage.DataDir == "" {
		return errors.New("DATA_DIR must be provided")
	}
	if c.Dispatch.Hour < 0 || c.Dispatch.Hour > 23 {
		return fmt.Errorf("DISPATCH_HOUR must be between 0 and 23, got %d", c.Dispatch.Hour)
	}
	if c.Dispatch.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.SMTP.Host != "" {
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("SMTP_PORT out of range: %d", c.SMTP.Port)
		}
		if c.SMTP.From == "" {
			return errors.New("SMTP_FROM must be provided when SMTP_HOST is set")
		}
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided with GOOGLE_SHEET_SOURCE_ID")
	}

	return nil
}

// DispatchEnabled reports whether the daily mail job can run at all.
func (c *Config) DispatchEnabled() bool {
	return c.SMTP.Host != ""
}

// SheetSourceEnabled reports whether the Google Sheets history source is
// configured.
func (c *Config) SheetSourceEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
