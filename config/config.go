package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrInvalidPort      = errors.New("port must be between 1 and 65535")
	ErrEmptyStorePath   = errors.New("store path must not be empty")
	ErrEmptyJournalPath = errors.New("journal path must not be empty")
	ErrNegativeTimeout  = errors.New("qr wait timeout must not be negative")
)

// Config holds every setting read from the environment (or a .env file).
type Config struct {
	Port            int           `envconfig:"PORT" default:"3000"`
	StorePath       string        `envconfig:"STORE_PATH" default:"store.db"`
	JournalPath     string        `envconfig:"JOURNAL_PATH" default:"journal.db"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	WALogLevel      string        `envconfig:"WA_LOG_LEVEL" default:"INFO"`
	AutoReconnect   bool          `envconfig:"AUTO_RECONNECT" default:"false"`
	PrintQRTerminal bool          `envconfig:"PRINT_QR_TERMINAL" default:"true"`
	QRWaitTimeout   time.Duration `envconfig:"QR_WAIT_TIMEOUT" default:"0s"`
	DemoPhoneNumber string        `envconfig:"DEMO_PHONE_NUMBER" default:"+919158185659"`
	DemoMessage     string        `envconfig:"DEMO_MESSAGE" default:"Hello from the server"`
}

// Load reads the optional .env files, then the process environment.
func Load(files ...string) (Config, error) {
	// A missing .env is normal in containers.
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.StorePath == "" {
		return ErrEmptyStorePath
	}
	if c.JournalPath == "" {
		return ErrEmptyJournalPath
	}
	if c.QRWaitTimeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// StoreDSN is the sqlite3 address handed to the whatsmeow session store.
func (c Config) StoreDSN() string {
	return "file:" + c.StorePath + "?_foreign_keys=on"
}
