package config

import (
	"fmt"
	"os"
	"strings"

	"event-service/core/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	KeyDatabaseURL       = "DATABASE_URL"
	KeyServiceHost       = "SERVICE_HOST"
	KeyServicePort       = "SERVICE_PORT"
	KeySMTPHost          = "SMTP_HOST"
	KeySMTPPort          = "SMTP_PORT"
	KeySMTPUsername      = "SMTP_USERNAME"
	KeySMTPPassword      = "SMTP_PASSWORD"
	KeySMTPTimeout       = "SMTP_TIMEOUT_SECONDS"
	KeyLogLevel          = "LOG_LEVEL"
	KeyLogPretty         = "LOG_PRETTY"
	KeyNotifyWorkers     = "NOTIFY_WORKERS"
	KeyDBMaxOpenConns    = "DB_MAX_OPEN_CONNS"
	KeyDBMaxIdleConns    = "DB_MAX_IDLE_CONNS"
	DefaultEnvFile       = ".env"
	DefaultServiceHost   = "0.0.0.0"
	DefaultServicePort   = 8000
	DefaultSMTPTimeout   = 10
	DefaultNotifyWorkers = 4
)

var keys = []string{
	KeyDatabaseURL, KeyServiceHost, KeyServicePort,
	KeySMTPHost, KeySMTPPort, KeySMTPUsername, KeySMTPPassword, KeySMTPTimeout,
	KeyLogLevel, KeyLogPretty, KeyNotifyWorkers, KeyDBMaxOpenConns, KeyDBMaxIdleConns,
}

// SMTPConfig is copied by value into notification jobs.
type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	TimeoutSeconds int
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type Config struct {
	Database      DatabaseConfig
	ServiceHost   string
	ServicePort   int
	SMTP          SMTPConfig
	LogLevel      string
	LogPretty     bool
	NotifyWorkers int
}

// Address is the listen address built from SERVICE_HOST and SERVICE_PORT.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.ServiceHost, c.ServicePort)
}

// Missing lists the keys of the SMTP settings that are not set.
func (s SMTPConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.Host) == "" {
		missing = append(missing, KeySMTPHost)
	}
	if s.Port == 0 {
		missing = append(missing, KeySMTPPort)
	}
	if strings.TrimSpace(s.Username) == "" {
		missing = append(missing, KeySMTPUsername)
	}
	if s.Password == "" {
		missing = append(missing, KeySMTPPassword)
	}
	return missing
}

// Complete reports whether every setting needed to open an SMTP session is present.
func (s SMTPConfig) Complete() bool {
	return len(s.Missing()) == 0
}

// Load reads the process environment, seeded by ./.env when present.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom is Load with an explicit dotenv path. Variables already present in
// the environment win over the file.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.NewAppError(errors.ErrConfig, "failed to read "+envFile, err)
			}
		}
	}

	v := viper.New()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.NewAppError(errors.ErrConfig, "failed to bind "+key, err)
		}
	}
	v.SetDefault(KeyServiceHost, DefaultServiceHost)
	v.SetDefault(KeyServicePort, DefaultServicePort)
	v.SetDefault(KeySMTPTimeout, DefaultSMTPTimeout)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyNotifyWorkers, DefaultNotifyWorkers)
	v.SetDefault(KeyDBMaxOpenConns, 25)
	v.SetDefault(KeyDBMaxIdleConns, 5)

	databaseURL := strings.TrimSpace(v.GetString(KeyDatabaseURL))
	if databaseURL == "" {
		return nil, errors.Config(KeyDatabaseURL + " is required")
	}

	ints := map[string]int{}
	for _, key := range []string{KeyServicePort, KeySMTPPort, KeySMTPTimeout, KeyNotifyWorkers, KeyDBMaxOpenConns, KeyDBMaxIdleConns} {
		n, err := intValue(v, key)
		if err != nil {
			return nil, err
		}
		ints[key] = n
	}

	pretty := false
	if raw := strings.TrimSpace(v.GetString(KeyLogPretty)); raw != "" {
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrConfig, KeyLogPretty+" must be a boolean", err)
		}
		pretty = b
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:          databaseURL,
			MaxOpenConns: ints[KeyDBMaxOpenConns],
			MaxIdleConns: ints[KeyDBMaxIdleConns],
		},
		ServiceHost: strings.TrimSpace(v.GetString(KeyServiceHost)),
		ServicePort: ints[KeyServicePort],
		SMTP: SMTPConfig{
			Host:           strings.TrimSpace(v.GetString(KeySMTPHost)),
			Port:           ints[KeySMTPPort],
			Username:       strings.TrimSpace(v.GetString(KeySMTPUsername)),
			Password:       v.GetString(KeySMTPPassword),
			TimeoutSeconds: ints[KeySMTPTimeout],
		},
		LogLevel:      v.GetString(KeyLogLevel),
		LogPretty:     pretty,
		NotifyWorkers: ints[KeyNotifyWorkers],
	}
	if cfg.ServiceHost == "" {
		cfg.ServiceHost = DefaultServiceHost
	}
	if cfg.ServicePort == 0 {
		cfg.ServicePort = DefaultServicePort
	}
	if cfg.SMTP.TimeoutSeconds <= 0 {
		cfg.SMTP.TimeoutSeconds = DefaultSMTPTimeout
	}
	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = DefaultNotifyWorkers
	}
	return cfg, nil
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		raw = s
	}
	if raw == nil {
		return 0, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrConfig, key+" must be an integer", err)
	}
	return n, nil
}
