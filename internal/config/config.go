package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"couponsystem/pkg/db"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	DBDriver       string `mapstructure:"DB_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	RedemptionCapScope string `mapstructure:"REDEMPTION_CAP_SCOPE"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	AdminJWTSecret      string `mapstructure:"ADMIN_JWT_SECRET"`
	MetricsUser         string `mapstructure:"METRICS_USER"`
	MetricsPasswordHash string `mapstructure:"METRICS_PASSWORD_HASH"`

	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`
}

var defaults = map[string]interface{}{
	"PORT":                  "8080",
	"DB_DRIVER":             db.DriverPostgres,
	"DATABASE_URL":          "",
	"DB_HOST":               "localhost",
	"DB_PORT":               0,
	"DB_USER":               "root",
	"DB_PASSWORD":           "",
	"DB_NAME":               "CouponSystem",
	"DB_SSLMODE":            "disable",
	"DB_MAX_OPEN_CONNS":     10,
	"DB_MAX_IDLE_CONNS":     5,
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"REDEMPTION_CAP_SCOPE":  "user",
	"RATE_LIMIT_PER_MINUTE": 100,
	"CORS_ALLOWED_ORIGINS":  "",
	"ADMIN_JWT_SECRET":      "",
	"METRICS_USER":          "",
	"METRICS_PASSWORD_HASH": "",
	"RABBITMQ_URL":          "",
	"RABBITMQ_EXCHANGE":     "coupons",
}

// LoadConfig reads an optional .env from dir, then the environment. Values
// already present in the environment win over the file.
func LoadConfig(dir string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read .env: %w", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, value := range defaults {
		viper.SetDefault(key, value)
		if err := viper.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.RedemptionCapScope = strings.ToLower(strings.TrimSpace(cfg.RedemptionCapScope))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverMySQL:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverMySQL, c.DBDriver)
	}
	switch c.RedemptionCapScope {
	case "user", "coupon":
	default:
		return fmt.Errorf("REDEMPTION_CAP_SCOPE must be \"user\" or \"coupon\", got %q", c.RedemptionCapScope)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", c.LogFormat)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	return nil
}

func (c Config) Database() db.Config {
	return db.Config{
		Driver:       c.DBDriver,
		URL:          c.DatabaseURL,
		Host:         c.DBHost,
		Port:         c.DBPort,
		User:         c.DBUser,
		Password:     c.DBPassword,
		Name:         c.DBName,
		SSLMode:      c.DBSSLMode,
		MaxOpenConns: c.DBMaxOpenConns,
		MaxIdleConns: c.DBMaxIdleConns,
	}
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas. Empty means any origin.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
